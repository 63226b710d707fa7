package models

// Requests for analysis HTTP endpoints. Defined in domain for consistency and reuse.

type AnalyzeRequest struct {
	Ticker string `json:"ticker" validate:"required,alphanum,max=10"`
	Style  string `json:"style" default:"growth" validate:"oneof=growth value dividend"`
}
