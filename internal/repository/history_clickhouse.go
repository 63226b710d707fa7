package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"FundLens/internal/domain/models"
	pkgch "FundLens/pkg/clickhouse"
	applogger "FundLens/pkg/logger"
)

// CHHistoryStore persists completed analyses in ClickHouse.
type CHHistoryStore struct {
	ch    *pkgch.Client
	db    *sql.DB
	table string
	l     *applogger.Logger
}

func NewCHHistoryStore(ch *pkgch.Client, table string) *CHHistoryStore {
	if table == "" {
		table = "fundlens.analysis_history"
	}
	return &CHHistoryStore{ch: ch, db: ch.DB(), table: table}
}

// SetLogger injects a structured logger.
func (s *CHHistoryStore) SetLogger(l *applogger.Logger) { s.l = l }

// Init creates the database and history table if absent.
func (s *CHHistoryStore) Init(ctx context.Context) error {
	dbName := "fundlens"
	if i := strings.IndexByte(s.table, '.'); i > 0 {
		dbName = s.table[:i]
	}
	stmts := []string{
		fmt.Sprintf(`CREATE DATABASE IF NOT EXISTS %s`, dbName),
		fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %s (
            ticker       String,
            style        LowCardinality(String),
            action       LowCardinality(String),
            confidence   Float64,
            reason       String,
            source       LowCardinality(String),
            breakdown    String,
            generated_at DateTime64(3, 'UTC')
        )
        ENGINE = MergeTree()
        PARTITION BY toYYYYMM(generated_at)
        ORDER BY (ticker, style, generated_at)
    `, s.table),
	}
	return s.ch.InitSchema(ctx, stmts)
}

func (s *CHHistoryStore) Store(ctx context.Context, r *models.AnalysisResult) error {
	breakdown, err := json.Marshal(r.Breakdown)
	if err != nil {
		return fmt.Errorf("marshal breakdown: %w", err)
	}

	q := fmt.Sprintf(`
        INSERT INTO %s (ticker, style, action, confidence, reason, source, breakdown, generated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)
    `, s.table)
	if _, err := s.db.ExecContext(ctx, q,
		r.Ticker, string(r.Style), string(r.Action), r.Confidence,
		r.Reason, string(r.Source), string(breakdown), r.GeneratedAt); err != nil {
		if s.l != nil {
			s.l.Error("clickhouse history insert error",
				applogger.String("ticker", r.Ticker),
				applogger.String("style", string(r.Style)),
				applogger.Error(err),
			)
		}
		return fmt.Errorf("store analysis: %w", err)
	}
	return nil
}

func (s *CHHistoryStore) Query(ctx context.Context, ticker string, from, to time.Time, limit int) ([]*models.AnalysisResult, error) {
	q := fmt.Sprintf(`
        SELECT ticker, style, action, confidence, reason, source, breakdown, generated_at
        FROM %s
        WHERE ticker = ? AND generated_at >= ? AND generated_at <= ?
        ORDER BY generated_at DESC
        LIMIT ?
    `, s.table)
	rows, err := s.db.QueryContext(ctx, q, strings.ToUpper(ticker), from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	out := make([]*models.AnalysisResult, 0, limit)
	for rows.Next() {
		var (
			r         models.AnalysisResult
			breakdown string
		)
		if err := rows.Scan(&r.Ticker, &r.Style, &r.Action, &r.Confidence,
			&r.Reason, &r.Source, &breakdown, &r.GeneratedAt); err != nil {
			return nil, fmt.Errorf("scan analysis: %w", err)
		}
		if breakdown != "" {
			if err := json.Unmarshal([]byte(breakdown), &r.Breakdown); err != nil {
				if s.l != nil {
					s.l.Warn("clickhouse history breakdown unmarshal error",
						applogger.String("ticker", r.Ticker),
						applogger.Error(err),
					)
				}
			}
		}
		out = append(out, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func (s *CHHistoryStore) Health(ctx context.Context) error {
	return s.ch.Health(ctx)
}

func (s *CHHistoryStore) Close() error {
	return s.ch.Close()
}
