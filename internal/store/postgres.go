// Package store persists emitted signals to PostgreSQL. The engine
// itself never touches storage; the daemon journals batch results here
// after emission.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Alias1177/signalengine/internal/model"
)

// Journal is a signal journal backed by PostgreSQL.
type Journal struct {
	*sql.DB
}

// ConnectionParams holds PostgreSQL connection parameters.
type ConnectionParams struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// New opens a journal connection and bootstraps the schema.
func New(params ConnectionParams) (*Journal, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		params.Host, params.Port, params.User, params.Password, params.DBName, params.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	if err := createTables(db); err != nil {
		return nil, err
	}
	return &Journal{db}, nil
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS signals (
			id BIGSERIAL PRIMARY KEY,
			pair TEXT NOT NULL,
			emitted_at TIMESTAMPTZ NOT NULL,
			direction TEXT NOT NULL,
			strength DOUBLE PRECISION NOT NULL,
			confluence_score DOUBLE PRECISION NOT NULL,
			session_quality DOUBLE PRECISION NOT NULL,
			entry_price DOUBLE PRECISION,
			stop_price DOUBLE PRECISION,
			target_price DOUBLE PRECISION,
			position_fraction DOUBLE PRECISION,
			reasons TEXT NOT NULL
		)
	`)
	if err != nil {
		return err
	}
	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS signals_pair_emitted_idx
		ON signals (pair, emitted_at DESC)
	`)
	return err
}

// SaveSignal journals one emitted signal. Hold signals store NULL trade
// fields, matching the wire format.
func (j *Journal) SaveSignal(ctx context.Context, sig model.Signal) error {
	var entry, stop, target, position sql.NullFloat64
	if !sig.IsHold() {
		entry = sql.NullFloat64{Float64: sig.EntryPrice, Valid: true}
		stop = sql.NullFloat64{Float64: sig.StopPrice, Valid: true}
		target = sql.NullFloat64{Float64: sig.TargetPrice, Valid: true}
		position = sql.NullFloat64{Float64: sig.PositionFraction, Valid: true}
	}

	_, err := j.ExecContext(ctx, `
		INSERT INTO signals (
			pair, emitted_at, direction, strength, confluence_score,
			session_quality, entry_price, stop_price, target_price,
			position_fraction, reasons
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		string(sig.Pair), sig.Timestamp, string(sig.Direction), sig.Strength,
		sig.ConfluenceScore, sig.SessionQuality, entry, stop, target, position,
		strings.Join(sig.Reasons, ","),
	)
	return err
}

// RecentSignals returns the latest journaled signals for a pair, newest
// first.
func (j *Journal) RecentSignals(ctx context.Context, pair model.Pair, limit int) ([]model.Signal, error) {
	rows, err := j.QueryContext(ctx, `
		SELECT pair, emitted_at, direction, strength, confluence_score,
			session_quality, entry_price, stop_price, target_price,
			position_fraction, reasons
		FROM signals
		WHERE pair = $1
		ORDER BY emitted_at DESC
		LIMIT $2
	`, string(pair), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Signal
	for rows.Next() {
		var sig model.Signal
		var p, direction, reasons string
		var emittedAt time.Time
		var entry, stop, target, position sql.NullFloat64

		if err := rows.Scan(&p, &emittedAt, &direction, &sig.Strength,
			&sig.ConfluenceScore, &sig.SessionQuality,
			&entry, &stop, &target, &position, &reasons); err != nil {
			return nil, err
		}
		sig.Pair = model.Pair(p)
		sig.Timestamp = emittedAt
		sig.Direction = model.Direction(direction)
		if entry.Valid {
			sig.EntryPrice = entry.Float64
		}
		if stop.Valid {
			sig.StopPrice = stop.Float64
		}
		if target.Valid {
			sig.TargetPrice = target.Float64
		}
		if position.Valid {
			sig.PositionFraction = position.Float64
		}
		if reasons != "" {
			sig.Reasons = strings.Split(reasons, ",")
		}
		out = append(out, sig)
	}
	return out, rows.Err()
}
