package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// eventRepo implements EventRepo on the api_request_events table. The
// autoincrement id gives a total order that survives clock changes.
type eventRepo struct {
	db *sql.DB
}

func (r *eventRepo) AppendAPIRequest(ctx context.Context, data APIRequestEventData) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO api_request_events
		(timestamp, request_id, method, path, status, latency_ms, success, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		time.Now().UTC().Format(time.RFC3339Nano),
		data.RequestID,
		data.Method,
		data.Path,
		data.Status,
		data.LatencyMs,
		boolToInt(data.Success),
		data.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("append api request event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryAPIRequests(ctx context.Context, opts QueryOpts) ([]APIRequestRecord, error) {
	var (
		where []string
		args  []any
	)
	if opts.Path != "" {
		where = append(where, "path = ?")
		args = append(args, opts.Path)
	}
	if !opts.From.IsZero() {
		where = append(where, "timestamp >= ?")
		args = append(args, opts.From.UTC().Format(time.RFC3339Nano))
	}

	q := `SELECT id, timestamp, request_id, method, path, status, latency_ms, success, error_message
		FROM api_request_events`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY id DESC"
	if opts.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query api request events: %w", err)
	}
	defer rows.Close()

	var out []APIRequestRecord
	for rows.Next() {
		var (
			rec     APIRequestRecord
			ts      string
			success int
		)
		if err := rows.Scan(&rec.ID, &ts, &rec.RequestID, &rec.Method, &rec.Path,
			&rec.Status, &rec.LatencyMs, &success, &rec.ErrorMessage); err != nil {
			return nil, fmt.Errorf("scan api request event: %w", err)
		}
		rec.Timestamp, err = time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("parse event timestamp %q: %w", ts, err)
		}
		rec.Success = success != 0
		out = append(out, rec)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
