package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
)

const (
	keyToken = "token"
	keyUser  = "user"
)

// sqlCredentials implements CredentialStore on the credentials table.
type sqlCredentials struct {
	db *sql.DB
}

func (c *sqlCredentials) Load(ctx context.Context) (*Credentials, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT key, value FROM credentials WHERE key IN (?, ?)`, keyToken, keyUser)
	if err != nil {
		return nil, fmt.Errorf("query credentials: %w", err)
	}
	defer rows.Close()

	var creds Credentials
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scan credential: %w", err)
		}
		switch k {
		case keyToken:
			creds.Token = v
		case keyUser:
			creds.User = []byte(v)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate credentials: %w", err)
	}

	if creds.Token == "" || len(creds.User) == 0 {
		return nil, nil
	}
	return &creds, nil
}

func (c *sqlCredentials) Save(ctx context.Context, creds Credentials) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	upsert := `INSERT INTO credentials (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`
	if _, err := tx.ExecContext(ctx, upsert, keyToken, creds.Token); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	if _, err := tx.ExecContext(ctx, upsert, keyUser, string(creds.User)); err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit credentials: %w", err)
	}
	return nil
}

func (c *sqlCredentials) Clear(ctx context.Context) error {
	_, err := c.db.ExecContext(ctx,
		`DELETE FROM credentials WHERE key IN (?, ?)`, keyToken, keyUser)
	if err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}
	return nil
}

// MemoryCredentials is an in-process CredentialStore for tests and for
// running without a database.
type MemoryCredentials struct {
	mu    sync.Mutex
	creds *Credentials

	// FailSave, when set, is returned by Save.
	FailSave error
}

// NewMemoryCredentials returns a store pre-seeded with creds (may be nil).
func NewMemoryCredentials(creds *Credentials) *MemoryCredentials {
	return &MemoryCredentials{creds: creds}
}

func (m *MemoryCredentials) Load(context.Context) (*Credentials, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.creds == nil {
		return nil, nil
	}
	cp := *m.creds
	return &cp, nil
}

func (m *MemoryCredentials) Save(_ context.Context, c Credentials) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailSave != nil {
		return m.FailSave
	}
	m.creds = &c
	return nil
}

func (m *MemoryCredentials) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creds = nil
	return nil
}
