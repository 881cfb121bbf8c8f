package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// ErrSessionClosed is returned when a session is used after its scope ended.
var ErrSessionClosed = errors.New("session is closed")

// Session is one unit of work bound to a dedicated connection.
// A transaction is started on first use and stays open until Commit or Rollback;
// the next use after that starts a new one. A Session is not safe for concurrent use.
type Session struct {
	conn   *sqlx.Conn
	tx     *sqlx.Tx
	closed bool
}

// NewSession eagerly acquires a connection for a new Session.
// The caller owns the session and must Close it.
func (e *Engine) NewSession(ctx context.Context) (*Session, error) {
	conn, err := e.db.Connx(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire session: %w", err)
	}
	return &Session{conn: conn}, nil
}

// Tx returns the session's current transaction, beginning one if needed.
func (s *Session) Tx(ctx context.Context) (*sqlx.Tx, error) {
	if s.closed {
		return nil, ErrSessionClosed
	}
	if s.tx != nil {
		return s.tx, nil
	}
	tx, err := s.conn.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	s.tx = tx
	return tx, nil
}

// InTransaction reports whether the session holds an open transaction.
func (s *Session) InTransaction() bool {
	return s.tx != nil
}

// Commit commits the open transaction, if any.
func (s *Session) Commit() error {
	if s.closed {
		return ErrSessionClosed
	}
	if s.tx == nil {
		return nil
	}
	tx := s.tx
	s.tx = nil
	return tx.Commit()
}

// Rollback discards the open transaction, if any.
func (s *Session) Rollback() error {
	if s.closed {
		return ErrSessionClosed
	}
	if s.tx == nil {
		return nil
	}
	tx := s.tx
	s.tx = nil
	return tx.Rollback()
}

// Close rolls back uncommitted work and releases the connection.
// Calling Close more than once is a no-op.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	var rbErr error
	if s.tx != nil {
		if err := s.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			rbErr = fmt.Errorf("rollback on close: %w", err)
		}
		s.tx = nil
	}
	s.closed = true
	if err := s.conn.Close(); err != nil {
		return errors.Join(rbErr, fmt.Errorf("release session: %w", err))
	}
	return rbErr
}
