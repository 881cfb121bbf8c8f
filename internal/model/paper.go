package model

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Config is the opaque paper configuration document.
// The persistence layer stores it as JSON and never inspects its shape.
type Config map[string]any

// Value implements driver.Valuer. A nil Config is written as SQL NULL so the
// store's NOT NULL constraint applies to an omitted document.
func (c Config) Value() (driver.Value, error) {
	if c == nil {
		return nil, nil
	}
	b, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal paper config: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner for JSON stored as text or bytes.
// Numbers are kept as json.Number so integers wider than 53 bits survive a round trip.
func (c *Config) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*c = nil
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("scan paper config: unsupported type %T", src)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var out Config
	if err := dec.Decode(&out); err != nil {
		return fmt.Errorf("scan paper config: %w", err)
	}
	*c = out
	return nil
}

// Paper represents one stored paper configuration.
// ID is assigned by the store on insert; CreatedAt is set once, at construction.
type Paper struct {
	ID        int64     `db:"id" json:"id"`
	Title     string    `db:"title" json:"title"`
	Level     string    `db:"level" json:"level"`
	Config    Config    `db:"config" json:"config"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// now is swapped in tests. Microsecond precision survives every supported store.
var now = func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) }

// NewPaper builds a Paper stamped with the current UTC time.
func NewPaper(title, level string, cfg Config) *Paper {
	return &Paper{
		Title:     title,
		Level:     level,
		Config:    cfg,
		CreatedAt: now(),
	}
}

// Stamp sets CreatedAt if it has never been set. It never overwrites an existing value.
func (p *Paper) Stamp() {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now()
	}
}
