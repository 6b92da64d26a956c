// Package relay defines the append-only event log used for encrypted
// off-device records (wallet backups, payment receipts), the signing and
// encryption identity that authenticates them, and an in-memory log
// implementation for tests and single-device use.
package relay

import (
	"bytes"
	"context"
	"encoding/binary"
	"time"
)

// Record is a single signed entry in the event log. Content is opaque to
// the log; Sig covers every other field, so neither the timestamp nor
// the id that order records can be rewritten after signing.
type Record struct {
	ID        string    `json:"id"`
	Tag       string    `json:"tag"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
	Content   []byte    `json:"content"`
	Sig       string    `json:"sig"`
}

// SigningBytes returns the canonical bytes the signature covers: all
// fields except the signature itself, length-prefixed so field
// boundaries cannot shift.
func (r Record) SigningBytes() []byte {
	var buf bytes.Buffer
	for _, field := range [][]byte{
		[]byte(r.ID),
		[]byte(r.Tag),
		[]byte(r.Author),
		[]byte(r.CreatedAt.UTC().Format(time.RFC3339Nano)),
		r.Content,
	} {
		var length [4]byte
		binary.BigEndian.PutUint32(length[:], uint32(len(field)))
		buf.Write(length[:])
		buf.Write(field)
	}
	return buf.Bytes()
}

// EventLog is an append-only store of records queryable by tag and
// author. Implementations may be remote; all calls take a context.
type EventLog interface {
	// Publish appends a record.
	Publish(ctx context.Context, record Record) error

	// Query returns all records with the given tag by the given author,
	// in no particular order.
	Query(ctx context.Context, tag, author string) ([]Record, error)
}
