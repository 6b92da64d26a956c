package relay

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordSignatureBindsAllFields(t *testing.T) {
	t.Parallel()

	identity, err := generateIdentity()
	require.NoError(t, err)

	record := Record{
		ID:        "rec-1",
		Tag:       "lantern:wallet-backup:v1",
		Author:    identity.PublicKey(),
		CreatedAt: time.Now().UTC(),
		Content:   []byte("ciphertext"),
	}
	record.Sig, err = identity.Sign(record.SigningBytes())
	require.NoError(t, err)
	require.True(t, VerifySignature(record.Author, record.SigningBytes(), record.Sig))

	// Rewriting any signed field breaks the signature, including the
	// timestamp and id that decide newest-record selection.
	tests := []struct {
		name   string
		mutate func(r *Record)
	}{
		{name: "id", mutate: func(r *Record) { r.ID = "rec-2" }},
		{name: "tag", mutate: func(r *Record) { r.Tag = "lantern:payment-receipt:v1" }},
		{name: "author", mutate: func(r *Record) { r.Author = "elsewhere" }},
		{name: "created at", mutate: func(r *Record) { r.CreatedAt = r.CreatedAt.Add(time.Hour) }},
		{name: "content", mutate: func(r *Record) { r.Content = []byte("forged") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tampered := record
			tt.mutate(&tampered)
			assert.False(t, VerifySignature(record.Author, tampered.SigningBytes(), tampered.Sig))
		})
	}
}

func TestRecordSigningBytesFieldBoundaries(t *testing.T) {
	t.Parallel()

	// Shifting a suffix between adjacent fields must change the
	// canonical bytes; concatenation without framing would not.
	a := Record{ID: "ab", Tag: "c"}
	b := Record{ID: "a", Tag: "bc"}
	assert.NotEqual(t, a.SigningBytes(), b.SigningBytes())
}
