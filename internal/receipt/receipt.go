// Package receipt publishes small public payment records after a send,
// for tip attribution. Receipts are strictly fire-and-forget: they run
// as background jobs and must never block or fail the send itself.
package receipt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lantern-wallet/lantern/internal/config"
	"github.com/lantern-wallet/lantern/internal/relay"
)

// Tag identifies payment receipt records on the event log.
const Tag = "lantern:payment-receipt:v1"

// Receipt is the public payment record content.
type Receipt struct {
	AmountAtomic      uint64 `json:"amount_atomic"`
	RecipientIdentity string `json:"recipient_identity"`
	NoteReference     string `json:"note_reference,omitempty"`
	TxHash            string `json:"tx_hash"`
	SenderAddress     string `json:"sender_address"`
}

// Publisher publishes payment receipts.
type Publisher struct {
	identity relay.Identity
	log      relay.EventLog
	logger   config.Logger
}

// NewPublisher creates a receipt publisher. A nil identity degrades
// publishing to a no-op.
func NewPublisher(identity relay.Identity, log relay.EventLog, logger config.Logger) *Publisher {
	return &Publisher{identity: identity, log: log, logger: logger}
}

// Publish signs and appends the receipt to the event log. Skips
// silently when no identity is available or the recipient is unknown.
// Callers run this as a background job; a returned error is logged by
// the job runner, never surfaced to the sender.
func (p *Publisher) Publish(ctx context.Context, r Receipt) error {
	if p.identity == nil || p.log == nil {
		p.logger.Debugf("receipt skipped: no identity available")
		return nil
	}
	if r.RecipientIdentity == "" {
		p.logger.Debugf("receipt skipped: recipient identity unknown")
		return nil
	}

	content, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshaling receipt: %w", err)
	}

	record := relay.Record{
		ID:        uuid.NewString(),
		Tag:       Tag,
		Author:    p.identity.PublicKey(),
		CreatedAt: time.Now().UTC(),
		Content:   content,
	}
	sig, err := p.identity.Sign(record.SigningBytes())
	if err != nil {
		return fmt.Errorf("signing receipt: %w", err)
	}
	record.Sig = sig

	if err := p.log.Publish(ctx, record); err != nil {
		return fmt.Errorf("publishing receipt: %w", err)
	}
	return nil
}
