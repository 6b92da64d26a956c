// Package backup implements the remote wallet backup protocol: the
// wallet's secrets and metadata are serialized, encrypted to the user's
// own identity, and published as a tagged record on the event log.
// Backups are best-effort; only restore failures are hard errors.
package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/lantern-wallet/lantern/internal/config"
	"github.com/lantern-wallet/lantern/internal/relay"
	"github.com/lantern-wallet/lantern/internal/wallet"
	lanternerr "github.com/lantern-wallet/lantern/pkg/errors"
)

// Tag identifies wallet backup records on the event log. Fetches treat
// all records under this tag as physical copies of one logical backup.
const Tag = "lantern:wallet-backup:v1"

// payload is the cleartext backup content.
type payload struct {
	Seed          []byte         `json:"seed"`
	Mnemonic      string         `json:"mnemonic"`
	Address       string         `json:"address"`
	CreatedAt     time.Time      `json:"created_at"`
	Network       wallet.Network `json:"network"`
	RestoreHeight uint64         `json:"restore_height"`
	NodeID        string         `json:"node_id"`
}

// Manager publishes and restores wallet backups.
type Manager struct {
	identity relay.Identity
	log      relay.EventLog
	logger   config.Logger
	now      func() time.Time
}

// NewManager creates a backup manager. identity may be nil, in which
// case publishing degrades to a no-op.
func NewManager(identity relay.Identity, log relay.EventLog, logger config.Logger) *Manager {
	return &Manager{identity: identity, log: log, logger: logger, now: time.Now}
}

// Publish encrypts the current secrets and metadata to the user's own
// identity and appends them to the event log. With no identity or log
// available this is a soft skip, not an error.
func (m *Manager) Publish(ctx context.Context, secrets *wallet.Secrets, meta *wallet.Meta) error {
	if m.identity == nil || m.log == nil {
		m.logger.Debugf("backup skipped: no identity available")
		return nil
	}

	body := payload{
		Seed:          secrets.Seed,
		Mnemonic:      secrets.Mnemonic,
		Address:       meta.Address,
		CreatedAt:     m.now().UTC(),
		Network:       meta.Network,
		RestoreHeight: meta.RestoreHeight,
		NodeID:        meta.NodeID,
	}
	plaintext, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling backup: %w", err)
	}

	ciphertext, err := m.identity.EncryptToSelf(plaintext)
	if err != nil {
		return fmt.Errorf("encrypting backup: %w", err)
	}

	record := relay.Record{
		ID:        uuid.NewString(),
		Tag:       Tag,
		Author:    m.identity.PublicKey(),
		CreatedAt: body.CreatedAt,
		Content:   ciphertext,
	}
	sig, err := m.identity.Sign(record.SigningBytes())
	if err != nil {
		return fmt.Errorf("signing backup: %w", err)
	}
	record.Sig = sig

	if err := m.log.Publish(ctx, record); err != nil {
		return fmt.Errorf("publishing backup: %w", err)
	}

	m.logger.Infof("wallet backup published")
	return nil
}

// Restored is the decrypted result of a restore.
type Restored struct {
	Secrets wallet.Secrets
	Meta    wallet.Meta
}

// Restore fetches the newest backup for the current identity and
// decrypts it. Timestamps tie-break on the greater record ID so two
// devices restoring the same log pick the same backup.
func (m *Manager) Restore(ctx context.Context) (*Restored, error) {
	if m.identity == nil || m.log == nil {
		return nil, lanternerr.ErrIdentityUnavailable
	}

	records, err := m.log.Query(ctx, Tag, m.identity.PublicKey())
	if err != nil {
		return nil, fmt.Errorf("fetching backups: %w", err)
	}
	// An unsigned or resigned record must not win the newest-backup
	// selection, since CreatedAt and ID decide it.
	valid := records[:0]
	for _, rec := range records {
		if relay.VerifySignature(rec.Author, rec.SigningBytes(), rec.Sig) {
			valid = append(valid, rec)
		} else {
			m.logger.Warnf("ignoring backup record %s: bad signature", rec.ID)
		}
	}
	records = valid
	if len(records) == 0 {
		return nil, lanternerr.ErrNoBackupFound
	}

	sort.Slice(records, func(i, j int) bool {
		if !records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].CreatedAt.After(records[j].CreatedAt)
		}
		return records[i].ID > records[j].ID
	})
	newest := records[0]

	plaintext, err := m.identity.DecryptFromSelf(newest.Content)
	if err != nil {
		return nil, lanternerr.WithCause(lanternerr.ErrBackupDecryptFailed, err)
	}

	var body payload
	if err := json.Unmarshal(plaintext, &body); err != nil {
		return nil, lanternerr.WithCause(lanternerr.ErrBackupDecryptFailed, err)
	}

	return &Restored{
		Secrets: wallet.Secrets{Seed: body.Seed, Mnemonic: body.Mnemonic},
		Meta: wallet.Meta{
			Address:       body.Address,
			Network:       body.Network,
			CreatedAt:     body.CreatedAt,
			RestoreHeight: body.RestoreHeight,
			NodeID:        body.NodeID,
		},
	}, nil
}
