package backup

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lantern-wallet/lantern/internal/config"
	"github.com/lantern-wallet/lantern/internal/relay"
	"github.com/lantern-wallet/lantern/internal/wallet"
	lanternerr "github.com/lantern-wallet/lantern/pkg/errors"
)

func testIdentity(t *testing.T) relay.Identity {
	t.Helper()
	identity, err := relay.LoadOrCreateIdentity(filepath.Join(t.TempDir(), "identity.json"))
	require.NoError(t, err)
	return identity
}

func testWallet(t *testing.T) (*wallet.Secrets, *wallet.Meta) {
	t.Helper()
	secrets, err := wallet.NewSecrets("", 12)
	require.NoError(t, err)
	t.Cleanup(secrets.Wipe)

	meta := &wallet.Meta{
		Address:       "LTexample",
		Network:       wallet.NetworkMainnet,
		CreatedAt:     time.Unix(1_700_000_000, 0).UTC(),
		RestoreHeight: 2_995_000,
		NodeID:        "lantern-eu",
	}
	return secrets, meta
}

func TestPublishAndRestoreRoundTrip(t *testing.T) {
	t.Parallel()

	identity := testIdentity(t)
	log := relay.NewMemoryLog()
	secrets, meta := testWallet(t)
	ctx := context.Background()

	publisher := NewManager(identity, log, config.NullLogger())
	require.NoError(t, publisher.Publish(ctx, secrets, meta))
	require.Equal(t, 1, log.Len())

	// A second "device": fresh manager, same identity and log.
	restorer := NewManager(identity, log, config.NullLogger())
	restored, err := restorer.Restore(ctx)
	require.NoError(t, err)

	assert.Equal(t, secrets.Mnemonic, restored.Secrets.Mnemonic)
	assert.Equal(t, secrets.Seed, restored.Secrets.Seed)
	assert.Equal(t, meta.Address, restored.Meta.Address)
	assert.Equal(t, meta.RestoreHeight, restored.Meta.RestoreHeight)
	assert.Equal(t, meta.Network, restored.Meta.Network)
}

func TestPublishWithoutIdentitySkips(t *testing.T) {
	t.Parallel()

	log := relay.NewMemoryLog()
	secrets, meta := testWallet(t)

	m := NewManager(nil, log, config.NullLogger())
	require.NoError(t, m.Publish(context.Background(), secrets, meta))
	assert.Zero(t, log.Len())
}

func TestRestoreNoBackup(t *testing.T) {
	t.Parallel()

	m := NewManager(testIdentity(t), relay.NewMemoryLog(), config.NullLogger())
	_, err := m.Restore(context.Background())
	require.ErrorIs(t, err, lanternerr.ErrNoBackupFound)
}

func TestRestoreWrongIdentity(t *testing.T) {
	t.Parallel()

	log := relay.NewMemoryLog()
	secrets, meta := testWallet(t)
	ctx := context.Background()

	owner := testIdentity(t)
	require.NoError(t, NewManager(owner, log, config.NullLogger()).Publish(ctx, secrets, meta))

	// A different identity finds nothing under its own author key.
	other := NewManager(testIdentity(t), log, config.NullLogger())
	_, err := other.Restore(ctx)
	require.ErrorIs(t, err, lanternerr.ErrNoBackupFound)

	// Forcing the record under the other author still fails to decrypt.
	records, err := log.Query(ctx, Tag, owner.PublicKey())
	require.NoError(t, err)
	require.Len(t, records, 1)

	stolen := records[0]
	stolen.Author = other.identity.PublicKey()
	stolen.Sig, err = other.identity.Sign(stolen.SigningBytes())
	require.NoError(t, err)
	require.NoError(t, log.Publish(ctx, stolen))

	_, err = other.Restore(ctx)
	require.ErrorIs(t, err, lanternerr.ErrBackupDecryptFailed)
}

func TestRestorePicksNewest(t *testing.T) {
	t.Parallel()

	identity := testIdentity(t)
	log := relay.NewMemoryLog()
	ctx := context.Background()

	m := NewManager(identity, log, config.NullLogger())

	first, firstMeta := testWallet(t)
	m.now = func() time.Time { return time.Unix(1_700_000_000, 0) }
	require.NoError(t, m.Publish(ctx, first, firstMeta))

	second, secondMeta := testWallet(t)
	m.now = func() time.Time { return time.Unix(1_700_000_100, 0) }
	require.NoError(t, m.Publish(ctx, second, secondMeta))

	restored, err := m.Restore(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.Mnemonic, restored.Secrets.Mnemonic)
}

func TestRestoreTieBreaksOnRecordID(t *testing.T) {
	t.Parallel()

	identity := testIdentity(t)
	log := relay.NewMemoryLog()
	ctx := context.Background()

	at := time.Unix(1_700_000_000, 0).UTC()
	for _, id := range []string{"aaa", "zzz", "mmm"} {
		ciphertext, err := identity.EncryptToSelf([]byte(`{"mnemonic":"` + id + `"}`))
		require.NoError(t, err)
		record := relay.Record{
			ID: id, Tag: Tag, Author: identity.PublicKey(), CreatedAt: at, Content: ciphertext,
		}
		record.Sig, err = identity.Sign(record.SigningBytes())
		require.NoError(t, err)
		require.NoError(t, log.Publish(ctx, record))
	}

	restored, err := NewManager(identity, log, config.NullLogger()).Restore(ctx)
	require.NoError(t, err)
	assert.Equal(t, "zzz", restored.Secrets.Mnemonic)
}

func TestRestoreSkipsRecordsWithBadSignatures(t *testing.T) {
	t.Parallel()

	identity := testIdentity(t)
	log := relay.NewMemoryLog()
	ctx := context.Background()

	m := NewManager(identity, log, config.NullLogger())
	secrets, meta := testWallet(t)
	m.now = func() time.Time { return time.Unix(1_700_000_000, 0) }
	require.NoError(t, m.Publish(ctx, secrets, meta))

	// A newer record with a bogus signature must not win selection.
	forged := relay.Record{
		ID:        "zzzz",
		Tag:       Tag,
		Author:    identity.PublicKey(),
		CreatedAt: time.Unix(1_700_001_000, 0).UTC(),
		Content:   []byte("garbage"),
		Sig:       "00",
	}
	require.NoError(t, log.Publish(ctx, forged))

	restored, err := m.Restore(ctx)
	require.NoError(t, err)
	assert.Equal(t, secrets.Mnemonic, restored.Secrets.Mnemonic)
}
