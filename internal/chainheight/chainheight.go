// Package chainheight estimates chain heights from wall-clock time so a
// restore height can always be produced, with or without a reachable
// node. An inaccurate restore height only costs scan time, never
// correctness, so nothing in this package returns an error.
package chainheight

import (
	"context"
	"time"

	"github.com/lantern-wallet/lantern/internal/config"
	"github.com/lantern-wallet/lantern/internal/daemon"
)

// HeightSource reports the chain height as seen by a remote node.
type HeightSource interface {
	GetInfo(ctx context.Context) (*daemon.Info, error)
}

// Estimator derives heights from the chain's block cadence anchored at a
// known reference block.
type Estimator struct {
	chain config.ChainConfig
	now   func() time.Time
}

// NewEstimator creates an estimator for the configured chain. A zero or
// negative block time is replaced with the default so the height
// arithmetic never divides by zero.
func NewEstimator(chain config.ChainConfig) *Estimator {
	if chain.BlockTimeSeconds <= 0 {
		chain.BlockTimeSeconds = config.DefaultBlockTimeSeconds
	}
	return &Estimator{chain: chain, now: time.Now}
}

// lookbackSeconds is the scan lookback window in seconds. The window
// exists so a newly imported wallet still detects deposits received
// shortly before wallet creation.
func (e *Estimator) lookbackSeconds() int64 {
	return int64(e.chain.LookbackDays) * 86_400
}

// lookbackBlocks is the lookback window expressed in blocks.
func (e *Estimator) lookbackBlocks() uint64 {
	return uint64(e.lookbackSeconds() / e.chain.BlockTimeSeconds)
}

// clampBlocks bounds how far past the reference an estimate may reach,
// guarding against nonsensical future heights when the reference
// constants drift from reality.
func (e *Estimator) clampBlocks() uint64 {
	return uint64(int64(e.chain.ClampDays) * 86_400 / e.chain.BlockTimeSeconds)
}

// EstimateFromTimestamp returns the approximate height a wallet created
// at the given time should scan from. The creation time is pulled back
// by the lookback window, floored at the reference, and clamped so the
// result never runs ahead of the clamp window past the reference.
func (e *Estimator) EstimateFromTimestamp(createdAt time.Time) uint64 {
	adjusted := createdAt.Unix() - e.lookbackSeconds()
	if adjusted < e.chain.ReferenceTimestamp {
		adjusted = e.chain.ReferenceTimestamp
	}

	blocks := uint64((adjusted - e.chain.ReferenceTimestamp) / e.chain.BlockTimeSeconds)
	if max := e.clampBlocks(); blocks > max {
		blocks = max
	}
	return e.chain.ReferenceHeight + blocks
}

// CurrentChainHeight returns the chain height right now: the node's
// reported height when one is reachable, a wall-clock estimate
// otherwise. An unreachable node silently degrades to the estimate.
func (e *Estimator) CurrentChainHeight(ctx context.Context, source HeightSource) uint64 {
	if source != nil {
		if info, err := source.GetInfo(ctx); err == nil && info.Height > 0 {
			return info.Height
		}
	}
	return e.EstimateFromTimestamp(e.now())
}

// CalculateRestoreHeight returns the height a fresh wallet's scan should
// start from: the current height minus the lookback window, floored at
// zero.
func (e *Estimator) CalculateRestoreHeight(ctx context.Context, source HeightSource) uint64 {
	current := e.CurrentChainHeight(ctx, source)
	back := e.lookbackBlocks()
	if back >= current {
		return 0
	}
	return current - back
}
