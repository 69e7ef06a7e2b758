package engine

import (
	"fmt"

	"github.com/Alias1177/signalengine/internal/model"
)

// capEpsilon absorbs floating point noise in cap comparisons.
const capEpsilon = 1e-9

// Ledger tracks the risk fraction committed against each currency within
// a batch. Only the composer writes to it; everything else reads through
// snapshots. The caller owns carry-over and reset between batches.
type Ledger struct {
	exposure model.Exposure
}

// NewLedger seeds a ledger with carry-over exposure from the caller.
func NewLedger(carry model.Exposure) *Ledger {
	return &Ledger{exposure: carry.Clone()}
}

// Exposure returns the committed risk against one currency.
func (l *Ledger) Exposure(currency string) float64 {
	return l.exposure[currency]
}

// Heat returns the total committed risk over all currencies.
func (l *Ledger) Heat() float64 {
	return l.exposure.Heat()
}

// Snapshot returns a read-only copy of the ledger state.
func (l *Ledger) Snapshot() model.Exposure {
	return l.exposure.Clone()
}

// Available returns the largest risk fraction a new trade on pair may
// commit without breaching the per-currency caps or the portfolio heat
// cap. A commit accrues against base and quote, so the heat headroom is
// halved.
func (l *Ledger) Available(pair model.Pair, caps model.RiskCaps) float64 {
	base, quote := pair.Base(), pair.Quote()
	avail := caps.CapFor(base) - l.exposure[base]
	if q := caps.CapFor(quote) - l.exposure[quote]; q < avail {
		avail = q
	}
	if h := (caps.PortfolioHeatCap - l.Heat()) / 2; h < avail {
		avail = h
	}
	if avail < 0 {
		return 0
	}
	return avail
}

// Commit atomically adds risk against the pair's base and quote
// currencies and verifies the cap invariants afterwards. A breach or a
// non-positive risk is an InvariantError: sizing must have rejected the
// trade before Commit.
func (l *Ledger) Commit(pair model.Pair, risk float64, caps model.RiskCaps) error {
	if risk <= 0 {
		return &InvariantError{
			Reason: fmt.Sprintf("commit with non-positive risk %.6f for %s", risk, pair),
			Ledger: l.Snapshot(),
		}
	}
	l.exposure[pair.Base()] += risk
	l.exposure[pair.Quote()] += risk

	for currency, committed := range l.exposure {
		if committed < -capEpsilon {
			return &InvariantError{
				Reason: fmt.Sprintf("negative exposure %.6f for %s", committed, currency),
				Ledger: l.Snapshot(),
			}
		}
		if cap := caps.CapFor(currency); committed > cap+capEpsilon {
			return &InvariantError{
				Reason: fmt.Sprintf("%s exposure %.6f exceeds cap %.6f after commit on %s", currency, committed, cap, pair),
				Ledger: l.Snapshot(),
			}
		}
	}
	if heat := l.Heat(); heat > caps.PortfolioHeatCap+capEpsilon {
		return &InvariantError{
			Reason: fmt.Sprintf("portfolio heat %.6f exceeds cap %.6f after commit on %s", heat, caps.PortfolioHeatCap, pair),
			Ledger: l.Snapshot(),
		}
	}
	return nil
}
