package model

import (
	"fmt"
	"strings"
)

// Pair identifies a currency pair as BASE_QUOTE, e.g. "USD_JPY".
type Pair string

// Base returns the base currency ISO code.
func (p Pair) Base() string {
	if i := strings.IndexByte(string(p), '_'); i > 0 {
		return string(p)[:i]
	}
	return ""
}

// Quote returns the quote currency ISO code.
func (p Pair) Quote() string {
	if i := strings.IndexByte(string(p), '_'); i >= 0 && i < len(p)-1 {
		return string(p)[i+1:]
	}
	return ""
}

// Validate checks the BASE_QUOTE shape with two three-letter ISO codes.
func (p Pair) Validate() error {
	base, quote := p.Base(), p.Quote()
	if len(base) != 3 || len(quote) != 3 {
		return fmt.Errorf("invalid pair %q: want BASE_QUOTE with 3-letter codes", string(p))
	}
	if base == quote {
		return fmt.Errorf("invalid pair %q: base equals quote", string(p))
	}
	return nil
}

// PipSize returns the pip increment for the pair: 0.01 for JPY-quoted
// pairs, 0.0001 otherwise.
func (p Pair) PipSize() float64 {
	if p.Quote() == "JPY" {
		return 0.01
	}
	return 0.0001
}

// PriceTolerance is the absolute tolerance used for price comparisons:
// one tenth of the pair's pip size.
func (p Pair) PriceTolerance() float64 {
	return p.PipSize() / 10
}

// RoundStep returns the big-figure grid for the pair (100 pips). Prices
// on this grid act as psychological round-number levels.
func (p Pair) RoundStep() float64 {
	return p.PipSize() * 100
}

// Symbol renders the pair in slash notation ("USD/JPY") for data providers.
func (p Pair) Symbol() string {
	return p.Base() + "/" + p.Quote()
}
