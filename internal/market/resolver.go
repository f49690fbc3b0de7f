// Package market turns raw upstream payloads into canonical quotes and price
// histories, and values portfolios on top of them.
package market

import (
	"regexp"
	"strings"
)

// LocalSuffix is the Yahoo suffix of the São Paulo exchange (B3).
const LocalSuffix = ".SA"

// localTicker matches B3-style tickers such as PETR4 or MXRF11.
var localTicker = regexp.MustCompile(`^[A-Z]{4}[0-9]{1,2}$`)

// Candidates are the provider symbols to try for one user-entered ticker.
// Fallback is empty when no retry applies.
type Candidates struct {
	Primary  string
	Fallback string
}

// NormalizeTicker trims and upper-cases a raw ticker.
func NormalizeTicker(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// Resolve returns the primary symbol and, for bare B3-style tickers, the
// single suffixed fallback to try when the primary lookup fails.
func Resolve(raw string) Candidates {
	primary := NormalizeTicker(raw)
	c := Candidates{Primary: primary}
	if !strings.HasSuffix(primary, LocalSuffix) && localTicker.MatchString(primary) {
		c.Fallback = primary + LocalSuffix
	}
	return c
}
