package screening

import (
	"errors"
	"strings"
)

// ErrEmptyUniverse means there is nothing to scan.
var ErrEmptyUniverse = errors.New("candidate universe is empty")

// Universe supplies the tickers to evaluate, in scan order.
type Universe struct {
	static    []string
	scanLimit int
}

// NewUniverse creates a universe over a curated list. A non-positive
// scanLimit scans the whole list.
func NewUniverse(static []string, scanLimit int) *Universe {
	return &Universe{static: static, scanLimit: scanLimit}
}

// Symbols returns the bounded scan list. A non-empty override replaces the
// curated list. Duplicates keep their first position.
func (u *Universe) Symbols(override []string) ([]string, error) {
	src := u.static
	if len(override) > 0 {
		src = override
	}

	seen := make(map[string]bool, len(src))
	out := make([]string, 0, len(src))
	for _, s := range src {
		sym := strings.ToUpper(strings.TrimSpace(s))
		if sym == "" || seen[sym] {
			continue
		}
		seen[sym] = true
		out = append(out, sym)
		if u.scanLimit > 0 && len(out) == u.scanLimit {
			break
		}
	}

	if len(out) == 0 {
		return nil, ErrEmptyUniverse
	}
	return out, nil
}
