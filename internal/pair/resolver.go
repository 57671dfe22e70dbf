package pair

import (
	"fmt"
	"strings"
	"sync"
)

// Slug separator. Pair slugs never contain '/', so they are safe as single
// path segments in the read API.
const Separator = "--"

// Pair is the canonical identity of two players playing together. It is a
// value derived from the two player slugs, never an independently created
// row: (A,B) and (B,A) always resolve to the same Pair.
type Pair struct {
	Player1 string `json:"player1_slug"` // lexicographically smaller slug
	Player2 string `json:"player2_slug"`
	Slug    string `json:"pair_slug"`
}

// InvalidPairError is returned for a degenerate pair request.
type InvalidPairError struct {
	Slug string
}

func (e *InvalidPairError) Error() string {
	return fmt.Sprintf("invalid pair: player %q cannot partner themselves", e.Slug)
}

// Resolver derives canonical pairs and caches them. Pairs are cheap to
// compute; the cache exists so hot paths (ingest, H2H) hand out the same
// value without re-normalizing slugs.
type Resolver struct {
	mu    sync.RWMutex
	cache map[string]Pair
}

func NewResolver() *Resolver {
	return &Resolver{cache: make(map[string]Pair)}
}

// Resolve returns the canonical Pair for two distinct player slugs.
// Resolve(a, b) == Resolve(b, a).
func (r *Resolver) Resolve(a, b string) (Pair, error) {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	if a == "" || b == "" {
		return Pair{}, &InvalidPairError{Slug: a + b}
	}
	if a == b {
		return Pair{}, &InvalidPairError{Slug: a}
	}
	if b < a {
		a, b = b, a
	}
	slug := a + Separator + b

	r.mu.RLock()
	p, ok := r.cache[slug]
	r.mu.RUnlock()
	if ok {
		return p, nil
	}

	p = Pair{Player1: a, Player2: b, Slug: slug}
	r.mu.Lock()
	r.cache[slug] = p
	r.mu.Unlock()
	return p, nil
}

// Split breaks a canonical pair slug back into its two player slugs.
func Split(slug string) (string, string, bool) {
	parts := strings.SplitN(slug, Separator, 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}
