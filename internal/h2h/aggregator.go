package h2h

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/voleai/padelpro/internal/metrics"
	"github.com/voleai/padelpro/internal/padel"
)

// Aggregator derives head-to-head summaries on demand and caches them by
// content hash. Summaries are pure functions of the contributing facts and
// filters, so a cache entry never goes stale: a new match between the
// subjects changes the key.
type Aggregator struct {
	source  FactSource
	metrics metrics.Metrics

	mu    sync.RWMutex
	cache map[string]*Summary
}

func New(source FactSource, metrics metrics.Metrics) *Aggregator {
	return &Aggregator{
		source:  source,
		metrics: metrics,
		cache:   make(map[string]*Summary),
	}
}

// Summarize compares two subjects under the given filters. Zero shared
// matches yields an all-zero summary with NoHistory set, not an error.
func (a *Aggregator) Summarize(ctx context.Context, subjectA, subjectB string, filters Filters) (*Summary, error) {
	facts, err := a.source.FactsBetween(ctx, subjectA, subjectB)
	if err != nil {
		return nil, fmt.Errorf("loading facts for %s vs %s: %w", subjectA, subjectB, err)
	}
	facts = applyFilters(facts, filters)

	key := cacheKey(subjectA, subjectB, facts, filters)
	a.mu.RLock()
	cached, ok := a.cache[key]
	a.mu.RUnlock()
	if ok {
		a.metrics.IncH2HCacheHits()
		return cached, nil
	}
	a.metrics.IncH2HCacheMisses()

	summary := build(subjectA, subjectB, facts)
	summary.CacheKey = key

	a.mu.Lock()
	a.cache[key] = summary
	a.mu.Unlock()

	log.Debug("H2H summary computed", "a", subjectA, "b", subjectB, "matches", summary.TotalMatches, "key", key[:8])
	return summary, nil
}

// Invalidate drops one cached summary by its key. Normally unnecessary since
// keys are content-addressed; exposed for the admin surface.
func (a *Aggregator) Invalidate(key string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.cache, key)
}

// Reset drops the whole cache.
func (a *Aggregator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cache = make(map[string]*Summary)
}

func applyFilters(facts []*padel.MatchFact, f Filters) []*padel.MatchFact {
	var kept []*padel.MatchFact
	for _, fact := range facts {
		if f.Surface != "" && fact.Surface != f.Surface {
			continue
		}
		if f.Category != "" && fact.Category != f.Category {
			continue
		}
		if !f.From.IsZero() && fact.Date.Before(f.From) {
			continue
		}
		if !f.To.IsZero() && fact.Date.After(f.To) {
			continue
		}
		kept = append(kept, fact)
	}
	sort.Slice(kept, func(i, j int) bool {
		if !kept[i].Date.Equal(kept[j].Date) {
			return kept[i].Date.Before(kept[j].Date)
		}
		return kept[i].Seq < kept[j].Seq
	})
	if f.Limit > 0 && len(kept) > f.Limit {
		kept = kept[len(kept)-f.Limit:]
	}
	return kept
}

func cacheKey(subjectA, subjectB string, facts []*padel.MatchFact, f Filters) string {
	ids := make([]string, len(facts))
	for i, fact := range facts {
		ids[i] = fact.ID
	}
	sort.Strings(ids)

	h := sha256.New()
	fmt.Fprintf(h, "a=%s|b=%s|%s\n", subjectA, subjectB, f.canonical())
	h.Write([]byte(strings.Join(ids, "\n")))
	return hex.EncodeToString(h.Sum(nil))
}

func build(subjectA, subjectB string, facts []*padel.MatchFact) *Summary {
	s := &Summary{SubjectA: subjectA, SubjectB: subjectB}
	if len(facts) == 0 {
		s.NoHistory = true
		return s
	}

	for _, fact := range facts {
		s.TotalMatches++
		s.MatchIDs = append(s.MatchIDs, fact.ID)

		aIsHome := fact.HomeID == subjectA
		for _, set := range fact.Sets {
			home, away := set.Home, set.Away
			if !aIsHome {
				home, away = away, home
			}
			s.GamesA += home
			s.GamesB += away
			if home > away {
				s.SetsA++
			} else if away > home {
				s.SetsB++
			}
		}
		if fact.WinnerID == subjectA {
			s.WinsA++
		} else {
			s.WinsB++
		}
	}

	// Current streak: consecutive wins by the same subject, newest first.
	last := facts[len(facts)-1].WinnerID
	streak := 0
	for i := len(facts) - 1; i >= 0; i-- {
		if facts[i].WinnerID != last {
			break
		}
		streak++
	}
	s.Streak = Streak{SubjectID: last, Length: streak}
	return s
}
