package h2h_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voleai/padelpro/internal/h2h"
	"github.com/voleai/padelpro/internal/metrics"
	"github.com/voleai/padelpro/internal/padel"
)

type stubSource struct {
	facts []*padel.MatchFact
	err   error
	calls int
}

func (s *stubSource) FactsBetween(ctx context.Context, a, b string) ([]*padel.MatchFact, error) {
	s.calls++
	return s.facts, s.err
}

func day(s string) time.Time {
	d, _ := time.ParseInLocation("2006-01-02", s, time.UTC)
	return d
}

func rivalry(id, date string, seq int64, winner string, surface padel.Surface, sets ...padel.SetScore) *padel.MatchFact {
	home, away := "galan", "lebron"
	return &padel.MatchFact{
		ID: id, TournamentID: "t1", Category: padel.CategoryMajor, Surface: surface,
		Date: day(date), Seq: seq, Kind: padel.SubjectPlayer,
		HomeID: home, AwayID: away, WinnerID: winner, Sets: sets,
	}
}

func TestSummarize_Counts(t *testing.T) {
	source := &stubSource{facts: []*padel.MatchFact{
		// galan wins 6-4 6-2.
		rivalry("m1", "2025-01-10", 1, "galan", padel.SurfaceIndoor,
			padel.SetScore{Home: 6, Away: 4}, padel.SetScore{Home: 6, Away: 2}),
		// lebron wins 4-6 6-3 6-4.
		rivalry("m2", "2025-02-10", 2, "lebron", padel.SurfaceOutdoor,
			padel.SetScore{Home: 4, Away: 6}, padel.SetScore{Home: 6, Away: 3}, padel.SetScore{Home: 4, Away: 6}),
	}}
	agg := h2h.New(source, metrics.NewMock())

	s, err := agg.Summarize(context.Background(), "galan", "lebron", h2h.Filters{})
	require.NoError(t, err)

	assert.Equal(t, 2, s.TotalMatches)
	assert.Equal(t, 1, s.WinsA)
	assert.Equal(t, 1, s.WinsB)
	assert.Equal(t, 3, s.SetsA)
	assert.Equal(t, 2, s.SetsB)
	assert.Equal(t, 6+6+4+6+4, s.GamesA)
	assert.Equal(t, 4+2+6+3+6, s.GamesB)
	assert.Equal(t, []string{"m1", "m2"}, s.MatchIDs, "chronological order")
	assert.Equal(t, h2h.Streak{SubjectID: "lebron", Length: 1}, s.Streak)
	assert.False(t, s.NoHistory)
	assert.NotEmpty(t, s.CacheKey)
}

func TestSummarize_Streak(t *testing.T) {
	source := &stubSource{facts: []*padel.MatchFact{
		rivalry("m1", "2025-01-10", 1, "lebron", padel.SurfaceIndoor, padel.SetScore{Home: 4, Away: 6}, padel.SetScore{Home: 3, Away: 6}),
		rivalry("m2", "2025-02-10", 2, "galan", padel.SurfaceIndoor, padel.SetScore{Home: 6, Away: 4}, padel.SetScore{Home: 6, Away: 3}),
		rivalry("m3", "2025-03-10", 3, "galan", padel.SurfaceIndoor, padel.SetScore{Home: 6, Away: 1}, padel.SetScore{Home: 6, Away: 2}),
	}}
	agg := h2h.New(source, metrics.NewMock())

	s, err := agg.Summarize(context.Background(), "galan", "lebron", h2h.Filters{})
	require.NoError(t, err)
	assert.Equal(t, h2h.Streak{SubjectID: "galan", Length: 2}, s.Streak)
}

func TestSummarize_ZeroHistory(t *testing.T) {
	agg := h2h.New(&stubSource{}, metrics.NewMock())

	s, err := agg.Summarize(context.Background(), "galan", "nobody", h2h.Filters{})
	require.NoError(t, err, "an empty rivalry is a valid summary, not an error")
	assert.True(t, s.NoHistory)
	assert.Zero(t, s.TotalMatches)
	assert.Zero(t, s.WinsA)
	assert.Zero(t, s.WinsB)
	assert.Empty(t, s.MatchIDs)
	assert.Equal(t, h2h.Streak{}, s.Streak)
}

func TestSummarize_Filters(t *testing.T) {
	source := &stubSource{facts: []*padel.MatchFact{
		rivalry("indoor", "2025-01-10", 1, "galan", padel.SurfaceIndoor, padel.SetScore{Home: 6, Away: 4}, padel.SetScore{Home: 6, Away: 2}),
		rivalry("outdoor", "2025-02-10", 2, "lebron", padel.SurfaceOutdoor, padel.SetScore{Home: 4, Away: 6}, padel.SetScore{Home: 2, Away: 6}),
		rivalry("late", "2025-06-10", 3, "galan", padel.SurfaceIndoor, padel.SetScore{Home: 6, Away: 0}, padel.SetScore{Home: 6, Away: 0}),
	}}
	agg := h2h.New(source, metrics.NewMock())

	indoor, err := agg.Summarize(context.Background(), "galan", "lebron", h2h.Filters{Surface: padel.SurfaceIndoor})
	require.NoError(t, err)
	assert.Equal(t, []string{"indoor", "late"}, indoor.MatchIDs)

	ranged, err := agg.Summarize(context.Background(), "galan", "lebron", h2h.Filters{From: day("2025-02-01"), To: day("2025-03-01")})
	require.NoError(t, err)
	assert.Equal(t, []string{"outdoor"}, ranged.MatchIDs)

	lastOne, err := agg.Summarize(context.Background(), "galan", "lebron", h2h.Filters{Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"late"}, lastOne.MatchIDs, "limit keeps the most recent matches")
}

func TestSummarize_CacheKeyDeterministic(t *testing.T) {
	facts := []*padel.MatchFact{
		rivalry("m1", "2025-01-10", 1, "galan", padel.SurfaceIndoor, padel.SetScore{Home: 6, Away: 4}, padel.SetScore{Home: 6, Away: 2}),
	}

	first, err := h2h.New(&stubSource{facts: facts}, metrics.NewMock()).Summarize(context.Background(), "galan", "lebron", h2h.Filters{})
	require.NoError(t, err)
	second, err := h2h.New(&stubSource{facts: facts}, metrics.NewMock()).Summarize(context.Background(), "galan", "lebron", h2h.Filters{})
	require.NoError(t, err)
	assert.Equal(t, first.CacheKey, second.CacheKey, "identical inputs hash identically across instances")
	assert.Equal(t, first, second)

	filtered, err := h2h.New(&stubSource{facts: facts}, metrics.NewMock()).Summarize(context.Background(), "galan", "lebron", h2h.Filters{Surface: padel.SurfaceIndoor})
	require.NoError(t, err)
	assert.NotEqual(t, first.CacheKey, filtered.CacheKey, "filters participate in the key")
}

func TestSummarize_CacheHitSkipsRebuild(t *testing.T) {
	source := &stubSource{facts: []*padel.MatchFact{
		rivalry("m1", "2025-01-10", 1, "galan", padel.SurfaceIndoor, padel.SetScore{Home: 6, Away: 4}, padel.SetScore{Home: 6, Away: 2}),
	}}
	agg := h2h.New(source, metrics.NewMock())

	first, err := agg.Summarize(context.Background(), "galan", "lebron", h2h.Filters{})
	require.NoError(t, err)
	second, err := agg.Summarize(context.Background(), "galan", "lebron", h2h.Filters{})
	require.NoError(t, err)
	assert.Same(t, first, second, "second call is served from cache")

	// A new match changes the contributing set, so the key changes and the
	// stale entry is simply never hit again.
	source.facts = append(source.facts,
		rivalry("m2", "2025-02-10", 2, "lebron", padel.SurfaceIndoor, padel.SetScore{Home: 3, Away: 6}, padel.SetScore{Home: 4, Away: 6}))
	third, err := agg.Summarize(context.Background(), "galan", "lebron", h2h.Filters{})
	require.NoError(t, err)
	assert.NotEqual(t, first.CacheKey, third.CacheKey)
	assert.Equal(t, 2, third.TotalMatches)
}

func TestSummarize_SourceError(t *testing.T) {
	wantErr := errors.New("db closed")
	agg := h2h.New(&stubSource{err: wantErr}, metrics.NewMock())

	_, err := agg.Summarize(context.Background(), "galan", "lebron", h2h.Filters{})
	require.ErrorIs(t, err, wantErr)
}
