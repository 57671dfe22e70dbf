package ranking

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/voleai/padelpro/internal/padel"
)

// SnapshotStore is the persistence boundary for applied ranking state.
// Implementations are expected to be transactional per call; the accumulator
// retries transient failures, the pure accumulation itself never does.
type SnapshotStore interface {
	SaveContribution(ctx context.Context, c Contribution) error
	SaveSnapshots(ctx context.Context, snaps []Snapshot) error
	DeleteFrom(ctx context.Context, subjectID string, from time.Time) (int64, error)
	Evolution(ctx context.Context, subjectID string) ([]Snapshot, error)
	LatestStandings(ctx context.Context, kind padel.SubjectKind, limit int) ([]Snapshot, error)
	Trending(ctx context.Context, kind padel.SubjectKind, limit int) ([]Snapshot, error)
}

// subjectState is the per-subject event-sourced state. Its mutex implements
// the single-writer-per-subject discipline: two facts touching the same
// subject serialize here, facts over disjoint subjects run in parallel.
type subjectState struct {
	mu        sync.Mutex
	id        string
	kind      padel.SubjectKind
	contribs  []Contribution
	snapshots []Snapshot
	facts     []*padel.MatchFact // ordered log of facts involving this subject
	lastDate  time.Time
	lastSeq   int64
}

// Accumulator folds a time-ordered stream of MatchFacts into per-subject
// ranking state. All totals are rolling-window sums over contributions;
// ranks are always derived, never stored as independent mutable fields.
type Accumulator struct {
	// mu guards the subjects map and all state slices. Apply holds it only
	// for the in-memory read/commit phases; persistence I/O happens outside.
	mu       sync.RWMutex
	subjects map[string]*subjectState

	window  time.Duration
	formula PointsFormula
	store   SnapshotStore // optional
}

// New creates an Accumulator with the given rolling window and formula.
// store may be nil for a purely in-memory engine (tests, replays).
func New(windowWeeks int, formula PointsFormula, store SnapshotStore) *Accumulator {
	return &Accumulator{
		subjects: make(map[string]*subjectState),
		window:   time.Duration(windowWeeks) * 7 * 24 * time.Hour,
		formula:  formula,
		store:    store,
	}
}

// Register makes a subject known to the accumulator. Registering the same
// subject twice is a no-op.
func (a *Accumulator) Register(id string, kind padel.SubjectKind) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.subjects[id]; ok {
		return
	}
	a.subjects[id] = &subjectState{id: id, kind: kind}
}

// Registered reports whether a subject is known.
func (a *Accumulator) Registered(id string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	_, ok := a.subjects[id]
	return ok
}

// Apply folds one completed match into the ranking state. The winner gains
// formula points, the loser's total is untouched (non-punitive model), and a
// snapshot is appended for both participants. A failed apply leaves all
// state exactly as it was.
func (a *Accumulator) Apply(ctx context.Context, fact *padel.MatchFact) error {
	home, away, err := a.lookup(fact)
	if err != nil {
		return err
	}

	// Per-subject write discipline; lock order by ID avoids deadlock.
	first, second := home, away
	if second.id < first.id {
		first, second = second, first
	}
	first.mu.Lock()
	defer first.mu.Unlock()
	second.mu.Lock()
	defer second.mu.Unlock()

	// Stage everything under a read view of the shared state.
	a.mu.RLock()
	contrib, snaps, err := a.stage(fact, home, away, false)
	a.mu.RUnlock()
	if err != nil {
		return err
	}

	// Durable state first: if persistence ultimately fails, the in-memory
	// state was never touched.
	if err := a.persist(ctx, contrib, snaps); err != nil {
		return fmt.Errorf("persisting fact %s: %w", fact.ID, err)
	}

	a.mu.Lock()
	a.commit(fact, home, away, contrib, snaps)
	a.mu.Unlock()
	return nil
}

func (a *Accumulator) lookup(fact *padel.MatchFact) (*subjectState, *subjectState, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	home, ok := a.subjects[fact.HomeID]
	if !ok || home.kind != fact.Kind {
		return nil, nil, &UnknownSubjectError{SubjectID: fact.HomeID}
	}
	away, ok := a.subjects[fact.AwayID]
	if !ok || away.kind != fact.Kind {
		return nil, nil, &UnknownSubjectError{SubjectID: fact.AwayID}
	}
	return home, away, nil
}

// stage validates ordering and computes the staged contribution and both
// snapshots without mutating anything. Caller holds a.mu (read) and both
// subject mutexes.
func (a *Accumulator) stage(fact *padel.MatchFact, home, away *subjectState, recompute bool) (Contribution, []Snapshot, error) {
	if !recompute {
		for _, st := range []*subjectState{home, away} {
			if before(fact.Date, fact.Seq, st.lastDate, st.lastSeq) {
				return Contribution{}, nil, &OutOfOrderIngestError{
					SubjectID: st.id,
					LastDate:  st.lastDate, LastSeq: st.lastSeq,
					FactDate: fact.Date, FactSeq: fact.Seq,
				}
			}
		}
	}

	winner, loser := home, away
	if fact.WinnerID == away.id {
		winner, loser = away, home
	}

	winnerBefore := rollingTotal(winner.contribs, fact.Date, a.window)
	loserBefore := rollingTotal(loser.contribs, fact.Date, a.window)
	points := a.formula.Points(fact.Category, winnerBefore, loserBefore)

	contrib := Contribution{
		SubjectID: winner.id,
		MatchID:   fact.ID,
		Date:      fact.Date,
		Seq:       fact.Seq,
		Points:    points,
	}

	winnerAfter := winnerBefore + points
	snaps := []Snapshot{
		{
			SubjectID: winner.id, Kind: winner.kind,
			AsOf: fact.Date, Seq: fact.Seq,
			Points:       winnerAfter,
			Rank:         a.rankWith(winner.id, winnerAfter, fact.Seq, winner.kind, fact.Date),
			PointsChange: points,
		},
		{
			SubjectID: loser.id, Kind: loser.kind,
			AsOf: fact.Date, Seq: fact.Seq,
			Points:       loserBefore,
			Rank:         a.rankWith(loser.id, loserBefore, lastChangeSeq(loser.contribs, fact.Date, a.window), loser.kind, fact.Date),
			PointsChange: loserBefore - lastSnapshotPoints(loser.snapshots),
		},
	}
	return contrib, snaps, nil
}

func (a *Accumulator) persist(ctx context.Context, contrib Contribution, snaps []Snapshot) error {
	if a.store == nil {
		return nil
	}
	if err := withRetry(ctx, func() error { return a.store.SaveContribution(ctx, contrib) }); err != nil {
		return err
	}
	return withRetry(ctx, func() error { return a.store.SaveSnapshots(ctx, snaps) })
}

// commit applies the staged values. Caller holds a.mu (write) and both
// subject mutexes.
func (a *Accumulator) commit(fact *padel.MatchFact, home, away *subjectState, contrib Contribution, snaps []Snapshot) {
	for _, st := range []*subjectState{home, away} {
		if contrib.SubjectID == st.id {
			st.contribs = append(st.contribs, contrib)
		}
		for _, s := range snaps {
			if s.SubjectID == st.id {
				st.snapshots = append(st.snapshots, s)
			}
		}
		st.facts = append(st.facts, fact)
		st.lastDate, st.lastSeq = fact.Date, fact.Seq
	}
}

// CurrentPoints returns the subject's rolling-window total as of the given
// date. Contributions older than the window contribute zero.
func (a *Accumulator) CurrentPoints(subjectID string, asOf time.Time) (float64, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	st, ok := a.subjects[subjectID]
	if !ok {
		return 0, &UnknownSubjectError{SubjectID: subjectID}
	}
	return rollingTotal(st.contribs, asOf, a.window), nil
}

// Snapshots returns a copy of the subject's append-only snapshot sequence.
func (a *Accumulator) Snapshots(subjectID string) ([]Snapshot, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	st, ok := a.subjects[subjectID]
	if !ok {
		return nil, &UnknownSubjectError{SubjectID: subjectID}
	}
	out := make([]Snapshot, len(st.snapshots))
	copy(out, st.snapshots)
	return out, nil
}

// rankWith derives the 1-based rank the given subject would hold at asOf if
// its total were pts. Caller holds a.mu.
func (a *Accumulator) rankWith(subjectID string, pts float64, changeSeq int64, kind padel.SubjectKind, asOf time.Time) int {
	rank := 1
	for id, st := range a.subjects {
		if id == subjectID || st.kind != kind {
			continue
		}
		otherPts := rollingTotal(st.contribs, asOf, a.window)
		otherSeq := lastChangeSeq(st.contribs, asOf, a.window)
		if beats(otherPts, otherSeq, id, pts, changeSeq, subjectID) {
			rank++
		}
	}
	return rank
}

// Standings derives the total ordering of all subjects of a kind at a date.
// Ties break toward the longer-standing total (earlier change sequence),
// then by slug for full determinism.
func (a *Accumulator) Standings(kind padel.SubjectKind, asOf time.Time) []StandingRow {
	a.mu.RLock()
	defer a.mu.RUnlock()

	type entry struct {
		id  string
		pts float64
		seq int64
	}
	var entries []entry
	for id, st := range a.subjects {
		if st.kind != kind {
			continue
		}
		entries = append(entries, entry{
			id:  id,
			pts: rollingTotal(st.contribs, asOf, a.window),
			seq: lastChangeSeq(st.contribs, asOf, a.window),
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return beats(entries[i].pts, entries[i].seq, entries[i].id, entries[j].pts, entries[j].seq, entries[j].id)
	})

	rows := make([]StandingRow, len(entries))
	for i, e := range entries {
		rows[i] = StandingRow{SubjectID: e.id, Points: e.pts, Rank: i + 1}
	}
	return rows
}

// AmendFact replaces a fact in the logs of both its subjects. The caller
// must follow up with Recompute for each affected subject from the fact's
// date.
func (a *Accumulator) AmendFact(fact *padel.MatchFact) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	replaced := false
	for _, st := range a.subjects {
		for i, f := range st.facts {
			if f.ID == fact.ID {
				st.facts[i] = fact
				replaced = true
			}
		}
	}
	if !replaced {
		return fmt.Errorf("fact %s not found in any subject log", fact.ID)
	}
	return nil
}

// DeleteFact removes a fact from all subject logs and returns the affected
// subject IDs and the fact date, so the caller can recompute from there.
func (a *Accumulator) DeleteFact(matchID string) ([]string, time.Time, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	var affected []string
	var date time.Time
	for id, st := range a.subjects {
		kept := st.facts[:0]
		for _, f := range st.facts {
			if f.ID == matchID {
				affected = append(affected, id)
				date = f.Date
				continue
			}
			kept = append(kept, f)
		}
		st.facts = kept
	}
	if len(affected) == 0 {
		return nil, time.Time{}, fmt.Errorf("fact %s not found in any subject log", matchID)
	}
	sort.Strings(affected)
	return affected, date, nil
}

// Recompute invalidates every contribution and snapshot of the subject dated
// on/after from and replays its retained fact log from that point. The cost
// is bounded by the number of facts after the correction, not total history.
// Idempotent: running it twice yields the same resulting state.
func (a *Accumulator) Recompute(ctx context.Context, subjectID string, from time.Time) (RecomputeReport, error) {
	a.mu.RLock()
	st, ok := a.subjects[subjectID]
	a.mu.RUnlock()
	if !ok {
		return RecomputeReport{}, &UnknownSubjectError{SubjectID: subjectID}
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	report := RecomputeReport{SubjectID: subjectID}

	a.mu.Lock()
	// Drop state from the correction point.
	keptContribs := st.contribs[:0]
	for _, c := range st.contribs {
		if c.Date.Before(from) {
			keptContribs = append(keptContribs, c)
		}
	}
	st.contribs = keptContribs

	keptSnaps := make([]Snapshot, 0, len(st.snapshots))
	for _, s := range st.snapshots {
		if s.AsOf.Before(from) {
			keptSnaps = append(keptSnaps, s)
		} else {
			report.SnapshotsInvalidated++
		}
	}
	st.snapshots = keptSnaps

	// Rewind the cursor to the last fact before the correction point.
	st.lastDate, st.lastSeq = time.Time{}, 0
	var replay []*padel.MatchFact
	for _, f := range st.facts {
		if f.Date.Before(from) {
			st.lastDate, st.lastSeq = f.Date, f.Seq
			continue
		}
		replay = append(replay, f)
	}
	sort.Slice(replay, func(i, j int) bool {
		return before(replay[i].Date, replay[i].Seq, replay[j].Date, replay[j].Seq)
	})
	a.mu.Unlock()

	if a.store != nil {
		if _, err := withRetryCount(ctx, func() (int64, error) { return a.store.DeleteFrom(ctx, subjectID, from) }); err != nil {
			return report, fmt.Errorf("invalidating persisted state for %s: %w", subjectID, err)
		}
	}

	for _, fact := range replay {
		// Interruptible between facts; the replayed prefix stays consistent.
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if err := a.replayOne(ctx, st, fact); err != nil {
			return report, err
		}
		report.SnapshotsRecreated++
	}

	log.Info("Recompute finished", "subject", subjectID, "from", from.Format("2006-01-02"),
		"invalidated", report.SnapshotsInvalidated, "recreated", report.SnapshotsRecreated)
	return report, nil
}

// replayOne re-applies a single fact for one subject during recompute.
// Only the recomputing subject's state is rewritten; the opponent keeps its
// own chain (and gets its own recompute if it was affected).
func (a *Accumulator) replayOne(ctx context.Context, st *subjectState, fact *padel.MatchFact) error {
	a.mu.RLock()
	won := fact.WinnerID == st.id
	ownBefore := rollingTotal(st.contribs, fact.Date, a.window)

	oppID := fact.HomeID
	if oppID == st.id {
		oppID = fact.AwayID
	}
	var oppPts float64
	if opp, ok := a.subjects[oppID]; ok {
		oppPts = rollingTotal(opp.contribs, fact.Date, a.window)
	}

	var contrib *Contribution
	points := 0.0
	total := ownBefore
	if won {
		points = a.formula.Points(fact.Category, ownBefore, oppPts)
		total = ownBefore + points
		contrib = &Contribution{SubjectID: st.id, MatchID: fact.ID, Date: fact.Date, Seq: fact.Seq, Points: points}
	}
	snap := Snapshot{
		SubjectID: st.id, Kind: st.kind,
		AsOf: fact.Date, Seq: fact.Seq,
		Points:       total,
		Rank:         a.rankWith(st.id, total, fact.Seq, st.kind, fact.Date),
		PointsChange: points,
	}
	a.mu.RUnlock()

	if a.store != nil {
		if contrib != nil {
			if err := withRetry(ctx, func() error { return a.store.SaveContribution(ctx, *contrib) }); err != nil {
				return err
			}
		}
		if err := withRetry(ctx, func() error { return a.store.SaveSnapshots(ctx, []Snapshot{snap}) }); err != nil {
			return err
		}
	}

	a.mu.Lock()
	if contrib != nil {
		st.contribs = append(st.contribs, *contrib)
	}
	st.snapshots = append(st.snapshots, snap)
	st.lastDate, st.lastSeq = fact.Date, fact.Seq
	a.mu.Unlock()
	return nil
}

// rollingTotal sums contributions inside (asOf-window, asOf]. Totals can
// never go negative: contributions are non-negative and only expire.
func rollingTotal(contribs []Contribution, asOf time.Time, window time.Duration) float64 {
	cutoff := asOf.Add(-window)
	total := 0.0
	for _, c := range contribs {
		if c.Date.After(cutoff) && !c.Date.After(asOf) {
			total += c.Points
		}
	}
	return total
}

// lastChangeSeq returns the sequence of the newest non-expired contribution,
// i.e. when the subject's current total was reached. Used for tie-breaking:
// the longer-standing score wins.
func lastChangeSeq(contribs []Contribution, asOf time.Time, window time.Duration) int64 {
	cutoff := asOf.Add(-window)
	var seq int64
	for _, c := range contribs {
		if c.Date.After(cutoff) && !c.Date.After(asOf) && c.Seq > seq {
			seq = c.Seq
		}
	}
	return seq
}

func lastSnapshotPoints(snaps []Snapshot) float64 {
	if len(snaps) == 0 {
		return 0
	}
	return snaps[len(snaps)-1].Points
}

// before reports whether (d1, s1) orders strictly before (d2, s2).
func before(d1 time.Time, s1 int64, d2 time.Time, s2 int64) bool {
	if !d1.Equal(d2) {
		return d1.Before(d2)
	}
	return s1 < s2
}

// beats is the standings ordering: more points first, then the earlier
// change sequence, then slug.
func beats(pts1 float64, seq1 int64, id1 string, pts2 float64, seq2 int64, id2 string) bool {
	if pts1 != pts2 {
		return pts1 > pts2
	}
	if seq1 != seq2 {
		return seq1 < seq2
	}
	return id1 < id2
}
