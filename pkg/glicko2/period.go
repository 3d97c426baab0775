package glicko2

import (
	"slices"

	mapset "github.com/deckarep/golang-set/v2"
)

// PeriodResultSet accumulates the results of one rating period, indexed by
// competitor, plus the competitors registered to be updated even when idle.
//
// A PeriodResultSet is not safe for concurrent use.
type PeriodResultSet struct {
	index        map[*Rating][]*Result
	participants mapset.Set[*Rating]
	results      int
}

// NewPeriodResultSet creates an empty set, optionally pre-registering participants.
func NewPeriodResultSet(participants ...*Rating) *PeriodResultSet {
	s := &PeriodResultSet{
		index:        make(map[*Rating][]*Result),
		participants: mapset.NewThreadUnsafeSet[*Rating](),
	}
	for _, p := range participants {
		s.AddParticipant(p)
	}
	return s
}

// AddResult records a win for winner over loser.
func (s *PeriodResultSet) AddResult(winner, loser *Rating) error {
	res, err := NewResult(winner, loser)
	if err != nil {
		return err
	}
	s.add(res)
	return nil
}

// AddDraw records a drawn game between a and b.
func (s *PeriodResultSet) AddDraw(a, b *Rating) error {
	res, err := NewDraw(a, b)
	if err != nil {
		return err
	}
	s.add(res)
	return nil
}

func (s *PeriodResultSet) add(res *Result) {
	s.index[res.winner] = append(s.index[res.winner], res)
	s.index[res.loser] = append(s.index[res.loser], res)
	s.results++
}

// AddParticipant makes sure r is updated in the next period even with no results.
func (s *PeriodResultSet) AddParticipant(r *Rating) {
	if r == nil {
		return
	}
	s.participants.Add(r)
}

// RemoveParticipant drops an explicit registration. Results already recorded
// for r still make it a participant of the current period.
func (s *PeriodResultSet) RemoveParticipant(r *Rating) {
	s.participants.Remove(r)
}

// Tracked reports whether r is explicitly registered.
func (s *PeriodResultSet) Tracked(r *Rating) bool {
	return s.participants.Contains(r)
}

// ResultsFor returns a copy of the results player took part in, in
// insertion order.
func (s *PeriodResultSet) ResultsFor(player *Rating) []*Result {
	return slices.Clone(s.index[player])
}

// Participants returns every registered competitor and every competitor with
// at least one result this period. The order is unspecified.
func (s *PeriodResultSet) Participants() []*Rating {
	all := s.participants.Clone()
	for p := range s.index {
		all.Add(p)
	}
	return all.ToSlice()
}

// ResultCount returns the number of results recorded this period.
func (s *PeriodResultSet) ResultCount() int { return s.results }

// Clear empties the results in preparation for the next period. Explicit
// participant registrations are kept.
func (s *PeriodResultSet) Clear() {
	clear(s.index)
	s.results = 0
}
