package glicko2

import "fmt"

// Points awarded per outcome.
const (
	PointsForWin  = 1.0
	PointsForLoss = 0.0
	PointsForDraw = 0.5
)

// Result records one outcome between two distinct competitors. For a draw
// the winner/loser slots carry no meaning.
type Result struct {
	winner *Rating
	loser  *Rating
	draw   bool
}

// NewResult records a win for winner over loser.
func NewResult(winner, loser *Rating) (*Result, error) {
	if err := validPlayers(winner, loser); err != nil {
		return nil, err
	}
	return &Result{winner: winner, loser: loser}, nil
}

// NewDraw records a drawn game between a and b.
func NewDraw(a, b *Rating) (*Result, error) {
	if err := validPlayers(a, b); err != nil {
		return nil, err
	}
	return &Result{winner: a, loser: b, draw: true}, nil
}

func validPlayers(a, b *Rating) error {
	if a == nil || b == nil {
		return fmt.Errorf("%w: nil competitor", ErrInvalidArgument)
	}
	if a == b {
		return fmt.Errorf("%w (%s)", ErrSelfPairing, a.id)
	}
	return nil
}

// Winner returns the first slot.
func (r *Result) Winner() *Rating { return r.winner }

// Loser returns the second slot.
func (r *Result) Loser() *Rating { return r.loser }

// IsDraw reports whether the game was drawn.
func (r *Result) IsDraw() bool { return r.draw }

// Participated reports whether player took part in this game.
func (r *Result) Participated(player *Rating) bool {
	return player == r.winner || player == r.loser
}

// Score returns the points player earned from this game.
func (r *Result) Score(player *Rating) (float64, error) {
	if !r.Participated(player) {
		return 0, r.notParticipant(player)
	}
	switch {
	case r.draw:
		return PointsForDraw, nil
	case player == r.winner:
		return PointsForWin, nil
	default:
		return PointsForLoss, nil
	}
}

// Opponent returns the other participant.
func (r *Result) Opponent(player *Rating) (*Rating, error) {
	switch player {
	case r.winner:
		return r.loser, nil
	case r.loser:
		return r.winner, nil
	}
	return nil, r.notParticipant(player)
}

func (r *Result) notParticipant(player *Rating) error {
	if player == nil {
		return fmt.Errorf("%w: nil competitor", ErrNotParticipant)
	}
	return fmt.Errorf("%w: %s", ErrNotParticipant, player.id)
}
