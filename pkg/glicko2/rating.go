package glicko2

import (
	"fmt"
	"math"

	"github.com/google/uuid"
)

// Rating holds one competitor's Glicko-2 rating. Values are stored on the
// original scale; the Internal* accessors convert on the way in and out.
//
// Competitors are compared by identity (the pointer), never by value: two
// Ratings with equal numbers are still different competitors.
type Rating struct {
	id          uuid.UUID
	rating      float64
	deviation   float64
	volatility  float64
	resultCount int

	// Glicko-2 scale values staged by the calculator between compute and
	// commit. Zero outside of UpdateRatings.
	workingRating     float64
	workingDeviation  float64
	workingVolatility float64
}

// Snapshot is a plain copy of the persisted fields of a Rating.
type Snapshot struct {
	ID          uuid.UUID `json:"id"`
	Rating      float64   `json:"rating"`
	Deviation   float64   `json:"deviation"`
	Volatility  float64   `json:"volatility"`
	ResultCount int       `json:"result_count"`
}

// NewRating creates a Rating from explicit original-scale values.
func NewRating(id uuid.UUID, rating, deviation, volatility float64) (*Rating, error) {
	if err := validateState(rating, deviation, volatility); err != nil {
		return nil, err
	}
	return &Rating{
		id:         id,
		rating:     rating,
		deviation:  deviation,
		volatility: volatility,
	}, nil
}

// RestoreRating rebuilds a Rating from a persisted snapshot.
func RestoreRating(s Snapshot) (*Rating, error) {
	if s.ResultCount < 0 {
		return nil, fmt.Errorf("%w: negative result count %d", ErrInvalidArgument, s.ResultCount)
	}
	r, err := NewRating(s.ID, s.Rating, s.Deviation, s.Volatility)
	if err != nil {
		return nil, err
	}
	r.resultCount = s.ResultCount
	return r, nil
}

func validateState(rating, deviation, volatility float64) error {
	switch {
	case !finite(rating):
		return fmt.Errorf("%w: rating %v is not finite", ErrInvalidArgument, rating)
	case !positive(deviation):
		return fmt.Errorf("%w: deviation %v must be positive", ErrInvalidArgument, deviation)
	case !positive(volatility):
		return fmt.Errorf("%w: volatility %v must be positive", ErrInvalidArgument, volatility)
	}
	return nil
}

func positive(x float64) bool {
	return x > 0 && !math.IsInf(x, 1)
}

// ID returns the external identifier. It is used for diagnostics only.
func (r *Rating) ID() uuid.UUID { return r.id }

// Rating returns the rating on the original scale.
func (r *Rating) Rating() float64 { return r.rating }

// SetRating sets the rating on the original scale. It must be finite.
func (r *Rating) SetRating(rating float64) error {
	if !finite(rating) {
		return fmt.Errorf("%w: rating %v is not finite", ErrInvalidArgument, rating)
	}
	r.rating = rating
	return nil
}

// InternalRating returns the rating on the Glicko-2 scale.
func (r *Rating) InternalRating() float64 { return ToInternalRating(r.rating) }

// SetInternalRating sets the rating from a Glicko-2 scale value.
func (r *Rating) SetInternalRating(rating float64) error {
	return r.SetRating(ToOriginalRating(rating))
}

// Deviation returns the rating deviation on the original scale.
func (r *Rating) Deviation() float64 { return r.deviation }

// SetDeviation sets the rating deviation on the original scale. It must be
// finite and positive.
func (r *Rating) SetDeviation(deviation float64) error {
	if !positive(deviation) {
		return fmt.Errorf("%w: deviation %v must be positive", ErrInvalidArgument, deviation)
	}
	r.deviation = deviation
	return nil
}

// InternalDeviation returns the rating deviation on the Glicko-2 scale.
func (r *Rating) InternalDeviation() float64 { return ToInternalDeviation(r.deviation) }

// SetInternalDeviation sets the rating deviation from a Glicko-2 scale value.
func (r *Rating) SetInternalDeviation(deviation float64) error {
	return r.SetDeviation(ToOriginalDeviation(deviation))
}

// Volatility is the same on both scales.
func (r *Rating) Volatility() float64 { return r.volatility }

// SetVolatility sets the volatility. It must be finite and positive.
func (r *Rating) SetVolatility(volatility float64) error {
	if !positive(volatility) {
		return fmt.Errorf("%w: volatility %v must be positive", ErrInvalidArgument, volatility)
	}
	r.volatility = volatility
	return nil
}

// ResultCount returns the number of results the rating has been computed from.
func (r *Rating) ResultCount() int { return r.resultCount }

// Snapshot copies the persisted fields.
func (r *Rating) Snapshot() Snapshot {
	return Snapshot{
		ID:          r.id,
		Rating:      r.rating,
		Deviation:   r.deviation,
		Volatility:  r.volatility,
		ResultCount: r.resultCount,
	}
}

func (r *Rating) String() string {
	return fmt.Sprintf("%s / %.2f / %.2f / %.5f / %d",
		r.id, r.rating, r.deviation, r.volatility, r.resultCount)
}

func (r *Rating) setWorkingRating(v float64)     { r.workingRating = v }
func (r *Rating) setWorkingDeviation(v float64)  { r.workingDeviation = v }
func (r *Rating) setWorkingVolatility(v float64) { r.workingVolatility = v }

func (r *Rating) incrementResultCount(n int) { r.resultCount += n }

// finalize adopts the working values as current and resets them. The
// calculator has already checked them.
func (r *Rating) finalize() {
	r.rating = ToOriginalRating(r.workingRating)
	r.deviation = ToOriginalDeviation(r.workingDeviation)
	r.volatility = r.workingVolatility

	r.workingRating = 0
	r.workingDeviation = 0
	r.workingVolatility = 0
}
