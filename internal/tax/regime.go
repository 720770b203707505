package tax

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidRegime is returned when a slab table does not cover [0, ∞) contiguously.
	ErrInvalidRegime = errors.New("invalid regime")
)

// TaxSlab is a single income band of a regime. GT is exclusive, LTE inclusive;
// a nil LTE marks the unbounded top slab.
type TaxSlab struct {
	GT              float64  `json:"gt"`
	LTE             *float64 `json:"lte"`
	RateMultiplier  float64  `json:"rateMultiplier"`
	TaxFromPrevSlab float64  `json:"taxFromPrevSlab"`
}

// Unbounded reports whether the slab has no upper limit.
func (s TaxSlab) Unbounded() bool { return s.LTE == nil }

// Band is the input form of a slab: an upper bound and a marginal rate.
type Band struct {
	UpTo *float64 `yaml:"upTo" json:"upTo"`
	Rate float64  `yaml:"rate" json:"rate"`
}

// Regime is a named, immutable progressive rate schedule.
type Regime struct {
	name  string
	slabs []TaxSlab
}

// NewRegime builds a regime from consecutive bands starting at zero. The last
// band must be unbounded. TaxFromPrevSlab is precomputed for every slab.
func NewRegime(name string, bands []Band) (Regime, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Regime{}, fmt.Errorf("%w: name is required", ErrInvalidRegime)
	}
	if len(bands) == 0 {
		return Regime{}, fmt.Errorf("%w: %s has no slabs", ErrInvalidRegime, name)
	}

	slabs := make([]TaxSlab, 0, len(bands))
	lower := decimal.Zero
	carried := decimal.Zero
	for i, band := range bands {
		if math.IsNaN(band.Rate) || band.Rate < 0 || band.Rate > 1 {
			return Regime{}, fmt.Errorf("%w: %s slab %d rate %v outside [0, 1]", ErrInvalidRegime, name, i, band.Rate)
		}
		last := i == len(bands)-1
		slab := TaxSlab{
			GT:              lower.InexactFloat64(),
			RateMultiplier:  band.Rate,
			TaxFromPrevSlab: carried.InexactFloat64(),
		}
		if band.UpTo == nil {
			if !last {
				return Regime{}, fmt.Errorf("%w: %s slab %d is unbounded but not last", ErrInvalidRegime, name, i)
			}
			slabs = append(slabs, slab)
			break
		}
		if last {
			return Regime{}, fmt.Errorf("%w: %s top slab must be unbounded", ErrInvalidRegime, name)
		}
		if math.IsNaN(*band.UpTo) || math.IsInf(*band.UpTo, 0) {
			return Regime{}, fmt.Errorf("%w: %s slab %d upper bound %v is not finite", ErrInvalidRegime, name, i, *band.UpTo)
		}
		upper := decimal.NewFromFloat(*band.UpTo)
		if !upper.GreaterThan(lower) {
			return Regime{}, fmt.Errorf("%w: %s slab %d upper bound %v not above %v", ErrInvalidRegime, name, i, *band.UpTo, slab.GT)
		}
		lte := upper.InexactFloat64()
		slab.LTE = &lte
		slabs = append(slabs, slab)

		carried = carried.Add(upper.Sub(lower).Mul(decimal.NewFromFloat(band.Rate)))
		lower = upper
	}
	return Regime{name: name, slabs: slabs}, nil
}

// MustRegime is NewRegime for static tables; it panics on error.
func MustRegime(name string, bands []Band) Regime {
	r, err := NewRegime(name, bands)
	if err != nil {
		panic(err)
	}
	return r
}

// Name returns the regime identifier.
func (r Regime) Name() string { return r.name }

// Slabs returns a copy of the ordered slab table.
func (r Regime) Slabs() []TaxSlab {
	out := make([]TaxSlab, len(r.slabs))
	for i, s := range r.slabs {
		out[i] = s
		if s.LTE != nil {
			v := *s.LTE
			out[i].LTE = &v
		}
	}
	return out
}

// Compute applies income to the regime's slabs.
func (r Regime) Compute(income float64) TaxReport {
	return Compute(income, r.slabs)
}

// MarshalJSON renders the regime as {"name":..., "slabs":[...]}.
func (r Regime) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Name  string    `json:"name"`
		Slabs []TaxSlab `json:"slabs"`
	}{Name: r.name, Slabs: r.slabs})
}

func upTo(v float64) *float64 { return &v }

// Built-in slab tables.
var (
	newRegimeBands = []Band{
		{UpTo: upTo(250000), Rate: 0},
		{UpTo: upTo(500000), Rate: 0.05},
		{UpTo: upTo(750000), Rate: 0.1},
		{UpTo: upTo(1000000), Rate: 0.15},
		{UpTo: upTo(1250000), Rate: 0.2},
		{UpTo: upTo(1500000), Rate: 0.25},
		{Rate: 0.3},
	}
	oldRegimeBands = []Band{
		{UpTo: upTo(250000), Rate: 0},
		{UpTo: upTo(500000), Rate: 0.05},
		{UpTo: upTo(750000), Rate: 0.2},
		{UpTo: upTo(1000000), Rate: 0.2},
		{UpTo: upTo(1250000), Rate: 0.3},
		{UpTo: upTo(1500000), Rate: 0.3},
		{Rate: 0.3},
	}
)

// DefaultRegimes returns the built-in "new" and "old" regimes.
func DefaultRegimes() []Regime {
	return []Regime{
		MustRegime("new", newRegimeBands),
		MustRegime("old", oldRegimeBands),
	}
}
