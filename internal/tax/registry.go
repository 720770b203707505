package tax

import (
	"errors"
	"fmt"
	"net/http"
	"sort"

	"github.com/noah-isme/taxy/internal/common"
)

// ErrRegimeNotFound is returned when a lookup names no registered regime.
var ErrRegimeNotFound = errors.New("regime not found")

// Registry maps regime names to their slab tables. It is read-only once built
// and safe for concurrent use.
type Registry struct {
	regimes map[string]Regime
	names   []string
}

// NewRegistry indexes the given regimes by name. Duplicate names are rejected.
func NewRegistry(regimes ...Regime) (*Registry, error) {
	byName := make(map[string]Regime, len(regimes))
	for _, r := range regimes {
		if r.name == "" {
			return nil, fmt.Errorf("%w: unnamed regime", ErrInvalidRegime)
		}
		if _, dup := byName[r.name]; dup {
			return nil, fmt.Errorf("%w: duplicate regime %q", ErrInvalidRegime, r.name)
		}
		byName[r.name] = r
	}
	return newRegistry(byName), nil
}

// DefaultRegistry holds the built-in regimes.
func DefaultRegistry() *Registry {
	reg, err := NewRegistry(DefaultRegimes()...)
	if err != nil {
		panic(err)
	}
	return reg
}

func newRegistry(byName map[string]Regime) *Registry {
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return &Registry{regimes: byName, names: names}
}

// Merge returns a new registry containing r's regimes overlaid with extra.
// A regime in extra replaces one with the same name.
func (r *Registry) Merge(extra ...Regime) *Registry {
	byName := make(map[string]Regime, len(r.regimes)+len(extra))
	for name, regime := range r.regimes {
		byName[name] = regime
	}
	for _, regime := range extra {
		byName[regime.name] = regime
	}
	return newRegistry(byName)
}

// Lookup finds a regime by exact, case-sensitive name.
func (r *Registry) Lookup(name string) (Regime, error) {
	if r != nil {
		if regime, ok := r.regimes[name]; ok {
			return regime, nil
		}
	}
	return Regime{}, RegimeNotFound(name)
}

// Names lists registered regime names in sorted order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	return append([]string(nil), r.names...)
}

// Regimes lists registered regimes ordered by name.
func (r *Registry) Regimes() []Regime {
	if r == nil {
		return nil
	}
	out := make([]Regime, 0, len(r.names))
	for _, name := range r.names {
		out = append(out, r.regimes[name])
	}
	return out
}

// RegimeNotFound builds the 404 error for an unknown regime name.
func RegimeNotFound(name string) *common.AppError {
	return common.NewAppError(
		"REGIME_NOT_FOUND",
		fmt.Sprintf("No such regime %s!", name),
		http.StatusNotFound,
		fmt.Errorf("%w: %q", ErrRegimeNotFound, name),
	)
}
