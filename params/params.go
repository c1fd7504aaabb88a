package params

import (
	"errors"
	"fmt"
	"math"
	"sync"
)

var (
	// ErrPoisoned is returned once the control channel has failed and the
	// stored value can no longer be trusted.
	ErrPoisoned = errors.New("parameter store poisoned")
	// ErrNotFinite is returned for records containing NaN or Inf.
	ErrNotFinite = errors.New("parameter is not finite")
)

// Params holds the live-tunable knobs of the feedback shader.
type Params struct {
	Invert         bool    `json:"invert"`
	Fade           float32 `json:"fade"`
	PermuteColors  bool    `json:"permute_colors"`
	ColorCycleRate float32 `json:"color_cycle_rate"`
	MixLinear      float32 `json:"mix_linear"`
	MixLinearTV    float32 `json:"mix_linear_tv"`
}

// Default returns the startup parameters.
func Default() Params {
	return Params{
		Invert:         true,
		Fade:           0.9,
		PermuteColors:  true,
		ColorCycleRate: 1.0,
		MixLinear:      0.0,
		MixLinearTV:    0.2,
	}
}

// Field describes one parameter for display in a control panel.
type Field struct {
	Name  string // JSON name
	Label string
	Bool  bool
}

// Fields lists the parameters in panel order.
var Fields = []Field{
	{Name: "invert", Label: "Invert each frame", Bool: true},
	{Name: "fade", Label: "Fade (non-inverting mode)"},
	{Name: "permute_colors", Label: "Permute color channels", Bool: true},
	{Name: "color_cycle_rate", Label: "Color cycle rate"},
	{Name: "mix_linear", Label: "Mix for linear interpolation"},
	{Name: "mix_linear_tv", Label: "Time varying mix for linear"},
}

// Validate reports whether every numeric field is finite.
func (p Params) Validate() error {
	for _, f := range []struct {
		name string
		v    float32
	}{
		{"fade", p.Fade},
		{"color_cycle_rate", p.ColorCycleRate},
		{"mix_linear", p.MixLinear},
		{"mix_linear_tv", p.MixLinearTV},
	} {
		v := float64(f.v)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s = %v: %w", f.name, f.v, ErrNotFinite)
		}
	}
	return nil
}

// Store is the single point of exchange between the control channel, which
// replaces whole records, and the render loop, which snapshots them.
type Store struct {
	mu       sync.Mutex
	p        Params
	poisoned error
}

// NewStore returns a store holding p.
func NewStore(p Params) *Store {
	return &Store{p: p}
}

// Snapshot returns a copy of the current parameters. The lock is released
// before returning so the caller may hold the copy across GPU work.
func (s *Store) Snapshot() (Params, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.poisoned != nil {
		return Params{}, s.poisoned
	}
	return s.p, nil
}

// Replace overwrites the stored parameters with p.
func (s *Store) Replace(p Params) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.poisoned != nil {
		return s.poisoned
	}
	s.p = p
	return nil
}

// Poison marks the store as no longer trustworthy. The first cause wins.
func (s *Store) Poison(cause error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.poisoned != nil {
		return
	}
	if cause == nil {
		s.poisoned = ErrPoisoned
		return
	}
	s.poisoned = fmt.Errorf("%w: %v", ErrPoisoned, cause)
}
