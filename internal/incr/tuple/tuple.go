package tuple

import (
	"strings"

	"go.trai.ch/weft/internal/core/domain"
	"go.trai.ch/zerr"
)

// MinArity is the smallest number of keys a Tuple may hold.
const MinArity = 2

// Tuple is a fixed-length ordered sequence of keys identifying one entry.
type Tuple []Key

// New builds a Tuple from keys.
// It returns domain.ErrInvalidArity if fewer than MinArity keys are given.
func New(keys ...Key) (Tuple, error) {
	if err := checkArity(len(keys)); err != nil {
		return nil, err
	}
	t := make(Tuple, len(keys))
	copy(t, keys)
	return t, nil
}

// MustNew is like New but panics on error.
func MustNew(keys ...Key) Tuple {
	t, err := New(keys...)
	if err != nil {
		panic(err)
	}
	return t
}

// From classifies each value with KeyOf and builds a Tuple.
func From(values ...any) (Tuple, error) {
	keys := make([]Key, len(values))
	for i, v := range values {
		k, err := KeyOf(v)
		if err != nil {
			return nil, zerr.With(err, "position", i)
		}
		keys[i] = k
	}
	return New(keys...)
}

// Equal reports whether t and other hold the same keys in the same order.
func (t Tuple) Equal(other Tuple) bool {
	if len(t) != len(other) {
		return false
	}
	for i := range t {
		if !t[i].Equal(other[i]) {
			return false
		}
	}
	return true
}

func checkArity(n int) error {
	if n < MinArity {
		return zerr.With(zerr.With(zerr.Wrap(domain.ErrInvalidArity, "tuple too short"),
			"arity", n), "min", MinArity)
	}
	return nil
}

func (t Tuple) String() string {
	parts := make([]string, len(t))
	for i, k := range t {
		parts[i] = k.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
