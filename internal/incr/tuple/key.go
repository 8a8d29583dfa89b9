// Package tuple implements tuple-keyed collections over a shared key trie.
//
// A tuple is an ordered sequence of keys. Each key is routed either to the
// strong branch of a trie node (compared by value, never evicted) or to the
// weak branch (compared by identity, silently dropped once its referent is
// gone). The same trie backs the multiset and work queue in this package and
// the memoizing cache in package memo.
package tuple

import (
	"fmt"
	"reflect"
	"weak"

	"go.trai.ch/weft/internal/core/domain"
	"go.trai.ch/zerr"
)

// Key is one component of a tuple.
// The zero Key is the strong key nil.
type Key struct {
	id    any
	weak  bool
	alive func() bool
}

// Referent is implemented by values that must be keyed weakly.
// KeyOf routes any Referent to the weak branch.
type Referent interface {
	WeakKey() Key
}

// Strong returns a key compared by value.
// Interface-typed values must hold comparable dynamic values.
func Strong[T comparable](v T) Key {
	return Key{id: v}
}

// Weak returns a key that refers to p without keeping it reachable.
// Entries keyed by it vanish once p has been garbage collected.
// A nil pointer yields the strong key nil.
func Weak[T any](p *T) Key {
	if p == nil {
		return Key{}
	}
	wp := weak.Make(p)
	return Key{
		id:    wp,
		weak:  true,
		alive: func() bool { return wp.Value() != nil },
	}
}

// WeakIdentity returns a weak key for an arbitrary comparable identity.
// alive reports whether the identity still denotes a live object; once it
// returns false, entries keyed by the identity behave as if never stored.
func WeakIdentity(id any, alive func() bool) Key {
	return Key{id: id, weak: true, alive: alive}
}

// KeyOf classifies v. Keys pass through, Referents are weak, and
// primitive-like or other comparable non-pointer values are strong.
// Pointers, channels, and values that cannot be compared are rejected,
// since keying them strongly would pin their referents.
func KeyOf(v any) (Key, error) {
	switch x := v.(type) {
	case nil:
		return Key{}, nil
	case Key:
		return x, nil
	case Referent:
		return x.WeakKey(), nil
	case bool, string,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, uintptr,
		float32, float64, complex64, complex128:
		return Key{id: v}, nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.UnsafePointer, reflect.Chan:
		return Key{}, zerr.With(zerr.Wrap(domain.ErrUnroutableKey, "reference values need an explicit weak key"),
			"type", rv.Type().String())
	}
	if !rv.Comparable() {
		return Key{}, zerr.With(zerr.Wrap(domain.ErrUnroutableKey, "value is not comparable"),
			"type", rv.Type().String())
	}
	return Key{id: v}, nil
}

// IsWeak reports whether k is routed to the weak branch.
func (k Key) IsWeak() bool {
	return k.weak
}

// Alive reports whether k still denotes a live object. Strong keys are always alive.
func (k Key) Alive() bool {
	return !k.weak || k.alive == nil || k.alive()
}

// Value returns the strong value of k, or nil for weak keys.
func (k Key) Value() any {
	if k.weak {
		return nil
	}
	return k.id
}

// Equal reports whether k and other address the same trie child.
func (k Key) Equal(other Key) bool {
	return k.weak == other.weak && k.id == other.id
}

func (k Key) String() string {
	if k.weak {
		return fmt.Sprintf("weak(%v)", k.id)
	}
	return fmt.Sprintf("%v", k.id)
}
