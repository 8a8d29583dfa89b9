package domain

import "unique"

// InternedString is a canonical copy of a module, export or entry name.
// Names repeat in every graph revision and every plan; interning them makes
// equal names share one allocation and compare by handle.
//
// The zero value stands for the empty name. It is usable as a map key and
// marshals as text, so plans keyed by name encode as JSON objects.
type InternedString struct {
	h unique.Handle[string]
}

// NewInternedString returns the canonical copy of s.
func NewInternedString(s string) InternedString {
	return InternedString{h: unique.Make(s)}
}

// NewInternedStrings interns names, preserving order and duplicates.
func NewInternedStrings(names []string) []InternedString {
	out := make([]InternedString, len(names))
	for i, name := range names {
		out[i] = NewInternedString(name)
	}
	return out
}

// IsZero reports whether is was never assigned.
func (is InternedString) IsZero() bool {
	return is == InternedString{}
}

func (is InternedString) String() string {
	if is.IsZero() {
		return ""
	}
	return is.h.Value()
}

func (is InternedString) MarshalText() ([]byte, error) {
	return []byte(is.String()), nil
}

func (is *InternedString) UnmarshalText(text []byte) error {
	*is = NewInternedString(string(text))
	return nil
}
