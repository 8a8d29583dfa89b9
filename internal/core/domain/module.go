package domain

import "slices"

// Module represents one compilation unit of the bundle graph.
// It uses InternedString for fields that are frequently repeated to save memory.
type Module struct {
	Name         InternedString
	Dependencies []InternedString
	Exports      []InternedString
	Imports      []Import
}

// Equal reports whether m and other define the same module.
func (m *Module) Equal(other *Module) bool {
	return m.Name == other.Name &&
		slices.Equal(m.Dependencies, other.Dependencies) &&
		slices.Equal(m.Exports, other.Exports) &&
		slices.Equal(m.Imports, other.Imports)
}

// Import is a named binding a module takes from one of its dependencies.
type Import struct {
	From InternedString
	Name InternedString
}

// ExportRef names one export of one module.
type ExportRef struct {
	Module InternedString `json:"module"`
	Export InternedString `json:"export"`
}
