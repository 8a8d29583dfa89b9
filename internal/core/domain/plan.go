package domain

// Plan is the result of analyzing a module graph.
type Plan struct {
	// Entries are the modules a traversal starts from, in discovery order.
	Entries []InternedString `json:"entries"`
	// Chunks holds one chunk per entry, in the same order.
	Chunks []Chunk `json:"chunks"`
	// UnusedExports lists exports no module imports, by module then export name.
	UnusedExports []ExportRef `json:"unused_exports,omitzero"`
	// Fingerprints maps module names to their definition fingerprint.
	Fingerprints map[string]string `json:"fingerprints"`
	// Changed lists modules whose fingerprint differs from the last recorded plan, in graph order.
	Changed []InternedString `json:"changed,omitzero"`
}

// Chunk is the set of modules reachable from one entry.
type Chunk struct {
	Entry InternedString `json:"entry"`
	// Modules lists the chunk's modules in traversal order, entry first.
	Modules []InternedString `json:"modules"`
	// Shared lists modules that are also reachable from another entry.
	Shared []InternedString `json:"shared,omitzero"`
	// Circular lists dependency edges that lead back to a module on the
	// path that reached their source.
	Circular []Edge `json:"circular,omitzero"`
}

// Edge is a dependency from one module to another.
type Edge struct {
	From InternedString `json:"from"`
	To   InternedString `json:"to"`
}
