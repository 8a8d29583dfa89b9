package analyzer

import "go.trai.ch/weft/internal/core/domain"

// HandleCount returns the number of module handles the analyzer holds.
// This is exported for testing purposes only.
func (a *Analyzer) HandleCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.modules.Len()
}

// CachedFacts returns the number of cached fingerprint entries, swept of released modules.
// This is exported for testing purposes only.
func (a *Analyzer) CachedFacts() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.fingerprints.Sweep()
	return a.fingerprints.Len()
}

// HasHandle reports whether the analyzer holds a live handle for name.
// This is exported for testing purposes only.
func (a *Analyzer) HasHandle(name string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	h, ok := a.handles[domain.NewInternedString(name)]
	return ok && h.Alive()
}
