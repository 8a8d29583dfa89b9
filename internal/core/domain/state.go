package domain

import "time"

// ModuleState is the fingerprint a module had when it was last planned.
type ModuleState struct {
	Module      string    `json:"module,omitzero"`
	Fingerprint string    `json:"fingerprint,omitzero"`
	Timestamp   time.Time `json:"timestamp,omitzero"`
}
