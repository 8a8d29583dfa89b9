package domain

import "path/filepath"

const (
	// WeftDirName is the name of the directory holding weft's own files.
	WeftDirName = ".weft"

	// StateFileName is the name of the file recording the last planned fingerprints.
	StateFileName = "state.json"

	// ConfigFileName is the name of the module graph definition.
	ConfigFileName = "weft.yaml"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// PrivateFilePerm is the default permission for private files (rw-------).
	PrivateFilePerm = 0o600
)

// DefaultStatePath returns the state file location relative to the working directory.
func DefaultStatePath() string {
	return filepath.Join(WeftDirName, StateFileName)
}
