package cmd

import "strings"

// isDBLockError returns true if the error chain contains a bbolt lock
// timeout. bbolt returns the string "timeout" when it cannot acquire the
// file lock within the configured deadline.
func isDBLockError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "timeout")
}

// diagnoseDBLock returns actionable guidance for a cache database another
// process holds locked. The usual holder is a psdef watch running in the
// same project.
func diagnoseDBLock(dbPath string) string {
	return "cache database is locked by another process\n" +
		"  → a 'psdef watch' may be running here; stop it and retry\n" +
		"  → or bypass the cache:  psdef scan --no-cache <path>\n" +
		"  → locked file: " + dbPath
}
