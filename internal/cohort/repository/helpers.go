package repository

import "strings"

// isUniqueConstraintErr reports whether err came from a SQLite UNIQUE
// constraint violation, mirroring the exact-string check the rest of this
// codebase uses rather than depending on the driver's error type.
func isUniqueConstraintErr(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
