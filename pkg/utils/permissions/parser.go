// Package permissions parses the octal mode strings used in configuration
package permissions

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Default modes for exported files and directories
const (
	DefaultFilePerms = 0o644
	DefaultDirPerms  = 0o755
)

// ParseOctalString parses an octal permission string into a uint16.
// Handles formats like "644", "0644", "0o644". Empty yields def.
func ParseOctalString(s string, def uint16) (uint16, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, nil
	}

	digits := strings.TrimPrefix(strings.TrimPrefix(s, "0o"), "0")
	if digits == "" {
		digits = "0"
	}

	val, err := strconv.ParseUint(digits, 8, 16)
	if err != nil {
		return def, fmt.Errorf("invalid permission string %q: %w", s, err)
	}
	if val > 0o777 {
		return def, fmt.Errorf("invalid permission string %q: only permission bits are allowed", s)
	}
	return uint16(val), nil
}

// FileMode parses s as a file mode, falling back to DefaultFilePerms.
func FileMode(s string) (os.FileMode, error) {
	perm, err := ParseOctalString(s, DefaultFilePerms)
	if err != nil {
		return 0, err
	}
	if perm&0o600 != 0o600 {
		return 0, fmt.Errorf("file mode %s must be readable and writable by owner", FormatOctal(perm))
	}
	return os.FileMode(perm), nil
}

// DirMode parses s as a directory mode, falling back to DefaultDirPerms.
func DirMode(s string) (os.FileMode, error) {
	perm, err := ParseOctalString(s, DefaultDirPerms)
	if err != nil {
		return 0, err
	}
	if !IsDirectory(perm) {
		return 0, fmt.Errorf("directory mode %s is not traversable by owner", FormatOctal(perm))
	}
	return os.FileMode(perm), nil
}

// FormatOctal formats a permission value as an octal string
func FormatOctal(perm uint16) string {
	return fmt.Sprintf("0%o", perm)
}

// IsDirectory checks if permissions are appropriate for a directory
func IsDirectory(perm uint16) bool {
	// Directories need execute permission to be traversable
	return perm&0o700 == 0o700
}
