package model

import (
	"fmt"
	"strconv"
	"strings"
)

type VersionType string

const (
	VersionTypeMajor VersionType = "MAJOR"
	VersionTypeMinor VersionType = "MINOR"
)

// ParseVersionType normalizes a client version-type flag. Matching is
// case-insensitive; anything besides major/minor is an error that aborts
// the whole push.
func ParseVersionType(s string) (VersionType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "MAJOR":
		return VersionTypeMajor, nil
	case "MINOR":
		return VersionTypeMinor, nil
	default:
		return "", fmt.Errorf("unrecognized version type %q, want major or minor", s)
	}
}

// Bump returns the label parts following (major, minor) for this version
// type. A major bump resets the minor part.
func (t VersionType) Bump(major, minor int) (int, int) {
	if t == VersionTypeMajor {
		return major + 1, 0
	}
	return major, minor + 1
}

func VersionLabel(major, minor int) string {
	return strconv.Itoa(major) + "." + strconv.Itoa(minor)
}
