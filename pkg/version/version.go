// Package version parses MAJOR.MINOR.PATCH[-PRERELEASE][+BUILD] strings and orders them.
package version

import (
	"cmp"
	"regexp"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/beelot/tooling/pkg/apperr"
)

var versionRE = regexp.MustCompile(
	`^(\d+)\.(\d+)\.(\d+)(?:-([0-9A-Za-z.-]+))?(?:\+([0-9A-Za-z.-]+))?$`,
)

// Version is a parsed version string. The zero value is not valid; use Parse.
type Version struct {
	raw        string
	core       [3]uint64
	prerelease []string
	build      string
	sv         *semver.Version
}

// Parse validates s and splits it into core, prerelease identifiers and build metadata.
// Core numbers must fit in a uint64.
func Parse(s string) (Version, error) {
	m := versionRE.FindStringSubmatch(s)
	if m == nil {
		return Version{}, apperr.InputFormat("invalid version format: %s", s)
	}

	var core [3]uint64
	for i := 0; i < 3; i++ {
		n, err := strconv.ParseUint(m[i+1], 10, 64)
		if err != nil {
			return Version{}, apperr.InputFormat("invalid version format: %s", s)
		}
		core[i] = n
	}

	v := Version{
		raw:   s,
		core:  core,
		build: m[5],
	}
	if m[4] != "" {
		v.prerelease = strings.Split(m[4], ".")
	}
	// sv carries the core only; prerelease precedence is compared on v.prerelease.
	v.sv = semver.New(core[0], core[1], core[2], "", m[5])
	return v, nil
}

// MustParse is like Parse but panics on error.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// Core returns major, minor and patch.
func (v Version) Core() [3]uint64 { return v.core }

// Prerelease returns the dot-separated prerelease identifiers, nil for a release.
func (v Version) Prerelease() []string { return v.prerelease }

// IsRelease reports whether v has no prerelease tag.
func (v Version) IsRelease() bool { return len(v.prerelease) == 0 }

// Build returns the build metadata without the leading '+'.
func (v Version) Build() string { return v.build }

func (v Version) String() string { return v.raw }

// Compare returns -1, 0 or +1. Build metadata is ignored.
func Compare(a, b Version) int {
	if a.raw == b.raw {
		return 0
	}
	if c := a.sv.Compare(b.sv); c != 0 {
		return c
	}
	switch {
	case a.IsRelease() && b.IsRelease():
		return 0
	case a.IsRelease():
		return 1
	case b.IsRelease():
		return -1
	}
	return comparePrerelease(a.prerelease, b.prerelease)
}

// comparePrerelease compares identifiers left to right; with an equal prefix the longer
// list ranks higher.
func comparePrerelease(a, b []string) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if c := compareIdentifier(a[i], b[i]); c != 0 {
			return c
		}
	}
	return cmp.Compare(len(a), len(b))
}

// compareIdentifier ranks numeric identifiers numerically and below every other
// identifier, the empty one included.
func compareIdentifier(a, b string) int {
	an, bn := isNumeric(a), isNumeric(b)
	switch {
	case an && bn:
		a, b = strings.TrimLeft(a, "0"), strings.TrimLeft(b, "0")
		if c := cmp.Compare(len(a), len(b)); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	case an:
		return -1
	case bn:
		return 1
	}
	return strings.Compare(a, b)
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Max returns whichever of a and b is greater, preferring a when they rank equal.
func Max(a, b string) (string, error) {
	va, err := Parse(a)
	if err != nil {
		return "", err
	}
	vb, err := Parse(b)
	if err != nil {
		return "", err
	}
	if Compare(va, vb) >= 0 {
		return a, nil
	}
	return b, nil
}
