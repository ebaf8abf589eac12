package versions

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Policy decides whether a candidate version supersedes the installed one.
type Policy string

const (
	// PolicyNewer requires the candidate to be strictly newer than the
	// installed version.
	PolicyNewer Policy = "newer"
	// PolicyDiffers treats any difference between the two versions, in
	// either direction, as an update.
	PolicyDiffers Policy = "differs"
)

// ParsePolicy maps a config value onto a Policy. The empty string selects
// PolicyNewer.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case "", PolicyNewer:
		return PolicyNewer, nil
	case PolicyDiffers:
		return PolicyDiffers, nil
	default:
		return "", fmt.Errorf("unknown version policy %q: must be %q or %q", s, PolicyNewer, PolicyDiffers)
	}
}

// Supersedes reports whether candidate should replace installed under p.
func (p Policy) Supersedes(installed, candidate string) bool {
	if p == PolicyDiffers {
		return Compare(installed, candidate) != 0
	}
	return IsNewerVersion(candidate, installed)
}

// Compare returns -1, 0 or 1 as a is lower than, equal to or greater than b.
// Semantic versioning is used when both strings parse (a leading "v" is
// accepted); otherwise the strings are compared lexicographically.
func Compare(a, b string) int {
	av, errA := semver.NewVersion(a)
	bv, errB := semver.NewVersion(b)
	if errA != nil || errB != nil {
		return strings.Compare(a, b)
	}
	return av.Compare(bv)
}

// IsNewerVersion reports whether newVersion is strictly greater than oldVersion.
func IsNewerVersion(newVersion, oldVersion string) bool {
	return Compare(newVersion, oldVersion) > 0
}

// Latest returns the highest version in candidates that parses as semver and
// satisfies constraint (when non-empty). The original string is returned so
// callers keep tag spelling such as a "v" prefix.
func Latest(candidates []string, constraint string) (string, bool, error) {
	var c *semver.Constraints
	if constraint != "" {
		var err error
		c, err = semver.NewConstraint(constraint)
		if err != nil {
			return "", false, fmt.Errorf("parsing version constraint %q: %w", constraint, err)
		}
	}

	var (
		best    *semver.Version
		bestRaw string
	)
	for _, raw := range candidates {
		v, err := semver.NewVersion(raw)
		if err != nil {
			continue
		}
		if c != nil && !c.Check(v) {
			continue
		}
		if best == nil || v.GreaterThan(best) {
			best = v
			bestRaw = raw
		}
	}

	return bestRaw, best != nil, nil
}
