package catalog

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/vslauncher/launcher/internal/domain"
)

// versionNameRegex matches catalog names after the leading "v" is removed:
// "1.20.11", "1.21" and "1.21.0-rc.2" are all accepted.
var versionNameRegex = regexp.MustCompile(`^(\d+)\.(\d+)(?:\.(\d+))?(?:-([0-9A-Za-z]+(?:[.-][0-9A-Za-z]+)*))?$`)

// trailingNumber extracts the numeric suffix of a pre-release tag ("rc.12" -> 12)
var trailingNumber = regexp.MustCompile(`(\d+)$`)

// ParseVersionName parses a catalog version name into its identifier and semantic version.
// The identifier keeps the catalog spelling minus the "v" prefix; the SemVer is normalized
// so that "1.21" and "1.21.0" compare equal.
func ParseVersionName(name string) (string, domain.SemVer, error) {
	id := strings.TrimPrefix(strings.TrimSpace(name), "v")
	matches := versionNameRegex.FindStringSubmatch(id)
	if matches == nil {
		return "", domain.SemVer{}, fmt.Errorf("invalid version name: %q", name)
	}

	major, err := strconv.Atoi(matches[1])
	if err != nil {
		return "", domain.SemVer{}, fmt.Errorf("invalid major in %q: %w", name, err)
	}
	minor, err := strconv.Atoi(matches[2])
	if err != nil {
		return "", domain.SemVer{}, fmt.Errorf("invalid minor in %q: %w", name, err)
	}
	patch := 0
	if matches[3] != "" {
		if patch, err = strconv.Atoi(matches[3]); err != nil {
			return "", domain.SemVer{}, fmt.Errorf("invalid patch in %q: %w", name, err)
		}
	}

	return id, domain.SemVer{Major: major, Minor: minor, Patch: patch, Pre: matches[4]}, nil
}

// preNumber returns the numeric suffix of a pre-release tag, or -1 when there is none
func preNumber(pre string) int {
	m := trailingNumber.FindString(pre)
	if m == "" {
		return -1
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return -1
	}
	return n
}

// Compare orders two versions by (major, minor, patch, channel rank, pre-release number, ID).
// Returns -1 if a < b, 0 if a == b, 1 if a > b.
func Compare(a, b domain.GameVersion) int {
	if c := cmpInt(a.SemVer.Major, b.SemVer.Major); c != 0 {
		return c
	}
	if c := cmpInt(a.SemVer.Minor, b.SemVer.Minor); c != 0 {
		return c
	}
	if c := cmpInt(a.SemVer.Patch, b.SemVer.Patch); c != 0 {
		return c
	}

	// A stable build outranks every pre-release of the same numeric version
	if c := cmpInt(a.Channel.Rank(), b.Channel.Rank()); c != 0 {
		return c
	}
	if c := cmpInt(preNumber(a.SemVer.Pre), preNumber(b.SemVer.Pre)); c != 0 {
		return c
	}
	return strings.Compare(a.ID, b.ID)
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Sort returns a new slice ordered by Compare. The input is left untouched.
func Sort(versions []domain.GameVersion, order domain.SortOrder) []domain.GameVersion {
	sorted := slices.Clone(versions)
	if sorted == nil {
		sorted = []domain.GameVersion{}
	}
	slices.SortStableFunc(sorted, func(a, b domain.GameVersion) int {
		if order == domain.Descending {
			return Compare(b, a)
		}
		return Compare(a, b)
	})
	return sorted
}

// Filter returns the versions whose ID contains query (case-insensitive) and whose
// channel is selected by mask, in input order.
func Filter(versions []domain.GameVersion, query string, mask domain.ChannelMask) []domain.GameVersion {
	needle := strings.ToLower(query)
	result := make([]domain.GameVersion, 0, len(versions))
	for _, v := range versions {
		if !mask.Has(v.Channel) {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(v.ID), needle) {
			continue
		}
		result = append(result, v)
	}
	return result
}

// Latest returns the highest version on the given channel, if any
func Latest(versions []domain.GameVersion, channel domain.Channel) (domain.GameVersion, bool) {
	var best domain.GameVersion
	found := false
	for _, v := range versions {
		if v.Channel != channel {
			continue
		}
		if !found || Compare(v, best) > 0 {
			best = v
			found = true
		}
	}
	return best, found
}

// channelFromType maps the optional catalog "type" field onto a channel
func channelFromType(t string) (domain.Channel, bool) {
	switch strings.ToLower(strings.TrimSpace(t)) {
	case "stable", "release":
		return domain.ChannelStable, true
	case "rc", "release-candidate", "releasecandidate":
		return domain.ChannelRC, true
	case "pre", "preview", "prerelease", "pre-release":
		return domain.ChannelPreview, true
	case "dev", "development", "unstable":
		return domain.ChannelDev, true
	default:
		return "", false
	}
}
