package domain

import (
	"fmt"
	"strings"
	"time"
)

// Channel is the release channel of a game version, derived from its pre-release tag
type Channel string

const (
	// ChannelStable is a release without pre-release tag
	ChannelStable Channel = "stable"
	// ChannelRC is a release candidate ("rc" tag)
	ChannelRC Channel = "rc"
	// ChannelPreview is a preview build ("pre" tag)
	ChannelPreview Channel = "preview"
	// ChannelDev is a development build ("dev" tag)
	ChannelDev Channel = "dev"
)

// Rank orders channels of the same numeric version: stable > rc > preview > dev.
func (c Channel) Rank() int {
	switch c {
	case ChannelStable:
		return 3
	case ChannelRC:
		return 2
	case ChannelPreview:
		return 1
	default:
		return 0
	}
}

// ChannelForPre derives the channel from a pre-release tag such as "rc.2" or "pre.1"
func ChannelForPre(pre string) Channel {
	tag := strings.ToLower(pre)
	switch {
	case tag == "":
		return ChannelStable
	case strings.HasPrefix(tag, "rc"):
		return ChannelRC
	case strings.HasPrefix(tag, "pre"):
		return ChannelPreview
	default:
		return ChannelDev
	}
}

// ChannelMask selects a set of channels for filtering
type ChannelMask uint8

const (
	MaskStable ChannelMask = 1 << iota
	MaskRC
	MaskPreview
	MaskDev

	// MaskAll selects every channel
	MaskAll = MaskStable | MaskRC | MaskPreview | MaskDev
)

var channelMaskBits = map[Channel]ChannelMask{
	ChannelStable:  MaskStable,
	ChannelRC:      MaskRC,
	ChannelPreview: MaskPreview,
	ChannelDev:     MaskDev,
}

// Has reports whether the channel is selected by the mask
func (m ChannelMask) Has(c Channel) bool {
	bit, ok := channelMaskBits[c]
	return ok && m&bit != 0
}

// ParseChannelMask parses a comma-separated channel list. Empty or "all" selects every channel.
func ParseChannelMask(s string) (ChannelMask, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "all") || s == "any" {
		return MaskAll, nil
	}

	var mask ChannelMask
	for _, part := range strings.Split(s, ",") {
		name := Channel(strings.ToLower(strings.TrimSpace(part)))
		if name == "" {
			continue
		}
		bit, ok := channelMaskBits[name]
		if !ok {
			return 0, NewAppError(ErrInvalidInput, fmt.Sprintf("unknown channel %q", part), 400,
				map[string]any{"allowed": []string{"stable", "rc", "preview", "dev"}})
		}
		mask |= bit
	}
	if mask == 0 {
		return MaskAll, nil
	}
	return mask, nil
}

// SemVer is the numeric triple of a game version plus its optional pre-release tag
type SemVer struct {
	Major int    `json:"major"`
	Minor int    `json:"minor"`
	Patch int    `json:"patch"`
	Pre   string `json:"pre,omitempty"`
}

// String renders the version in normalized form, e.g. "1.21.0-rc.2"
func (v SemVer) String() string {
	s := fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.Pre != "" {
		s += "-" + v.Pre
	}
	return s
}

// GameVersion is one downloadable release from the remote catalog
type GameVersion struct {
	ID          string    `json:"id" example:"1.21.0-rc.2"`
	SemVer      SemVer    `json:"semver"`
	Channel     Channel   `json:"channel" example:"rc" enums:"stable,rc,preview,dev"`
	DownloadURL string    `json:"download_url"`
	ReleasedAt  time.Time `json:"released_at,omitempty"`
}

// SortOrder selects ascending or descending version ordering
type SortOrder int

const (
	Ascending SortOrder = iota
	Descending
)

// ParseSortOrder accepts "asc" or "desc"; empty defaults to descending (newest first)
func ParseSortOrder(s string) (SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "desc", "descending":
		return Descending, nil
	case "asc", "ascending":
		return Ascending, nil
	default:
		return Descending, NewAppError(ErrInvalidInput, fmt.Sprintf("unknown sort order %q", s), 400, nil)
	}
}
