package catalog

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vslauncher/launcher/internal/domain"
)

func mustVersion(t *testing.T, name string) domain.GameVersion {
	t.Helper()
	id, semver, err := ParseVersionName(name)
	require.NoError(t, err)
	return domain.GameVersion{ID: id, SemVer: semver, Channel: domain.ChannelForPre(semver.Pre)}
}

func ids(versions []domain.GameVersion) []string {
	out := make([]string, len(versions))
	for i, v := range versions {
		out[i] = v.ID
	}
	return out
}

func TestParseVersionName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantID  string
		want    domain.SemVer
		wantErr bool
	}{
		{"stable with v", "v1.20.11", "1.20.11", domain.SemVer{Major: 1, Minor: 20, Patch: 11}, false},
		{"stable without v", "1.19.8", "1.19.8", domain.SemVer{Major: 1, Minor: 19, Patch: 8}, false},
		{"two part padded", "v1.21", "1.21", domain.SemVer{Major: 1, Minor: 21}, false},
		{"rc", "v1.21.0-rc.2", "1.21.0-rc.2", domain.SemVer{Major: 1, Minor: 21, Pre: "rc.2"}, false},
		{"two part rc", "1.21-rc.3", "1.21-rc.3", domain.SemVer{Major: 1, Minor: 21, Pre: "rc.3"}, false},
		{"pre", "v1.22.0-pre.1", "1.22.0-pre.1", domain.SemVer{Major: 1, Minor: 22, Pre: "pre.1"}, false},
		{"empty", "", "", domain.SemVer{}, true},
		{"text", "latest", "", domain.SemVer{}, true},
		{"single number", "v1", "", domain.SemVer{}, true},
		{"trailing dash", "1.2.3-", "", domain.SemVer{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, semver, err := ParseVersionName(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, id)
			assert.Equal(t, tt.want, semver)
		})
	}
}

func TestSort(t *testing.T) {
	input := []domain.GameVersion{
		mustVersion(t, "1.21.0-rc.10"),
		mustVersion(t, "1.20.11"),
		mustVersion(t, "1.21.0"),
		mustVersion(t, "1.21.0-pre.1"),
		mustVersion(t, "1.21.0-rc.2"),
		mustVersion(t, "1.9.0"),
		mustVersion(t, "1.21.0-dev.4"),
	}
	original := ids(input)

	asc := Sort(input, domain.Ascending)
	want := []string{"1.9.0", "1.20.11", "1.21.0-dev.4", "1.21.0-pre.1", "1.21.0-rc.2", "1.21.0-rc.10", "1.21.0"}
	if diff := cmp.Diff(want, ids(asc)); diff != "" {
		t.Errorf("ascending order mismatch (-want +got):\n%s", diff)
	}

	desc := Sort(input, domain.Descending)
	assert.Equal(t, "1.21.0", desc[0].ID)
	assert.Equal(t, "1.9.0", desc[len(desc)-1].ID)

	assert.Equal(t, original, ids(input), "input must not be reordered")
	assert.NotNil(t, Sort(nil, domain.Ascending))
}

func TestFilter(t *testing.T) {
	input := []domain.GameVersion{
		mustVersion(t, "1.20.11"),
		mustVersion(t, "1.21.0-RC.2"),
		mustVersion(t, "1.21.0"),
		mustVersion(t, "1.22.0-pre.1"),
	}

	assert.Equal(t, []string{"1.21.0-RC.2", "1.21.0"}, ids(Filter(input, "1.21", domain.MaskAll)))
	assert.Equal(t, []string{"1.21.0-RC.2"}, ids(Filter(input, "rc", domain.MaskAll)), "query is case-insensitive")
	assert.Equal(t, []string{"1.20.11", "1.21.0"}, ids(Filter(input, "", domain.MaskStable)))
	assert.Equal(t, []string{"1.22.0-pre.1"}, ids(Filter(input, "", domain.MaskPreview|domain.MaskDev)))
	assert.Empty(t, Filter(input, "1.99", domain.MaskAll))
	assert.Empty(t, Filter(input, " ", domain.MaskAll), "whitespace is part of the substring")
	assert.Empty(t, Filter(input, "1.21 ", domain.MaskAll))
}

func TestLatest(t *testing.T) {
	input := []domain.GameVersion{
		mustVersion(t, "1.20.11"),
		mustVersion(t, "1.22.0-rc.1"),
		mustVersion(t, "1.21.3"),
	}

	latest, ok := Latest(input, domain.ChannelStable)
	require.True(t, ok)
	assert.Equal(t, "1.21.3", latest.ID)

	_, ok = Latest(input, domain.ChannelDev)
	assert.False(t, ok)
}

func genGameVersion() gopter.Gen {
	return gopter.CombineGens(
		gen.IntRange(0, 3),
		gen.IntRange(0, 25),
		gen.IntRange(0, 12),
		gen.OneConstOf("", "rc", "pre", "dev"),
		gen.IntRange(1, 12),
	).Map(func(values []any) domain.GameVersion {
		name := fmt.Sprintf("%d.%d.%d", values[0].(int), values[1].(int), values[2].(int))
		if tag := values[3].(string); tag != "" {
			name = fmt.Sprintf("%s-%s.%d", name, tag, values[4].(int))
		}
		id, semver, _ := ParseVersionName(name)
		return domain.GameVersion{ID: id, SemVer: semver, Channel: domain.ChannelForPre(semver.Pre)}
	})
}

func TestOrdering_Properties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("stable sorts after its pre-releases in ascending order", prop.ForAll(
		func(major, minor, patch, n int, tag string) bool {
			base := fmt.Sprintf("%d.%d.%d", major, minor, patch)
			_, stableSem, _ := ParseVersionName(base)
			preID, preSem, _ := ParseVersionName(fmt.Sprintf("%s-%s.%d", base, tag, n))
			stable := domain.GameVersion{ID: base, SemVer: stableSem, Channel: domain.ChannelStable}
			pre := domain.GameVersion{ID: preID, SemVer: preSem, Channel: domain.ChannelForPre(preSem.Pre)}

			for _, in := range [][]domain.GameVersion{{stable, pre}, {pre, stable}} {
				sorted := Sort(in, domain.Ascending)
				if sorted[0].ID != pre.ID || sorted[1].ID != stable.ID {
					return false
				}
			}
			return true
		},
		gen.IntRange(0, 5),
		gen.IntRange(0, 30),
		gen.IntRange(0, 20),
		gen.IntRange(0, 20),
		gen.OneConstOf("rc", "pre", "dev"),
	))

	properties.Property("compare is antisymmetric", prop.ForAll(
		func(a, b domain.GameVersion) bool {
			return Compare(a, b) == -Compare(b, a)
		},
		genGameVersion(),
		genGameVersion(),
	))

	properties.Property("descending is the reverse of ascending for distinct IDs", prop.ForAll(
		func(versions []domain.GameVersion) bool {
			seen := map[string]bool{}
			unique := versions[:0:0]
			for _, v := range versions {
				if !seen[v.ID] {
					seen[v.ID] = true
					unique = append(unique, v)
				}
			}
			asc := ids(Sort(unique, domain.Ascending))
			desc := ids(Sort(unique, domain.Descending))
			for i := range asc {
				if asc[i] != desc[len(desc)-1-i] {
					return false
				}
			}
			return true
		},
		gen.SliceOf(genGameVersion()),
	))

	properties.Property("empty filter with all channels returns the input unchanged", prop.ForAll(
		func(versions []domain.GameVersion) bool {
			return cmp.Equal(ids(versions), ids(Filter(versions, "", domain.MaskAll)))
		},
		gen.SliceOf(genGameVersion()),
	))

	properties.Property("filter result is an order-preserving subsequence", prop.ForAll(
		func(versions []domain.GameVersion, query string) bool {
			filtered := Filter(versions, query, domain.MaskStable|domain.MaskRC)
			j := 0
			for _, v := range versions {
				if j < len(filtered) && filtered[j].ID == v.ID {
					j++
				}
			}
			return j == len(filtered)
		},
		gen.SliceOf(genGameVersion()),
		gen.OneConstOf("", "1.", "rc", "2", "x"),
	))

	properties.TestingRun(t)
}
