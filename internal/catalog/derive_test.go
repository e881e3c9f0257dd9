package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MrSnakeDoc/flintmeta/internal/domain"
)

func releases(pairs ...string) []domain.ProductRelease {
	out := make([]domain.ProductRelease, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, domain.ProductRelease{ID: pairs[i], Type: pairs[i+1]})
	}
	return out
}

func intermediaries(versions ...string) []domain.IntermediaryVersion {
	out := make([]domain.IntermediaryVersion, 0, len(versions))
	for _, v := range versions {
		out = append(out, domain.IntermediaryVersion{Maven: "net.fabricmc:intermediary:" + v, Version: v, Stable: true})
	}
	return out
}

func versionsOf[T any](items []T, f func(T) string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, f(it))
	}
	return out
}

func TestDeriveGameVersionsFallback(t *testing.T) {
	vendor := releases("23w31a", "snapshot", "1.20.1", "release", "1.20", "Release", "b1.7.3", "old_beta")

	tests := []struct {
		name         string
		intermediary []domain.IntermediaryVersion
	}{
		{"empty intermediary source", nil},
		{"no intermediary known to the vendor", intermediaries("9.9.9", "custom")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			game, kept := deriveGameVersions(tt.intermediary, vendor)

			assert.Equal(t, []domain.GameVersion{
				{Version: "23w31a", Stable: false},
				{Version: "1.20.1", Stable: true},
				{Version: "1.20", Stable: true},
				{Version: "b1.7.3", Stable: false},
			}, game)
			assert.Empty(t, kept)
		})
	}
}

func TestDeriveGameVersionsFiltersUnknown(t *testing.T) {
	vendor := releases("1.20.1", "release", "1.20-pre1", "snapshot", "1.20", "release")

	game, kept := deriveGameVersions(intermediaries("1.20", "not-a-release", "1.20.1"), vendor)

	assert.Equal(t, []string{"1.20.1", "1.20"}, versionsOf(game, func(g domain.GameVersion) string { return g.Version }))
	assert.NotContains(t, versionsOf(game, func(g domain.GameVersion) string { return g.Version }), "not-a-release")
	assert.Equal(t, []string{"1.20.1", "1.20"}, versionsOf(kept, func(i domain.IntermediaryVersion) string { return i.Version }))
	for _, g := range game {
		assert.True(t, g.Stable)
	}
}

func TestDeriveGameVersionsOrdersByVendorPosition(t *testing.T) {
	vendor := releases("1.21", "release", "24w14a", "snapshot", "1.20.6", "release", "1.20.5", "release")

	// intermediary listing order is unrelated to the vendor's
	game, kept := deriveGameVersions(intermediaries("1.20.5", "1.21", "24w14a", "1.20.6"), vendor)

	assert.Equal(t, []domain.GameVersion{
		{Version: "1.21", Stable: true},
		{Version: "24w14a", Stable: false},
		{Version: "1.20.6", Stable: true},
		{Version: "1.20.5", Stable: true},
	}, game)
	assert.Equal(t, []string{"1.21", "24w14a", "1.20.6", "1.20.5"},
		versionsOf(kept, func(i domain.IntermediaryVersion) string { return i.Version }))
}

func TestDeriveGameVersionsFirstOccurrenceWins(t *testing.T) {
	vendor := releases("1.20.1", "release", "1.20", "release")

	in := []domain.IntermediaryVersion{
		{Maven: "a", Version: "1.20"},
		{Maven: "b", Version: "1.20.1"},
		{Maven: "c", Version: "1.20"},
	}
	game, kept := deriveGameVersions(in, vendor)

	assert.Equal(t, []domain.GameVersion{{Version: "1.20.1", Stable: true}, {Version: "1.20", Stable: true}}, game)
	// stable sort keeps a before c
	assert.Equal(t, []string{"b", "a", "c"}, versionsOf(kept, func(i domain.IntermediaryVersion) string { return i.Maven }))
	// input untouched
	assert.Equal(t, "a", in[0].Maven)
}

func TestIndexOfReportsMisses(t *testing.T) {
	p := newReleasePositions(releases("x", "release", "y", "release"))

	i, ok := p.indexOf("x")
	assert.True(t, ok)
	assert.Equal(t, 0, i)

	i, ok = p.indexOf("y")
	assert.True(t, ok)
	assert.Equal(t, 1, i)

	_, ok = p.indexOf("absent")
	assert.False(t, ok)

	assert.Equal(t, 0, p.sortKey("absent"))
	assert.Equal(t, 1, p.sortKey("y"))
}

func TestDeriveGameVersionsUnknownTiesWithFirstRelease(t *testing.T) {
	in := []domain.IntermediaryVersion{
		{Version: "y", Maven: "y"},
		{Version: "absent", Maven: "absent"},
		{Version: "x", Maven: "x"},
	}
	_, kept := deriveGameVersions(in, releases("x", "release", "y", "release"))
	assert.Equal(t, []string{"x", "y"}, versionsOf(kept, func(i domain.IntermediaryVersion) string { return i.Maven }))
}
