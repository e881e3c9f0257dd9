package catalog

import (
	"cmp"
	"slices"

	"github.com/MrSnakeDoc/flintmeta/internal/domain"
)

// releasePositions maps every vendor release id to its position in the
// vendor list. Duplicate ids keep their first position.
type releasePositions struct {
	pos      map[string]int
	releases []domain.ProductRelease
}

func newReleasePositions(releases []domain.ProductRelease) releasePositions {
	pos := make(map[string]int, len(releases))
	for i, r := range releases {
		if _, dup := pos[r.ID]; !dup {
			pos[r.ID] = i
		}
	}
	return releasePositions{pos: pos, releases: releases}
}

// indexOf returns the position of id in the vendor list.
func (r releasePositions) indexOf(id string) (int, bool) {
	i, ok := r.pos[id]
	return i, ok
}

// sortKey is the ordering position of id. Ids the vendor does not list sort
// with the first release.
func (r releasePositions) sortKey(id string) int {
	if i, ok := r.indexOf(id); ok {
		return i
	}
	return 0
}

func (r releasePositions) lookup(id string) (domain.ProductRelease, bool) {
	i, ok := r.indexOf(id)
	if !ok {
		return domain.ProductRelease{}, false
	}
	return r.releases[i], true
}

// deriveGameVersions orders the intermediary list by vendor position, drops
// entries the vendor does not list and derives the game list from what is
// left. When nothing is left, every vendor release becomes a game version.
//
// It returns the game list and the ordered, filtered intermediary list.
// The input slice is not modified.
func deriveGameVersions(intermediary []domain.IntermediaryVersion, releases []domain.ProductRelease) ([]domain.GameVersion, []domain.IntermediaryVersion) {
	positions := newReleasePositions(releases)

	sorted := slices.Clone(intermediary)
	slices.SortStableFunc(sorted, func(a, b domain.IntermediaryVersion) int {
		return cmp.Compare(positions.sortKey(a.Version), positions.sortKey(b.Version))
	})

	kept := make([]domain.IntermediaryVersion, 0, len(sorted))
	for _, iv := range sorted {
		if _, ok := positions.lookup(iv.Version); ok {
			kept = append(kept, iv)
		}
	}

	game := make([]domain.GameVersion, 0, max(len(kept), len(releases)))
	if len(kept) == 0 {
		for _, r := range releases {
			game = append(game, domain.GameVersion{Version: r.ID, Stable: r.IsRelease()})
		}
		return game, kept
	}

	emitted := make(map[string]struct{}, len(kept))
	for _, iv := range kept {
		if _, dup := emitted[iv.Version]; dup {
			continue
		}
		r, _ := positions.lookup(iv.Version)
		game = append(game, domain.GameVersion{Version: r.ID, Stable: r.IsRelease()})
		emitted[iv.Version] = struct{}{}
	}
	return game, kept
}
