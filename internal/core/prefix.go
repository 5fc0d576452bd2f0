package core

import (
	"fmt"
	"sort"

	"github.com/valter-silva-au/bt/pkg/models"
)

// ShortestUniquePrefix returns the shortest prefix of target that no other
// id in universe shares. The result is at least one byte long. Comparison
// is byte-exact and case-sensitive. When target is itself a prefix of
// another id the full target is returned, and that result is then a prefix
// of the other id's short id. Generated ids share one fixed length, so this
// only happens with hand-named record files.
func ShortestUniquePrefix(target models.TaskID, universe []models.TaskID) string {
	s := string(target)
	if s == "" {
		return ""
	}
	need := 1
	for _, other := range universe {
		if other == target {
			continue
		}
		if n := commonPrefixLen(s, string(other)) + 1; n > need {
			need = n
		}
	}
	if need > len(s) {
		need = len(s)
	}
	return s[:need]
}

func commonPrefixLen(a, b string) int {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}

// PrefixResolver answers shortest-prefix queries for a fixed universe of
// ids. Build it once per command over the full archive so that any short
// id it prints can later be resolved by Find.
type PrefixResolver struct {
	ids      []models.TaskID
	prefixes map[models.TaskID]string
}

// NewPrefixResolver builds a resolver over every task the lister returns,
// including closed and cancelled ones.
func NewPrefixResolver(lister TaskLister) (*PrefixResolver, error) {
	entries, err := lister.ListAll()
	if err != nil {
		return nil, fmt.Errorf("building prefix resolver: %w", err)
	}
	ids := make([]models.TaskID, len(entries))
	for i, e := range entries {
		ids[i] = e.Task.ID
	}
	return NewPrefixResolverFromIDs(ids), nil
}

// NewPrefixResolverFromIDs builds a resolver over ids. In sorted order the
// longest common prefix of an id is always shared with a neighbour, so only
// neighbours need comparing.
func NewPrefixResolverFromIDs(ids []models.TaskID) *PrefixResolver {
	sorted := make([]models.TaskID, 0, len(ids))
	seen := make(map[models.TaskID]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			sorted = append(sorted, id)
		}
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	prefixes := make(map[models.TaskID]string, len(sorted))
	for i, id := range sorted {
		var neighbours []models.TaskID
		if i > 0 {
			neighbours = append(neighbours, sorted[i-1])
		}
		if i+1 < len(sorted) {
			neighbours = append(neighbours, sorted[i+1])
		}
		prefixes[id] = ShortestUniquePrefix(id, neighbours)
	}
	return &PrefixResolver{ids: sorted, prefixes: prefixes}
}

// Shortest returns the short id for id. Ids outside the universe are
// compared against the whole universe on demand.
func (r *PrefixResolver) Shortest(id models.TaskID) string {
	if p, ok := r.prefixes[id]; ok {
		return p
	}
	return ShortestUniquePrefix(id, r.ids)
}

// Len returns the number of distinct ids in the universe.
func (r *PrefixResolver) Len() int {
	return len(r.ids)
}
