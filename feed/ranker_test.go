package feed

import (
	"fmt"
	"testing"
	"time"

	"github.com/plateful/plateful/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var rankBase = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// primaryItems builds n following-provenance recommendations P1..Pn with
// strictly descending timestamps.
func primaryItems(n int) []ScoredItem {
	items := make([]ScoredItem, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, ScoredItem{
			Item: model.ContentItem{
				Kind:       model.KindRecommendation,
				Provenance: model.ProvenanceFollowing,
				Recommendation: &model.Recommendation{
					Id:        fmt.Sprintf("P%d", i+1),
					CreatedAt: rankBase.Add(-time.Duration(i) * time.Minute),
				},
			},
			Trust: TrustContext{OverallTrustScore: 5},
		})
	}
	return items
}

// discoveryItems builds n trending-provenance recommendations D1..Dn with
// strictly descending trust scores, spaced wider than the tie epsilon.
func discoveryItems(n int) []ScoredItem {
	items := make([]ScoredItem, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, ScoredItem{
			Item: model.ContentItem{
				Kind:       model.KindRecommendation,
				Provenance: model.ProvenanceTrending,
				Recommendation: &model.Recommendation{
					Id:        fmt.Sprintf("D%d", i+1),
					CreatedAt: rankBase.Add(-time.Duration(i) * time.Minute),
				},
			},
			Trust: TrustContext{OverallTrustScore: 9.5 - float64(i)*0.2},
		})
	}
	return items
}

func ids(items []model.ContentItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID())
	}
	return out
}

func TestRankInterleavesAtTargetRatio(t *testing.T) {
	items := append(primaryItems(30), discoveryItems(30)...)

	ranked := Rank(items, 0.75, 8)

	// Running-ratio merge starting from an empty result: three primary items
	// before each discovery item.
	assert.Equal(t,
		[]string{"P1", "P2", "P3", "D1", "P4", "P5", "P6", "D2"},
		ids(ranked))
}

func TestRankEmptyDiscoveryTruncatesPrimary(t *testing.T) {
	ranked := Rank(primaryItems(10), 0.75, 5)
	assert.Equal(t, []string{"P1", "P2", "P3", "P4", "P5"}, ids(ranked))
}

func TestRankEmptyPrimaryTruncatesDiscovery(t *testing.T) {
	ranked := Rank(discoveryItems(10), 0.75, 4)
	assert.Equal(t, []string{"D1", "D2", "D3", "D4"}, ids(ranked))
}

func TestRankPrimaryExhaustionFallsBackToDiscovery(t *testing.T) {
	items := append(primaryItems(2), discoveryItems(10)...)
	ranked := Rank(items, 0.75, 6)

	require.Len(t, ranked, 6)
	assert.Equal(t, []string{"P1", "P2", "D1", "D2", "D3", "D4"}, ids(ranked))
}

func TestRankDiscoveryExhaustionFallsBackToPrimary(t *testing.T) {
	items := append(primaryItems(10), discoveryItems(1)...)
	ranked := Rank(items, 0.75, 6)

	require.Len(t, ranked, 6)
	assert.Equal(t, []string{"P1", "P2", "P3", "D1", "P4", "P5"}, ids(ranked))
}

func TestRankNeverEmitsDuplicates(t *testing.T) {
	items := append(primaryItems(25), discoveryItems(25)...)
	ranked := Rank(items, 0.75, 40)

	seen := map[string]bool{}
	for _, it := range ranked {
		key := string(it.DedupKind()) + "/" + it.DedupID()
		assert.False(t, seen[key], "duplicate item %s", key)
		seen[key] = true
	}
}

func TestRankPrimarySortedByRecency(t *testing.T) {
	// Shuffled input order must not matter.
	items := []ScoredItem{}
	p := primaryItems(5)
	for _, idx := range []int{3, 0, 4, 1, 2} {
		items = append(items, p[idx])
	}
	ranked := Rank(items, 0.75, 5)
	assert.Equal(t, []string{"P1", "P2", "P3", "P4", "P5"}, ids(ranked))
}

func TestRankDiscoveryTrustTieBreaksByRecency(t *testing.T) {
	older := ScoredItem{
		Item: model.ContentItem{
			Kind:       model.KindRecommendation,
			Provenance: model.ProvenanceTrending,
			Recommendation: &model.Recommendation{
				Id: "older", CreatedAt: rankBase.Add(-time.Hour),
			},
		},
		Trust: TrustContext{OverallTrustScore: 8.05},
	}
	newer := ScoredItem{
		Item: model.ContentItem{
			Kind:       model.KindRecommendation,
			Provenance: model.ProvenanceTasteSimilarity,
			Recommendation: &model.Recommendation{
				Id: "newer", CreatedAt: rankBase,
			},
		},
		// Slightly lower trust but within the tie epsilon, so recency wins.
		Trust: TrustContext{OverallTrustScore: 8.0},
	}

	ranked := Rank([]ScoredItem{older, newer}, 0.75, 10)
	assert.Equal(t, []string{"newer", "older"}, ids(ranked))
}

func TestRankCapsAtMaxItems(t *testing.T) {
	items := append(primaryItems(30), discoveryItems(30)...)
	ranked := Rank(items, 0.75, 40)
	assert.Len(t, ranked, 40)
}
