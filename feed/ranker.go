package feed

import (
	"math"
	"sort"

	"github.com/plateful/plateful/model"
	"github.com/plateful/plateful/utils"
)

const (
	// DefaultPrimaryRatio is the target share of primary (own + following)
	// items in the merged feed.
	DefaultPrimaryRatio = 0.75
	// DefaultMaxItems caps the feed length.
	DefaultMaxItems = 40

	// Trust scores closer than this are considered tied; ties break by
	// recency.
	trustTieEpsilon = 0.1
)

// ScoredItem pairs a candidate with its trust context for ranking.
type ScoredItem struct {
	Item  model.ContentItem
	Trust TrustContext
}

// Rank splits candidates into the recency-sorted primary stream (own +
// following) and the trust-sorted discovery stream, then merges them keeping
// the primary share near primaryRatio.
func Rank(items []ScoredItem, primaryRatio float64, maxItems int) []model.ContentItem {
	var primary, discovery []ScoredItem
	for _, it := range items {
		switch it.Item.Provenance {
		case model.ProvenanceOwn, model.ProvenanceFollowing:
			primary = append(primary, it)
		default:
			discovery = append(discovery, it)
		}
	}

	sort.Slice(primary, func(i, j int) bool {
		return primary[i].Item.SortTime().After(primary[j].Item.SortTime())
	})
	sort.Slice(discovery, func(i, j int) bool {
		di, dj := discovery[i], discovery[j]
		if math.Abs(di.Trust.OverallTrustScore-dj.Trust.OverallTrustScore) < trustTieEpsilon {
			return di.Item.SortTime().After(dj.Item.SortTime())
		}
		return di.Trust.OverallTrustScore > dj.Trust.OverallTrustScore
	})

	// With one stream empty the ratio merge degenerates to a truncation.
	if len(primary) == 0 {
		return truncate(discovery, maxItems)
	}
	if len(discovery) == 0 {
		return truncate(primary, maxItems)
	}

	out := make([]model.ContentItem, 0, maxItems)
	pi, di, primaryCount := 0, 0, 0
	for len(out) < maxItems && (pi < len(primary) || di < len(discovery)) {
		// Share of primary items if the next slot were filled from discovery;
		// when that would drop below target, the slot goes to primary.
		wantPrimary := float64(primaryCount)/float64(len(out)+1) < primaryRatio

		if wantPrimary && pi < len(primary) {
			out = append(out, primary[pi].Item)
			pi++
			primaryCount++
			continue
		}
		if di < len(discovery) {
			out = append(out, discovery[di].Item)
			di++
			continue
		}
		// Discovery exhausted, fall back to primary.
		out = append(out, primary[pi].Item)
		pi++
		primaryCount++
	}
	return out
}

func truncate(stream []ScoredItem, maxItems int) []model.ContentItem {
	n := utils.Min(len(stream), maxItems)
	out := make([]model.ContentItem, 0, n)
	for _, it := range stream[:n] {
		out = append(out, it.Item)
	}
	return out
}
