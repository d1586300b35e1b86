package model

import (
	"time"
)

// ContentKind discriminates the ContentItem tagged union.
type ContentKind string

const (
	KindRecommendation ContentKind = "recommendation"
	KindReshare        ContentKind = "reshare"
	KindList           ContentKind = "list"
	KindRequest        ContentKind = "request"
)

// Provenance is the source category that first surfaced a feed candidate. It
// decides both the ranking stream the item joins and its fixed trust-weight
// inputs.
type Provenance string

const (
	ProvenanceOwn             Provenance = "own"
	ProvenanceFollowing       Provenance = "following"
	ProvenanceTasteSimilarity Provenance = "taste_similarity"
	ProvenanceTrending        Provenance = "trending"
)

/*

ContentItem is one feed candidate: exactly one of the four payload pointers
is set, matching Kind. Provenance is recorded when the collector first
inserts the item and never overwritten, even if another source surfaces the
same item later.

*/

type ContentItem struct {
	Kind           ContentKind
	Provenance     Provenance
	Recommendation *Recommendation
	Reshare        *Reshare
	List           *RestaurantList
	Request        *DiscoveryRequest
}

// DedupKind returns the content kind the item deduplicates under. Reshares
// dedup against the recommendation they wrap, so a reshare and its underlying
// recommendation can never both appear in one feed.
func (it *ContentItem) DedupKind() ContentKind {
	if it.Kind == KindReshare {
		return KindRecommendation
	}
	return it.Kind
}

// DedupID returns the identity the item deduplicates under within DedupKind.
func (it *ContentItem) DedupID() string {
	switch it.Kind {
	case KindRecommendation:
		return it.Recommendation.Id
	case KindReshare:
		return it.Reshare.RecommendationID
	case KindList:
		return it.List.Id
	case KindRequest:
		return it.Request.Id
	}
	return ""
}

// ID returns the item's own identity (a reshare's wrapping id, not the
// underlying recommendation's).
func (it *ContentItem) ID() string {
	if it.Kind == KindReshare {
		return it.Reshare.Id
	}
	return it.DedupID()
}

// SortTime is the timestamp feeds order by. Reshares sort by the reshare
// time, not the wrapped recommendation's creation time.
func (it *ContentItem) SortTime() time.Time {
	switch it.Kind {
	case KindRecommendation:
		return it.Recommendation.CreatedAt
	case KindReshare:
		return it.Reshare.CreatedAt
	case KindList:
		return it.List.CreatedAt
	case KindRequest:
		return it.Request.CreatedAt
	}
	return time.Time{}
}

// Author returns the profile trust scoring reads the base trust score from.
// For a reshare this is the original recommendation's author, since the
// content being vouched for is theirs.
func (it *ContentItem) Author() *User {
	switch it.Kind {
	case KindRecommendation:
		return &it.Recommendation.Author
	case KindReshare:
		if it.Reshare.Recommendation != nil {
			return &it.Reshare.Recommendation.Author
		}
		return nil
	case KindList:
		return &it.List.Author
	case KindRequest:
		return &it.Request.Author
	}
	return nil
}
