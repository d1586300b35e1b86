package feed

import (
	"sync"

	"github.com/plateful/plateful/model"
	Logger "github.com/plateful/plateful/utils/log"
	"github.com/pkg/errors"
)

// Collector gathers feed candidates from the seven content sources. The
// fetches are independent, so they run concurrently; each source failure is
// logged once and treated as an empty result, never retried, so one slow or
// broken source cannot take the whole feed down.
type Collector struct {
	source ContentSource
}

func NewCollector(source ContentSource) *Collector {
	return &Collector{source: source}
}

// Collect returns the deduplicated candidate pool for one user, each item
// tagged with the provenance of the source that surfaced it first. Only the
// follow-edge fetch is fatal: without the social graph the ranking model is
// undefined.
func (c *Collector) Collect(userID string) ([]model.ContentItem, error) {
	followees, err := c.source.Followees(userID)
	if err != nil {
		return nil, errors.Wrap(err, "fail to fetch follow edges for feed generation")
	}

	// Authors excluded from the taste-similarity source: the caller and
	// everyone they already follow.
	excludedAuthors := append([]string{userID}, followees...)

	fetches := []struct {
		name       string
		provenance model.Provenance
		run        func() ([]model.ContentItem, error)
	}{
		{"own_content", model.ProvenanceOwn, func() ([]model.ContentItem, error) {
			return c.source.OwnContent(userID)
		}},
		{"followed_recommendations", model.ProvenanceFollowing, func() ([]model.ContentItem, error) {
			return c.source.FollowedRecommendations(userID, followees)
		}},
		{"followed_reshares", model.ProvenanceFollowing, func() ([]model.ContentItem, error) {
			return c.source.FollowedReshares(userID, followees)
		}},
		{"followed_discovery_requests", model.ProvenanceFollowing, func() ([]model.ContentItem, error) {
			return c.source.FollowedDiscoveryRequests(userID, followees)
		}},
		{"taste_matched", model.ProvenanceTasteSimilarity, func() ([]model.ContentItem, error) {
			return c.source.TasteMatchedRecommendations(userID, excludedAuthors)
		}},
		{"trending", model.ProvenanceTrending, func() ([]model.ContentItem, error) {
			return c.source.TrendingRecommendations()
		}},
		{"followed_lists", model.ProvenanceFollowing, func() ([]model.ContentItem, error) {
			return c.source.FollowedLists(userID, followees)
		}},
	}

	results := make([][]model.ContentItem, len(fetches))
	var wg sync.WaitGroup
	for i := range fetches {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			items, err := fetches[i].run()
			if err != nil {
				Logger.Log.Error("feed source ", fetches[i].name, " failed, degrading: ", err)
				return
			}
			results[i] = items
		}(i)
	}
	wg.Wait()

	// Merge in declared source order so provenance assignment is
	// deterministic: the first source to surface an item wins.
	seen := map[model.ContentKind]map[string]bool{
		model.KindRecommendation: {},
		model.KindList:           {},
		model.KindRequest:        {},
	}
	pool := []model.ContentItem{}
	for i, fetch := range fetches {
		for _, item := range results[i] {
			kind, id := item.DedupKind(), item.DedupID()
			if id == "" || seen[kind][id] {
				continue
			}
			seen[kind][id] = true
			item.Provenance = fetch.provenance
			pool = append(pool, item)
		}
	}
	return pool, nil
}
