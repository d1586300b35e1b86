package feed

import (
	"testing"

	"github.com/plateful/plateful/model"
	"github.com/stretchr/testify/assert"
)

func recommendationWithTrust(provenance model.Provenance, baseTrust float64) model.ContentItem {
	return model.ContentItem{
		Kind:       model.KindRecommendation,
		Provenance: provenance,
		Recommendation: &model.Recommendation{
			Id:     "r1",
			Author: model.User{Id: "author", BaseTrustScore: baseTrust},
		},
	}
}

func TestScoreOwnContentFullWeights(t *testing.T) {
	item := recommendationWithTrust(model.ProvenanceOwn, 8)
	trust := Scorer{}.Score(&item)

	assert.Equal(t, 1.0, trust.SocialWeight)
	assert.Equal(t, 1.0, trust.TasteAlignment)
	assert.Equal(t, 1.0, trust.ContextualMatch)
	// (0.3 + 0.5 + 0.2) * (8/10) * 10
	assert.InDelta(t, 8.0, trust.OverallTrustScore, 1e-9)
}

func TestScoreFollowingWeights(t *testing.T) {
	item := recommendationWithTrust(model.ProvenanceFollowing, 10)
	trust := Scorer{}.Score(&item)

	// 0.8*0.3 + 0.7*0.5 + 0.6*0.2 = 0.71, at max reputation.
	assert.InDelta(t, 7.1, trust.OverallTrustScore, 1e-9)
}

func TestScoreDefaultsMissingBaseTrustToMidpoint(t *testing.T) {
	// Never-scored author.
	item := recommendationWithTrust(model.ProvenanceFollowing, 0)
	trust := Scorer{}.Score(&item)
	assert.InDelta(t, 0.71*5, trust.OverallTrustScore, 1e-9)

	// Reshare with no preloaded recommendation has no author at all.
	orphan := model.ContentItem{
		Kind:       model.KindReshare,
		Provenance: model.ProvenanceFollowing,
		Reshare:    &model.Reshare{Id: "s1", RecommendationID: "r1"},
	}
	trust = Scorer{}.Score(&orphan)
	assert.InDelta(t, 0.71*5, trust.OverallTrustScore, 1e-9)
}

func TestScoreUnknownProvenanceUsesNeutralWeights(t *testing.T) {
	item := recommendationWithTrust(model.Provenance("mystery"), 5)
	trust := Scorer{}.Score(&item)
	assert.Equal(t, 0.5, trust.SocialWeight)
	assert.InDelta(t, 2.5, trust.OverallTrustScore, 1e-9)
}

func TestScoreAlwaysInRange(t *testing.T) {
	provenances := []model.Provenance{
		model.ProvenanceOwn,
		model.ProvenanceFollowing,
		model.ProvenanceTasteSimilarity,
		model.ProvenanceTrending,
	}
	for _, provenance := range provenances {
		for _, baseTrust := range []float64{0, 0.5, 5, 9.9, 10, 25} {
			item := recommendationWithTrust(provenance, baseTrust)
			trust := Scorer{}.Score(&item)
			assert.True(t, trust.OverallTrustScore >= 0 && trust.OverallTrustScore <= 10,
				"score %f out of [0,10] for %s/%f", trust.OverallTrustScore, provenance, baseTrust)
		}
	}
}

func TestReshareScoresUnderlyingAuthor(t *testing.T) {
	item := model.ContentItem{
		Kind:       model.KindReshare,
		Provenance: model.ProvenanceFollowing,
		Reshare: &model.Reshare{
			Id:               "s1",
			Resharer:         model.User{Id: "resharer", BaseTrustScore: 2},
			RecommendationID: "r1",
			Recommendation: &model.Recommendation{
				Id:     "r1",
				Author: model.User{Id: "author", BaseTrustScore: 10},
			},
		},
	}
	trust := Scorer{}.Score(&item)
	// The base trust comes from the original author, not the resharer.
	assert.InDelta(t, 7.1, trust.OverallTrustScore, 1e-9)
}
