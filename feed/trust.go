package feed

import (
	"github.com/plateful/plateful/model"
)

/*

Trust scoring combines three [0,1] signals with the author's base
reputation into one [0,10] score per item:

	((social*0.3) + (taste*0.5) + (context*0.2)) * (author_base_trust/10) * 10

The per-signal inputs are coarse per-provenance constants rather than
per-call computations: the taste alignment engine is far too expensive for
the feed hot path, and at feed scale the source category is a good enough
stand-in for the pairwise signal.

*/

// TrustContext is the ephemeral score bundle attached to every candidate at
// scoring time. It is never persisted.
type TrustContext struct {
	SocialWeight      float64
	TasteAlignment    float64
	ContextualMatch   float64
	OverallTrustScore float64
}

type trustWeights struct {
	social  float64
	taste   float64
	context float64
}

// provenanceWeights is the single owner of the per-source weighting policy.
var provenanceWeights = map[model.Provenance]trustWeights{
	model.ProvenanceOwn:             {social: 1.0, taste: 1.0, context: 1.0},
	model.ProvenanceFollowing:       {social: 0.8, taste: 0.7, context: 0.6},
	model.ProvenanceTasteSimilarity: {social: 0.3, taste: 0.9, context: 0.8},
	model.ProvenanceTrending:        {social: 0.5, taste: 0.6, context: 0.9},
}

// neutralTrustWeights covers items with an unknown provenance value.
var neutralTrustWeights = trustWeights{social: 0.5, taste: 0.5, context: 0.5}

const (
	socialFactor  = 0.3
	tasteFactor   = 0.5
	contextFactor = 0.2

	// Midpoint of the 0-10 reputation scale, used when the author profile is
	// missing or has never been scored.
	defaultBaseTrust = 5.0

	maxTrustScore = 10.0
)

// Scorer maps candidates to trust contexts. Stateless; safe for concurrent
// use.
type Scorer struct{}

func (Scorer) Score(item *model.ContentItem) TrustContext {
	weights, ok := provenanceWeights[item.Provenance]
	if !ok {
		weights = neutralTrustWeights
	}

	baseTrust := defaultBaseTrust
	if author := item.Author(); author != nil && author.BaseTrustScore > 0 {
		baseTrust = author.BaseTrustScore
	}

	score := (weights.social*socialFactor + weights.taste*tasteFactor + weights.context*contextFactor) *
		(baseTrust / maxTrustScore) * maxTrustScore
	if score < 0 {
		score = 0
	}
	if score > maxTrustScore {
		score = maxTrustScore
	}

	return TrustContext{
		SocialWeight:      weights.social,
		TasteAlignment:    weights.taste,
		ContextualMatch:   weights.context,
		OverallTrustScore: score,
	}
}
