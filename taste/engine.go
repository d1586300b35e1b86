package taste

import (
	"encoding/json"
	"time"

	"github.com/plateful/plateful/model"
	Logger "github.com/plateful/plateful/utils/log"
	"github.com/pkg/errors"
	"gorm.io/datatypes"
)

const (
	// Relative contribution of each correlation to the combined score.
	cuisineWeight = 0.5
	ratingWeight  = 0.35
	contextWeight = 0.15

	// A cuisine is a shared preference when both users average at least
	// sharedPreferenceMin on it, divergent when one side averages at least
	// sharedPreferenceMin and the other at most divergentPreferenceMax.
	sharedPreferenceMin    = 7.0
	divergentPreferenceMax = 5.0

	neutralSimilarity = 0.5
	neutralConfidence = 0.1
)

// Config carries the engine tunables. The zero value is usable; defaults are
// applied in NewEngine.
type Config struct {
	// MaxCacheAge is how long a cached alignment stays fresh. Default 7 days.
	MaxCacheAge time.Duration
	// MinSharedRestaurants is the overlap below which the engine returns the
	// neutral low-confidence result without correlating. Default 3.
	MinSharedRestaurants int
	// CalculationVersion is stamped on every row the engine writes.
	CalculationVersion string
}

func (c *Config) applyDefaults() {
	if c.MaxCacheAge == 0 {
		c.MaxCacheAge = 7 * 24 * time.Hour
	}
	if c.MinSharedRestaurants == 0 {
		c.MinSharedRestaurants = 3
	}
	if c.CalculationVersion == "" {
		c.CalculationVersion = "2.0"
	}
}

// Engine computes, caches and invalidates pairwise taste alignment.
type Engine struct {
	store Store
	cfg   Config

	// now is swappable in tests to control cache staleness.
	now func() time.Time
}

func NewEngine(store Store, cfg Config) *Engine {
	cfg.applyDefaults()
	return &Engine{
		store: store,
		cfg:   cfg,
		now:   time.Now,
	}
}

// GetAlignment returns the taste alignment between two users, from cache when
// a fresh row exists and forceRecalculate is false. Self-comparison returns
// (nil, nil): not applicable rather than an error.
func (e *Engine) GetAlignment(userID, comparedUserID string, forceRecalculate bool) (*model.TasteAlignment, error) {
	if userID == comparedUserID {
		return nil, nil
	}

	if !forceRecalculate {
		cached, err := e.store.CachedAlignment(userID, comparedUserID)
		if err != nil {
			// A broken cache read degrades to a recompute.
			Logger.Log.Error("alignment cache read failed, recomputing: ", err)
		} else if cached != nil && e.now().Sub(cached.LastCalculated) < e.cfg.MaxCacheAge {
			return cached, nil
		}
	}

	alignment, err := e.compute(userID, comparedUserID)
	if err != nil {
		return nil, err
	}

	if alignment.ConfidenceLevel > 0 {
		if err := e.store.SaveAlignment(alignment); err != nil {
			// Cache write failure is not fatal: the result is still valid, the
			// next call just recomputes.
			Logger.Log.Error("fail to cache alignment for pair ", userID, " ", comparedUserID, " : ", err)
		}
	}
	return alignment, nil
}

// BatchGetAlignment computes alignment against every target independently.
// Self-comparison targets are skipped. A failing target fails the batch; the
// per-pair round trips carry no ordering or atomicity guarantees.
func (e *Engine) BatchGetAlignment(userID string, comparedUserIDs []string) (map[string]*model.TasteAlignment, error) {
	results := map[string]*model.TasteAlignment{}
	for _, comparedID := range comparedUserIDs {
		alignment, err := e.GetAlignment(userID, comparedID, false)
		if err != nil {
			return nil, errors.Wrapf(err, "fail to get alignment for pair (%s, %s)", userID, comparedID)
		}
		if alignment == nil {
			continue
		}
		results[comparedID] = alignment
	}
	return results, nil
}

// InvalidateUserCache drops every cached pair the user appears in. The
// (external) rating-submission pathway calls this whenever the user's rating
// history changes.
func (e *Engine) InvalidateUserCache(userID string) error {
	return e.store.DeleteAlignmentsFor(userID)
}

func (e *Engine) compute(userID, comparedUserID string) (*model.TasteAlignment, error) {
	stats, err := e.store.SharedStats(userID, comparedUserID)
	if err != nil {
		return nil, errors.Wrap(err, "fail to fetch shared stats")
	}

	if stats.SharedRestaurants < e.cfg.MinSharedRestaurants {
		return e.neutralResult(userID, comparedUserID, stats), nil
	}

	pairs, err := e.store.PairedRatings(userID, comparedUserID)
	if err != nil {
		return nil, errors.Wrap(err, "fail to fetch paired ratings")
	}
	userProfile, err := e.store.CuisineProfile(userID)
	if err != nil {
		return nil, errors.Wrap(err, "fail to fetch cuisine profile")
	}
	comparedProfile, err := e.store.CuisineProfile(comparedUserID)
	if err != nil {
		return nil, errors.Wrap(err, "fail to fetch cuisine profile")
	}
	userContext, err := e.store.ContextProfile(userID)
	if err != nil {
		return nil, errors.Wrap(err, "fail to fetch context profile")
	}
	comparedContext, err := e.store.ContextProfile(comparedUserID)
	if err != nil {
		return nil, errors.Wrap(err, "fail to fetch context profile")
	}

	xs := make([]float64, len(pairs))
	ys := make([]float64, len(pairs))
	for i, p := range pairs {
		xs[i] = p.User
		ys[i] = p.Compared
	}

	correlations := model.CorrelationData{
		CuisineCorrelation: CuisineCorrelation(userProfile.Weights, comparedProfile.Weights),
		RatingCorrelation:  RatingCorrelation(xs, ys),
		ContextCorrelation: ContextCorrelation(userContext, comparedContext),
	}

	combined := correlations.CuisineCorrelation*cuisineWeight +
		correlations.RatingCorrelation*ratingWeight +
		correlations.ContextCorrelation*contextWeight
	// Remap [-1,1] to [0,1].
	similarity := (combined + 1) / 2

	shared, divergent := preferenceLists(userProfile.Averages, comparedProfile.Averages)

	alignment := &model.TasteAlignment{
		UserID:               userID,
		ComparedUserID:       comparedUserID,
		SimilarityScore:      similarity,
		ConfidenceLevel:      confidenceLevel(stats),
		SharedPreferences:    mustJSONStrings(shared),
		DivergentPreferences: mustJSONStrings(divergent),
		CorrelationData:      mustJSON(correlations),
		SharedRestaurants:    stats.SharedRestaurants,
		SharedCuisines:       mustJSONStrings(stats.SharedCuisines),
		LastCalculated:       e.now(),
		CalculationVersion:   e.cfg.CalculationVersion,
	}
	return alignment, nil
}

func (e *Engine) neutralResult(userID, comparedUserID string, stats *SharedStats) *model.TasteAlignment {
	return &model.TasteAlignment{
		UserID:               userID,
		ComparedUserID:       comparedUserID,
		SimilarityScore:      neutralSimilarity,
		ConfidenceLevel:      neutralConfidence,
		SharedPreferences:    mustJSONStrings(nil),
		DivergentPreferences: mustJSONStrings(nil),
		CorrelationData:      mustJSON(model.CorrelationData{}),
		SharedRestaurants:    stats.SharedRestaurants,
		SharedCuisines:       mustJSONStrings(stats.SharedCuisines),
		LastCalculated:       e.now(),
		CalculationVersion:   e.cfg.CalculationVersion,
	}
}

// confidenceLevel sums two independent evidence bands: shared restaurant
// count contributes up to 0.6 and the smaller of the two users' total rating
// counts contributes up to 0.4. Capped at 1.0.
func confidenceLevel(stats *SharedStats) float64 {
	confidence := 0.0

	switch {
	case stats.SharedRestaurants >= 10:
		confidence += 0.6
	case stats.SharedRestaurants >= 5:
		confidence += 0.4
	case stats.SharedRestaurants >= 3:
		confidence += 0.2
	}

	minRatings := min(stats.UserRatingCount, stats.ComparedRatingCount)
	switch {
	case minRatings >= 20:
		confidence += 0.4
	case minRatings >= 10:
		confidence += 0.25
	case minRatings >= 5:
		confidence += 0.1
	}

	if confidence > 1.0 {
		confidence = 1.0
	}
	return confidence
}

// preferenceLists classifies cuisines both users have averages for: shared
// when both like it, divergent when one likes it and the other clearly does
// not.
func preferenceLists(userAvgs, comparedAvgs map[string]float64) (shared, divergent []string) {
	for cuisine, userAvg := range userAvgs {
		comparedAvg, ok := comparedAvgs[cuisine]
		if !ok {
			continue
		}
		switch {
		case userAvg >= sharedPreferenceMin && comparedAvg >= sharedPreferenceMin:
			shared = append(shared, cuisine)
		case userAvg >= sharedPreferenceMin && comparedAvg <= divergentPreferenceMax,
			comparedAvg >= sharedPreferenceMin && userAvg <= divergentPreferenceMax:
			divergent = append(divergent, cuisine)
		}
	}
	return shared, divergent
}

func min(x, y int) int {
	if x < y {
		return x
	}
	return y
}

func mustJSON(v interface{}) datatypes.JSON {
	bytes, _ := json.Marshal(v)
	return datatypes.JSON(bytes)
}

func mustJSONStrings(strs []string) datatypes.JSON {
	if strs == nil {
		strs = []string{}
	}
	return mustJSON(strs)
}
