package taste

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/plateful/plateful/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory Store so engine behavior is testable without a
// database, mirroring how production injects the gorm-backed store.
type fakeStore struct {
	stats    map[string]*SharedStats
	pairs    map[string][]RatingPair
	profiles map[string]*CuisineProfile
	contexts map[string]map[ContextKey]int

	cache map[string]*model.TasteAlignment

	pairedRatingsCalls int
	sharedStatsCalls   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		stats:    map[string]*SharedStats{},
		pairs:    map[string][]RatingPair{},
		profiles: map[string]*CuisineProfile{},
		contexts: map[string]map[ContextKey]int{},
		cache:    map[string]*model.TasteAlignment{},
	}
}

func pairKey(userID, comparedUserID string) string {
	return userID + "|" + comparedUserID
}

func (s *fakeStore) SharedStats(userID, comparedUserID string) (*SharedStats, error) {
	s.sharedStatsCalls++
	if stats, ok := s.stats[pairKey(userID, comparedUserID)]; ok {
		return stats, nil
	}
	return &SharedStats{}, nil
}

func (s *fakeStore) PairedRatings(userID, comparedUserID string) ([]RatingPair, error) {
	s.pairedRatingsCalls++
	return s.pairs[pairKey(userID, comparedUserID)], nil
}

func (s *fakeStore) CuisineProfile(userID string) (*CuisineProfile, error) {
	if p, ok := s.profiles[userID]; ok {
		return p, nil
	}
	return &CuisineProfile{Weights: map[string]float64{}, Averages: map[string]float64{}}, nil
}

func (s *fakeStore) ContextProfile(userID string) (map[ContextKey]int, error) {
	return s.contexts[userID], nil
}

func (s *fakeStore) CachedAlignment(userID, comparedUserID string) (*model.TasteAlignment, error) {
	return s.cache[pairKey(userID, comparedUserID)], nil
}

func (s *fakeStore) SaveAlignment(alignment *model.TasteAlignment) error {
	copied := *alignment
	s.cache[pairKey(alignment.UserID, alignment.ComparedUserID)] = &copied
	return nil
}

func (s *fakeStore) DeleteAlignmentsFor(userID string) error {
	for key, alignment := range s.cache {
		if alignment.UserID == userID || alignment.ComparedUserID == userID {
			delete(s.cache, key)
		}
	}
	return nil
}

// setIdenticalHistories gives both users the same rich rating history:
// enough shared restaurants and total ratings to max out both confidence
// bands.
func setIdenticalHistories(store *fakeStore, a, b string) {
	store.stats[pairKey(a, b)] = &SharedStats{
		SharedRestaurants:   12,
		SharedCuisines:      []string{"japanese", "italian"},
		UserRatingCount:     25,
		ComparedRatingCount: 25,
	}
	pairs := []RatingPair{}
	for _, rating := range []float64{9, 7, 8, 6, 9, 5, 8, 7, 9, 6, 8, 7} {
		pairs = append(pairs, RatingPair{User: rating, Compared: rating})
	}
	store.pairs[pairKey(a, b)] = pairs

	profile := &CuisineProfile{
		Weights:  map[string]float64{"japanese": 45, "italian": 30},
		Averages: map[string]float64{"japanese": 9, "italian": 7.5},
	}
	store.profiles[a] = profile
	store.profiles[b] = profile

	context := map[ContextKey]int{
		{Occasion: "date_night", MealType: "dinner"}: 5,
		{Occasion: "casual", MealType: "lunch"}:      3,
	}
	store.contexts[a] = context
	store.contexts[b] = context
}

func TestGetAlignmentSelfComparison(t *testing.T) {
	engine := NewEngine(newFakeStore(), Config{})
	alignment, err := engine.GetAlignment("alice", "alice", false)
	require.NoError(t, err)
	assert.Nil(t, alignment)
}

func TestGetAlignmentInsufficientSharedData(t *testing.T) {
	store := newFakeStore()
	store.stats[pairKey("alice", "bob")] = &SharedStats{
		SharedRestaurants:   0,
		UserRatingCount:     30,
		ComparedRatingCount: 30,
	}
	engine := NewEngine(store, Config{})

	alignment, err := engine.GetAlignment("alice", "bob", false)
	require.NoError(t, err)
	require.NotNil(t, alignment)
	assert.Equal(t, 0.5, alignment.SimilarityScore)
	assert.Equal(t, 0.1, alignment.ConfidenceLevel)
	// The neutral result short-circuits before any correlation input fetch.
	assert.Equal(t, 0, store.pairedRatingsCalls)
}

func TestGetAlignmentIdenticalHistories(t *testing.T) {
	store := newFakeStore()
	setIdenticalHistories(store, "alice", "bob")
	engine := NewEngine(store, Config{})

	alignment, err := engine.GetAlignment("alice", "bob", false)
	require.NoError(t, err)
	require.NotNil(t, alignment)

	// 0.6 from the shared-restaurant band plus 0.4 from the total-ratings
	// band.
	assert.Equal(t, 1.0, alignment.ConfidenceLevel)
	// All three correlations are 1 for identical histories, so the combined
	// score remaps to exactly 1.
	assert.InDelta(t, 1.0, alignment.SimilarityScore, 1e-9)

	var correlations model.CorrelationData
	require.NoError(t, json.Unmarshal(alignment.CorrelationData, &correlations))
	assert.InDelta(t, 1.0, correlations.CuisineCorrelation, 1e-9)
	assert.InDelta(t, 1.0, correlations.RatingCorrelation, 1e-9)
	assert.InDelta(t, 1.0, correlations.ContextCorrelation, 1e-9)
}

func TestGetAlignmentScoreBounds(t *testing.T) {
	store := newFakeStore()
	store.stats[pairKey("alice", "bob")] = &SharedStats{
		SharedRestaurants:   5,
		UserRatingCount:     8,
		ComparedRatingCount: 40,
	}
	// Perfect disagreement on every shared restaurant.
	store.pairs[pairKey("alice", "bob")] = []RatingPair{
		{User: 9, Compared: 1}, {User: 8, Compared: 2}, {User: 2, Compared: 8},
		{User: 1, Compared: 9}, {User: 7, Compared: 3},
	}
	store.profiles["alice"] = &CuisineProfile{
		Weights:  map[string]float64{"japanese": 40},
		Averages: map[string]float64{"japanese": 8},
	}
	store.profiles["bob"] = &CuisineProfile{
		Weights:  map[string]float64{"mexican": 40},
		Averages: map[string]float64{"mexican": 8},
	}
	engine := NewEngine(store, Config{})

	alignment, err := engine.GetAlignment("alice", "bob", false)
	require.NoError(t, err)
	require.NotNil(t, alignment)
	assert.True(t, alignment.SimilarityScore >= 0 && alignment.SimilarityScore <= 1,
		"similarity %f out of [0,1]", alignment.SimilarityScore)
	assert.True(t, alignment.ConfidenceLevel >= 0 && alignment.ConfidenceLevel <= 1,
		"confidence %f out of [0,1]", alignment.ConfidenceLevel)
	// 0.4 shared band + 0.1 from min(8, 40) ratings.
	assert.InDelta(t, 0.5, alignment.ConfidenceLevel, 1e-9)
}

func TestGetAlignmentSharedAndDivergentPreferences(t *testing.T) {
	store := newFakeStore()
	setIdenticalHistories(store, "alice", "bob")
	store.profiles["alice"] = &CuisineProfile{
		Weights:  map[string]float64{"japanese": 45, "thai": 20, "french": 24},
		Averages: map[string]float64{"japanese": 9, "thai": 8, "french": 8},
	}
	store.profiles["bob"] = &CuisineProfile{
		Weights:  map[string]float64{"japanese": 40, "thai": 9, "french": 18},
		Averages: map[string]float64{"japanese": 8, "thai": 3, "french": 6},
	}
	engine := NewEngine(store, Config{})

	alignment, err := engine.GetAlignment("alice", "bob", false)
	require.NoError(t, err)
	require.NotNil(t, alignment)

	var shared, divergent []string
	require.NoError(t, json.Unmarshal(alignment.SharedPreferences, &shared))
	require.NoError(t, json.Unmarshal(alignment.DivergentPreferences, &divergent))
	// Both love japanese; alice loves thai which bob dislikes; french is
	// liked by alice but bob's 6 is in neither band.
	assert.Equal(t, []string{"japanese"}, shared)
	assert.Equal(t, []string{"thai"}, divergent)
}

func TestGetAlignmentCacheHitIsIdempotent(t *testing.T) {
	store := newFakeStore()
	setIdenticalHistories(store, "alice", "bob")
	engine := NewEngine(store, Config{})

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	engine.now = func() time.Time { return base }

	first, err := engine.GetAlignment("alice", "bob", false)
	require.NoError(t, err)
	computeCalls := store.sharedStatsCalls

	// Two days later, well inside the 7 day window.
	engine.now = func() time.Time { return base.Add(48 * time.Hour) }
	second, err := engine.GetAlignment("alice", "bob", false)
	require.NoError(t, err)

	assert.Equal(t, first.LastCalculated, second.LastCalculated)
	assert.Equal(t, first.SimilarityScore, second.SimilarityScore)
	assert.Equal(t, computeCalls, store.sharedStatsCalls, "second call must be a cache hit")
}

func TestGetAlignmentStaleCacheRecomputes(t *testing.T) {
	store := newFakeStore()
	setIdenticalHistories(store, "alice", "bob")
	engine := NewEngine(store, Config{})

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	engine.now = func() time.Time { return base }
	first, err := engine.GetAlignment("alice", "bob", false)
	require.NoError(t, err)

	engine.now = func() time.Time { return base.Add(8 * 24 * time.Hour) }
	second, err := engine.GetAlignment("alice", "bob", false)
	require.NoError(t, err)
	assert.True(t, second.LastCalculated.After(first.LastCalculated))
}

func TestGetAlignmentForceRecalculate(t *testing.T) {
	store := newFakeStore()
	setIdenticalHistories(store, "alice", "bob")
	engine := NewEngine(store, Config{})

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	engine.now = func() time.Time { return base }
	first, err := engine.GetAlignment("alice", "bob", false)
	require.NoError(t, err)

	engine.now = func() time.Time { return base.Add(time.Hour) }
	second, err := engine.GetAlignment("alice", "bob", true)
	require.NoError(t, err)
	assert.True(t, second.LastCalculated.After(first.LastCalculated))
}

func TestInvalidateUserCacheForcesRecompute(t *testing.T) {
	store := newFakeStore()
	setIdenticalHistories(store, "alice", "bob")
	engine := NewEngine(store, Config{})

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	engine.now = func() time.Time { return base }
	first, err := engine.GetAlignment("alice", "bob", false)
	require.NoError(t, err)

	require.NoError(t, engine.InvalidateUserCache("bob"))

	engine.now = func() time.Time { return base.Add(time.Hour) }
	second, err := engine.GetAlignment("alice", "bob", false)
	require.NoError(t, err)
	assert.True(t, second.LastCalculated.After(first.LastCalculated))
}

func TestBatchGetAlignment(t *testing.T) {
	store := newFakeStore()
	setIdenticalHistories(store, "alice", "bob")
	store.stats[pairKey("alice", "carol")] = &SharedStats{SharedRestaurants: 1}
	engine := NewEngine(store, Config{})

	results, err := engine.BatchGetAlignment("alice", []string{"bob", "carol", "alice"})
	require.NoError(t, err)

	// Self comparison is skipped, not errored.
	require.Len(t, results, 2)
	assert.Equal(t, 1.0, results["bob"].ConfidenceLevel)
	assert.Equal(t, 0.1, results["carol"].ConfidenceLevel)
	assert.Equal(t, 0.5, results["carol"].SimilarityScore)
}
