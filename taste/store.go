package taste

import (
	"github.com/plateful/plateful/model"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SharedStats are the cheap aggregates the engine checks before deciding
// whether a pair has enough overlap to be worth correlating.
type SharedStats struct {
	SharedRestaurants   int
	SharedCuisines      []string
	UserRatingCount     int
	ComparedRatingCount int
}

// RatingPair is one restaurant both users rated.
type RatingPair struct {
	User     float64
	Compared float64
}

// CuisineProfile summarizes one user's rating history per cuisine.
// Weights feed the cosine similarity; Averages drive the shared/divergent
// preference lists.
type CuisineProfile struct {
	// Weights maps cuisine to the sum of ratings the user gave it, so a
	// cuisine rated often and highly dominates the preference vector.
	Weights map[string]float64
	// Averages maps cuisine to the user's average rating for it.
	Averages map[string]float64
}

// Store is the narrow data-fetch boundary of the taste engine. It returns
// plain in-memory aggregates so the correlation math stays unit-testable
// without a database.
type Store interface {
	SharedStats(userID, comparedUserID string) (*SharedStats, error)
	PairedRatings(userID, comparedUserID string) ([]RatingPair, error)
	CuisineProfile(userID string) (*CuisineProfile, error)
	ContextProfile(userID string) (map[ContextKey]int, error)

	// CachedAlignment returns (nil, nil) on cache miss.
	CachedAlignment(userID, comparedUserID string) (*model.TasteAlignment, error)
	// SaveAlignment upserts on the (user, compared user) composite key,
	// last-write-wins.
	SaveAlignment(alignment *model.TasteAlignment) error
	// DeleteAlignmentsFor removes every cached pair the user appears in, on
	// either side.
	DeleteAlignmentsFor(userID string) error
}

type gormStore struct {
	db *gorm.DB
}

// NewGormStore builds the Postgres-backed Store used in production.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) SharedStats(userID, comparedUserID string) (*SharedStats, error) {
	stats := SharedStats{}

	err := s.db.Raw(`
		SELECT COUNT(DISTINCT a.restaurant_id)
		FROM recommendations a
		JOIN recommendations b ON a.restaurant_id = b.restaurant_id
		WHERE a.author_id = ? AND b.author_id = ?
		  AND a.deleted_at IS NULL AND b.deleted_at IS NULL`,
		userID, comparedUserID).Scan(&stats.SharedRestaurants).Error
	if err != nil {
		return nil, errors.Wrap(err, "fail to count shared restaurants")
	}

	err = s.db.Raw(`
		SELECT DISTINCT a.cuisine
		FROM recommendations a
		JOIN recommendations b ON a.cuisine = b.cuisine
		WHERE a.author_id = ? AND b.author_id = ?
		  AND a.deleted_at IS NULL AND b.deleted_at IS NULL`,
		userID, comparedUserID).Scan(&stats.SharedCuisines).Error
	if err != nil {
		return nil, errors.Wrap(err, "fail to collect shared cuisines")
	}

	var counts []struct {
		AuthorID string
		Cnt      int
	}
	err = s.db.Raw(`
		SELECT author_id, COUNT(*) AS cnt
		FROM recommendations
		WHERE author_id IN (?, ?) AND deleted_at IS NULL
		GROUP BY author_id`,
		userID, comparedUserID).Scan(&counts).Error
	if err != nil {
		return nil, errors.Wrap(err, "fail to count ratings")
	}
	for _, c := range counts {
		if c.AuthorID == userID {
			stats.UserRatingCount = c.Cnt
		} else {
			stats.ComparedRatingCount = c.Cnt
		}
	}

	return &stats, nil
}

func (s *gormStore) PairedRatings(userID, comparedUserID string) ([]RatingPair, error) {
	var rows []struct {
		UserRating     float64
		ComparedRating float64
	}
	err := s.db.Raw(`
		SELECT a.rating AS user_rating, b.rating AS compared_rating
		FROM recommendations a
		JOIN recommendations b ON a.restaurant_id = b.restaurant_id
		WHERE a.author_id = ? AND b.author_id = ?
		  AND a.deleted_at IS NULL AND b.deleted_at IS NULL`,
		userID, comparedUserID).Scan(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "fail to fetch paired ratings")
	}

	pairs := make([]RatingPair, 0, len(rows))
	for _, r := range rows {
		pairs = append(pairs, RatingPair{User: r.UserRating, Compared: r.ComparedRating})
	}
	return pairs, nil
}

func (s *gormStore) CuisineProfile(userID string) (*CuisineProfile, error) {
	var rows []struct {
		Cuisine string
		Total   float64
		Avg     float64
	}
	err := s.db.Raw(`
		SELECT cuisine, SUM(rating) AS total, AVG(rating) AS avg
		FROM recommendations
		WHERE author_id = ? AND deleted_at IS NULL
		GROUP BY cuisine`,
		userID).Scan(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "fail to fetch cuisine profile")
	}

	profile := CuisineProfile{
		Weights:  map[string]float64{},
		Averages: map[string]float64{},
	}
	for _, r := range rows {
		profile.Weights[r.Cuisine] = r.Total
		profile.Averages[r.Cuisine] = r.Avg
	}
	return &profile, nil
}

func (s *gormStore) ContextProfile(userID string) (map[ContextKey]int, error) {
	var rows []struct {
		Occasion string
		MealType string
		Cnt      int
	}
	err := s.db.Raw(`
		SELECT occasion, meal_type, COUNT(*) AS cnt
		FROM recommendations
		WHERE author_id = ? AND deleted_at IS NULL
		GROUP BY occasion, meal_type`,
		userID).Scan(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "fail to fetch context profile")
	}

	profile := map[ContextKey]int{}
	for _, r := range rows {
		profile[ContextKey{Occasion: r.Occasion, MealType: r.MealType}] = r.Cnt
	}
	return profile, nil
}

func (s *gormStore) CachedAlignment(userID, comparedUserID string) (*model.TasteAlignment, error) {
	var alignment model.TasteAlignment
	result := s.db.Where("user_id = ? AND compared_user_id = ?", userID, comparedUserID).
		Limit(1).Find(&alignment)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "fail to read alignment cache")
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &alignment, nil
}

func (s *gormStore) SaveAlignment(alignment *model.TasteAlignment) error {
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "compared_user_id"}},
		UpdateAll: true,
	}).Create(alignment).Error
	return errors.Wrap(err, "fail to upsert alignment cache")
}

func (s *gormStore) DeleteAlignmentsFor(userID string) error {
	err := s.db.Where("user_id = ? OR compared_user_id = ?", userID, userID).
		Delete(&model.TasteAlignment{}).Error
	return errors.Wrap(err, "fail to invalidate alignment cache")
}
