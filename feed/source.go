package feed

import (
	"time"

	"github.com/plateful/plateful/model"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

const (
	followingFeedLimit    = 30
	followedResharesLimit = 20
	followedRequestsLimit = 10
	followedListsLimit    = 10
	tasteMatchedLimit     = 20
	trendingLimit         = 15

	// Taste-matched candidates come from the caller's strongest cuisines.
	topCuisineCount  = 5
	tasteRatingFloor = 7.0

	trendingWindow      = 24 * time.Hour
	trendingRatingFloor = 8.0
)

// ContentSource is the read boundary between the candidate collector and the
// data store. Each method is one independent query; the collector fans them
// out concurrently and tolerates individual failures.
type ContentSource interface {
	// Followees returns the ids of users the given user follows. This is the
	// one fetch whose failure is fatal to feed generation.
	Followees(userID string) ([]string, error)

	OwnContent(userID string) ([]model.ContentItem, error)
	FollowedRecommendations(userID string, followees []string) ([]model.ContentItem, error)
	FollowedReshares(userID string, followees []string) ([]model.ContentItem, error)
	FollowedDiscoveryRequests(userID string, followees []string) ([]model.ContentItem, error)
	// TasteMatchedRecommendations returns highly-rated posts in the caller's
	// top cuisines by authors outside excludedAuthors. Returns nothing when
	// the caller has no rating history.
	TasteMatchedRecommendations(userID string, excludedAuthors []string) ([]model.ContentItem, error)
	TrendingRecommendations() ([]model.ContentItem, error)
	FollowedLists(userID string, followees []string) ([]model.ContentItem, error)
}

type gormContentSource struct {
	db *gorm.DB
}

// NewGormContentSource builds the Postgres-backed ContentSource used in
// production.
func NewGormContentSource(db *gorm.DB) ContentSource {
	return &gormContentSource{db: db}
}

func (s *gormContentSource) Followees(userID string) ([]string, error) {
	var followees []string
	err := s.db.Model(&model.UserFollow{}).
		Where("follower_id = ? AND deleted_at IS NULL", userID).
		Pluck("followee_id", &followees).Error
	if err != nil {
		return nil, errors.Wrap(err, "fail to fetch follow edges")
	}
	return followees, nil
}

func (s *gormContentSource) OwnContent(userID string) ([]model.ContentItem, error) {
	items := []model.ContentItem{}

	var recommendations []*model.Recommendation
	if err := s.db.Model(&model.Recommendation{}).
		Preload("Author").
		Where("author_id = ?", userID).
		Order("created_at desc").
		Find(&recommendations).Error; err != nil {
		return nil, errors.Wrap(err, "fail to fetch own recommendations")
	}
	for _, r := range recommendations {
		items = append(items, model.ContentItem{Kind: model.KindRecommendation, Recommendation: r})
	}

	var lists []*model.RestaurantList
	// Own lists include private ones.
	if err := s.db.Model(&model.RestaurantList{}).
		Preload("Author").
		Where("author_id = ?", userID).
		Order("created_at desc").
		Find(&lists).Error; err != nil {
		return nil, errors.Wrap(err, "fail to fetch own lists")
	}
	for _, l := range lists {
		items = append(items, model.ContentItem{Kind: model.KindList, List: l})
	}

	var requests []*model.DiscoveryRequest
	if err := s.db.Model(&model.DiscoveryRequest{}).
		Preload("Author").
		Where("author_id = ? AND status IN ?", userID,
			[]string{model.DiscoveryRequestStatusOpen, model.DiscoveryRequestStatusAnswered}).
		Order("created_at desc").
		Find(&requests).Error; err != nil {
		return nil, errors.Wrap(err, "fail to fetch own discovery requests")
	}
	for _, r := range requests {
		items = append(items, model.ContentItem{Kind: model.KindRequest, Request: r})
	}

	var reshares []*model.Reshare
	if err := s.db.Model(&model.Reshare{}).
		Preload("Resharer").
		Preload("Recommendation").
		Preload("Recommendation.Author").
		Where("resharer_id = ?", userID).
		Order("created_at desc").
		Find(&reshares).Error; err != nil {
		return nil, errors.Wrap(err, "fail to fetch own reshares")
	}
	for _, r := range reshares {
		items = append(items, model.ContentItem{Kind: model.KindReshare, Reshare: r})
	}

	return items, nil
}

func (s *gormContentSource) FollowedRecommendations(userID string, followees []string) ([]model.ContentItem, error) {
	if len(followees) == 0 {
		return nil, nil
	}
	var recommendations []*model.Recommendation
	if err := s.db.Model(&model.Recommendation{}).
		Preload("Author").
		Where("author_id IN ?", followees).
		Order("created_at desc").
		Limit(followingFeedLimit).
		Find(&recommendations).Error; err != nil {
		return nil, errors.Wrap(err, "fail to fetch followed recommendations")
	}
	items := make([]model.ContentItem, 0, len(recommendations))
	for _, r := range recommendations {
		items = append(items, model.ContentItem{Kind: model.KindRecommendation, Recommendation: r})
	}
	return items, nil
}

func (s *gormContentSource) FollowedReshares(userID string, followees []string) ([]model.ContentItem, error) {
	if len(followees) == 0 {
		return nil, nil
	}
	var reshares []*model.Reshare
	// Reshares surface the underlying recommendation even when it would not
	// otherwise be visible to the caller.
	if err := s.db.Model(&model.Reshare{}).
		Preload("Resharer").
		Preload("Recommendation").
		Preload("Recommendation.Author").
		Where("resharer_id IN ?", followees).
		Order("created_at desc").
		Limit(followedResharesLimit).
		Find(&reshares).Error; err != nil {
		return nil, errors.Wrap(err, "fail to fetch followed reshares")
	}
	items := make([]model.ContentItem, 0, len(reshares))
	for _, r := range reshares {
		items = append(items, model.ContentItem{Kind: model.KindReshare, Reshare: r})
	}
	return items, nil
}

func (s *gormContentSource) FollowedDiscoveryRequests(userID string, followees []string) ([]model.ContentItem, error) {
	if len(followees) == 0 {
		return nil, nil
	}
	var requests []*model.DiscoveryRequest
	if err := s.db.Model(&model.DiscoveryRequest{}).
		Preload("Author").
		Where("author_id IN ? AND status IN ?", followees,
			[]string{model.DiscoveryRequestStatusOpen, model.DiscoveryRequestStatusAnswered}).
		Order("created_at desc").
		Limit(followedRequestsLimit).
		Find(&requests).Error; err != nil {
		return nil, errors.Wrap(err, "fail to fetch followed discovery requests")
	}
	items := make([]model.ContentItem, 0, len(requests))
	for _, r := range requests {
		items = append(items, model.ContentItem{Kind: model.KindRequest, Request: r})
	}
	return items, nil
}

func (s *gormContentSource) TasteMatchedRecommendations(userID string, excludedAuthors []string) ([]model.ContentItem, error) {
	var topCuisines []string
	err := s.db.Model(&model.Recommendation{}).
		Where("author_id = ? AND rating >= ?", userID, tasteRatingFloor).
		Group("cuisine").
		Order("count(*) desc").
		Limit(topCuisineCount).
		Pluck("cuisine", &topCuisines).Error
	if err != nil {
		return nil, errors.Wrap(err, "fail to derive top cuisines")
	}
	// No rating history means no taste signal to match on.
	if len(topCuisines) == 0 {
		return nil, nil
	}

	var recommendations []*model.Recommendation
	if err := s.db.Model(&model.Recommendation{}).
		Preload("Author").
		Where("author_id NOT IN ? AND cuisine IN ? AND rating >= ?",
			excludedAuthors, topCuisines, tasteRatingFloor).
		Order("created_at desc").
		Limit(tasteMatchedLimit).
		Find(&recommendations).Error; err != nil {
		return nil, errors.Wrap(err, "fail to fetch taste matched recommendations")
	}
	items := make([]model.ContentItem, 0, len(recommendations))
	for _, r := range recommendations {
		items = append(items, model.ContentItem{Kind: model.KindRecommendation, Recommendation: r})
	}
	return items, nil
}

func (s *gormContentSource) TrendingRecommendations() ([]model.ContentItem, error) {
	var recommendations []*model.Recommendation
	if err := s.db.Model(&model.Recommendation{}).
		Preload("Author").
		Where("created_at > ? AND rating >= ?", time.Now().Add(-trendingWindow), trendingRatingFloor).
		Order("created_at desc").
		Limit(trendingLimit).
		Find(&recommendations).Error; err != nil {
		return nil, errors.Wrap(err, "fail to fetch trending recommendations")
	}
	items := make([]model.ContentItem, 0, len(recommendations))
	for _, r := range recommendations {
		items = append(items, model.ContentItem{Kind: model.KindRecommendation, Recommendation: r})
	}
	return items, nil
}

func (s *gormContentSource) FollowedLists(userID string, followees []string) ([]model.ContentItem, error) {
	if len(followees) == 0 {
		return nil, nil
	}
	var lists []*model.RestaurantList
	if err := s.db.Model(&model.RestaurantList{}).
		Preload("Author").
		Where("author_id IN ? AND is_public = ?", followees, true).
		Order("created_at desc").
		Limit(followedListsLimit).
		Find(&lists).Error; err != nil {
		return nil, errors.Wrap(err, "fail to fetch followed lists")
	}
	items := make([]model.ContentItem, 0, len(lists))
	for _, l := range lists {
		items = append(items, model.ContentItem{Kind: model.KindList, List: l})
	}
	return items, nil
}
