package model

import (
	"time"

	"gorm.io/gorm"
)

/*

UserRecommendationLike is a "many-to-many" relation of user liking a
recommendation. UserRecommendationSave is the same for saves. Membership is
flipped by the engagement toggle endpoints together with the denormalized
counters on Recommendation, in one transaction.

*/

type UserRecommendationLike struct {
	UserID           string `gorm:"primaryKey"`
	RecommendationID string `gorm:"primaryKey"`
	CreatedAt        time.Time
	DeletedAt        gorm.DeletedAt
}

type UserRecommendationSave struct {
	UserID           string `gorm:"primaryKey"`
	RecommendationID string `gorm:"primaryKey"`
	CreatedAt        time.Time
	DeletedAt        gorm.DeletedAt
}

func (UserRecommendationLike) BeforeCreate(db *gorm.DB) error {
	return nil
}

func (UserRecommendationSave) BeforeCreate(db *gorm.DB) error {
	return nil
}
