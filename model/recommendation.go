package model

import (
	"time"

	"gorm.io/gorm"
)

/*

Recommendation is a rated restaurant write-up, the platform's main content
type. A user's recommendations double as their rating history: the taste
alignment engine aggregates over this table for paired ratings, cuisine
preference vectors and dining-context profiles.

Id: primary key
AuthorID:
Author: user who wrote the recommendation, "belongs-to" relation

RestaurantID: stable external place id, used to pair two users' ratings of
		the same restaurant
Rating: 0-10
Occasion / MealType: dining context, e.g. ("date_night", "dinner")

LikesCount / SavesCount / ResharesCount / CommentsCount: denormalized
		engagement counters, adjusted by the engagement toggle endpoints

*/

type Recommendation struct {
	Id                string `gorm:"primaryKey"`
	CreatedAt         time.Time
	DeletedAt         gorm.DeletedAt
	AuthorID          string `gorm:"index;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
	Author            User   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
	RestaurantID      string `gorm:"index"`
	RestaurantName    string
	RestaurantAddress string
	Cuisine           string `gorm:"index"`
	Rating            float64
	Review            string
	Occasion          string
	MealType          string
	LikesCount        int
	SavesCount        int
	ResharesCount     int
	CommentsCount     int
}
