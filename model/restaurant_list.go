package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

/*

RestaurantList is a curated set of restaurants (a "guide"). List CRUD and
cover-image management belong to the (external) list service; feeds read
lists for the own-content and followed-lists sources.

Restaurants: JSON array of restaurant entries; the feed only needs the
		count and the first few names, so the set is kept opaque here

*/

type RestaurantList struct {
	Id          string `gorm:"primaryKey"`
	CreatedAt   time.Time
	DeletedAt   gorm.DeletedAt
	AuthorID    string `gorm:"index;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
	Author      User   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
	Name        string
	Description string
	IsPublic    bool
	Restaurants datatypes.JSON
	LikesCount  int
	SavesCount  int
}
