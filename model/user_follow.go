package model

import (
	"time"

	"gorm.io/gorm"
)

/*

UserFollow is a "many-to-many" relation of one user following another.
Mutation of this table belongs to the (external) social-graph endpoints; the
feed core only reads it.

FollowerID: the user doing the following
FolloweeID: the user being followed
CreatedAt: time when relation is created
DeletedAt: time when relation is deleted

*/

type UserFollow struct {
	FollowerID string `gorm:"primaryKey"`
	FolloweeID string `gorm:"primaryKey"`
	CreatedAt  time.Time
	DeletedAt  gorm.DeletedAt
}
