package model

import (
	"time"

	"gorm.io/gorm"
)

/*

Reshare wraps an existing Recommendation, similar to a retweet. The wrapped
recommendation keeps its own identity: feeds deduplicate a reshare against
the underlying recommendation's id, so the same restaurant write-up never
shows twice no matter how it was surfaced.

Id: primary key of the wrapping entity
ResharerID:
Resharer: user who reshared, "belongs-to" relation
RecommendationID:
Recommendation: the underlying recommendation being reshared
Comment: optional commentary added by the resharer
CreatedAt: reshare time; feeds sort reshares by this, not by the underlying
		recommendation's creation time

*/

type Reshare struct {
	Id               string `gorm:"primaryKey"`
	CreatedAt        time.Time
	DeletedAt        gorm.DeletedAt
	ResharerID       string `gorm:"index;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
	Resharer         User   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
	RecommendationID string `gorm:"index"`
	Recommendation   *Recommendation
	Comment          string
}
