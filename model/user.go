package model

import (
	"time"

	"gorm.io/gorm"
)

/*

User is a member of the platform. Profiles are owned by the (external) auth
and account services; this service reads them for feed ranking.

Id: primary key, matches the subject id issued by the auth service
Username: unique handle
DisplayName: free-form display name
BaseTrustScore: reputation on a 0-10 scale, maintained by the (external)
		reward/governance services. 0 means "never set"; scoring falls back to the
		5.0 midpoint in that case.

Following: users this user follows, "many-to-many" through user_follows
LikedRecommendations / SavedRecommendations: engagement join tables, also
		tracked as denormalized counters on Recommendation

*/

type User struct {
	Id                   string `gorm:"primaryKey"`
	CreatedAt            time.Time
	DeletedAt            gorm.DeletedAt
	Username             string `gorm:"uniqueIndex"`
	DisplayName          string
	AvatarUrl            string
	BaseTrustScore       float64
	Following            []*User           `json:"following" gorm:"many2many:user_follows;joinForeignKey:FollowerID;joinReferences:FolloweeID"`
	LikedRecommendations []*Recommendation `json:"liked_recommendations" gorm:"many2many:user_recommendation_likes;"`
	SavedRecommendations []*Recommendation `json:"saved_recommendations" gorm:"many2many:user_recommendation_saves;"`
}
