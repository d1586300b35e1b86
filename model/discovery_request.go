package model

import (
	"time"

	"gorm.io/gorm"
)

const (
	DiscoveryRequestStatusOpen     = "open"
	DiscoveryRequestStatusAnswered = "answered"
	DiscoveryRequestStatusClosed   = "closed"
)

/*

DiscoveryRequest is a bounty-backed ask ("where should I eat in Lisbon?").
Bounty escrow and settlement are owned by the (external) token service; the
feed only surfaces open and answered requests.

Bounty: token amount offered, in the token's smallest unit

*/

type DiscoveryRequest struct {
	Id           string `gorm:"primaryKey"`
	CreatedAt    time.Time
	DeletedAt    gorm.DeletedAt
	AuthorID     string `gorm:"index;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
	Author       User   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
	Title        string
	Description  string
	Location     string
	Bounty       int64
	Status       string `gorm:"index"`
	RepliesCount int
}
