package model

import (
	"time"

	"gorm.io/datatypes"
)

/*

TasteAlignment is the persisted cache row for one ordered (user,
compared-user) pair of the taste alignment engine.

SimilarityScore: [0,1], remapped from the [-1,1] combined correlation
ConfidenceLevel: [0,1], how much evidence backs the score
SharedPreferences / DivergentPreferences: JSON string arrays of cuisines
CorrelationData: JSON-encoded CorrelationData with the three raw sub-scores
SharedRestaurants: count of restaurants both users have rated
SharedCuisines: JSON string array of cuisines both users have rated
LastCalculated: staleness anchor; rows older than the engine's max cache age
		are recomputed on read
CalculationVersion: engine version that produced the row

Rows are upserted on the composite key and deleted wholesale for a user when
that user's rating history changes.

*/

type TasteAlignment struct {
	UserID               string `gorm:"primaryKey"`
	ComparedUserID       string `gorm:"primaryKey"`
	SimilarityScore      float64
	ConfidenceLevel      float64
	SharedPreferences    datatypes.JSON
	DivergentPreferences datatypes.JSON
	CorrelationData      datatypes.JSON
	SharedRestaurants    int
	SharedCuisines       datatypes.JSON
	LastCalculated       time.Time
	CalculationVersion   string
}

// CorrelationData is the JSON payload stored in TasteAlignment.CorrelationData.
// The three sub-scores are raw, clamped to [-1,1], before weighting and the
// [0,1] remap.
type CorrelationData struct {
	CuisineCorrelation float64 `json:"cuisine_correlation"`
	RatingCorrelation  float64 `json:"rating_correlation"`
	ContextCorrelation float64 `json:"context_correlation"`
}
