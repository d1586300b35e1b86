// database_utils should be the canonical place to put shared DB utils.
// It should not include:
// 1. Any util that doesn't manipulate DB
// 2. Any util that contains business logic
package utils

import (
	"fmt"
	"os"

	"github.com/plateful/plateful/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// GormTransaction is the callback function used during db.Transaction in Gorm.
type GormTransaction func(tx *gorm.DB) error

// GetDBConnection get a connection to the database specified by env
func GetDBConnection() (*gorm.DB, error) {
	return GetCustomizedConnection(os.Getenv("DB_NAME"))
}

// GetCustomizedConnection connect to any db
func GetCustomizedConnection(dbName string) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"), os.Getenv("DB_USER"), os.Getenv("DB_PASS"), dbName, os.Getenv("DB_PORT"))
	return getDB(dsn)
}

func getDB(connectionString string) (db *gorm.DB, err error) {
	return gorm.Open(postgres.Open(connectionString), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
}

// DatabaseSetupAndMigration wires the explicit join tables and migrates every
// model the service touches. The alignment cache table in particular must
// exist before the taste engine can upsert into it.
func DatabaseSetupAndMigration(db *gorm.DB) {
	var err error

	err = db.SetupJoinTable(&model.User{}, "Following", &model.UserFollow{})
	if err != nil {
		panic("failed to set up user_follows join table")
	}

	err = db.SetupJoinTable(&model.User{}, "LikedRecommendations", &model.UserRecommendationLike{})
	if err != nil {
		panic("failed to set up user_recommendation_likes join table")
	}

	err = db.SetupJoinTable(&model.User{}, "SavedRecommendations", &model.UserRecommendationSave{})
	if err != nil {
		panic("failed to set up user_recommendation_saves join table")
	}

	err = db.AutoMigrate(
		&model.User{},
		&model.Recommendation{},
		&model.Reshare{},
		&model.RestaurantList{},
		&model.DiscoveryRequest{},
		&model.TasteAlignment{},
	)
	if err != nil {
		panic("failed to migrate database")
	}
}
