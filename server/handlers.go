package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/plateful/plateful/feed"
	"github.com/plateful/plateful/model"
	"github.com/plateful/plateful/taste"
	"github.com/plateful/plateful/utils"
	Logger "github.com/plateful/plateful/utils/log"
	"gorm.io/gorm"
)

// callerID reads the subject populated by the auth middleware.
func callerID(c *gin.Context) string {
	return c.Request.Header.Get("sub")
}

// HealthcheckHandler is a trivial liveness probe.
func HealthcheckHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// FeedHandler serves the ranked feed for the authenticated user.
func FeedHandler(generator *feed.Generator) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := callerID(c)
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "missing subject"})
			return
		}

		response, err := generator.Generate(userID)
		if err != nil {
			Logger.Log.Error("feed generation failed for user ", userID, " : ", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "fail to generate feed"})
			return
		}
		c.JSON(http.StatusOK, response)
	}
}

// LikeToggleHandler flips the caller's like on a recommendation and adjusts
// the denormalized counter in the same transaction.
func LikeToggleHandler(db *gorm.DB, status *utils.EngagementStatusStore) gin.HandlerFunc {
	return toggleHandler(db, status, utils.ActionLike)
}

// SaveToggleHandler flips the caller's save on a recommendation and adjusts
// the denormalized counter in the same transaction.
func SaveToggleHandler(db *gorm.DB, status *utils.EngagementStatusStore) gin.HandlerFunc {
	return toggleHandler(db, status, utils.ActionSave)
}

func toggleHandler(db *gorm.DB, status *utils.EngagementStatusStore, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := callerID(c)
		recommendationID := c.Param("id")
		if userID == "" || recommendationID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"message": "missing subject or recommendation id"})
			return
		}

		var rec model.Recommendation
		if db.Where("id = ?", recommendationID).First(&rec).RowsAffected != 1 {
			c.JSON(http.StatusNotFound, gin.H{"message": "recommendation not found"})
			return
		}

		engaged := false
		if err := db.Transaction(toggleTransaction(action, userID, recommendationID, &engaged)); err != nil {
			Logger.Log.Error("fail to toggle ", action, " for user ", userID, " : ", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "fail to toggle " + action})
			return
		}

		if status != nil {
			if err := status.SetEngagedStatus(action, recommendationID, userID, engaged); err != nil {
				Logger.Log.Error("fail to mirror ", action, " status to redis: ", err)
			}
		}
		c.JSON(http.StatusOK, gin.H{"engaged": engaged})
	}
}

// toggleTransaction builds the transaction that flips one engagement row and
// adjusts the denormalized counter. engaged receives the membership state
// after the flip.
func toggleTransaction(action string, userID string, recommendationID string, engaged *bool) utils.GormTransaction {
	counterColumn := "likes_count"
	join := func() interface{} { return &model.UserRecommendationLike{} }
	if action == utils.ActionSave {
		counterColumn = "saves_count"
		join = func() interface{} { return &model.UserRecommendationSave{} }
	}

	return func(tx *gorm.DB) error {
		existing := tx.Where("user_id = ? AND recommendation_id = ?", userID, recommendationID).
			Find(join())
		if existing.Error != nil {
			return existing.Error
		}

		if existing.RowsAffected > 0 {
			// Hard delete so the composite key can be re-created on the next
			// toggle.
			if err := tx.Unscoped().
				Where("user_id = ? AND recommendation_id = ?", userID, recommendationID).
				Delete(join()).Error; err != nil {
				return err
			}
			return tx.Model(&model.Recommendation{}).
				Where("id = ?", recommendationID).
				UpdateColumn(counterColumn, gorm.Expr(counterColumn+" - ?", 1)).Error
		}

		*engaged = true
		var record interface{}
		if action == utils.ActionSave {
			record = &model.UserRecommendationSave{UserID: userID, RecommendationID: recommendationID}
		} else {
			record = &model.UserRecommendationLike{UserID: userID, RecommendationID: recommendationID}
		}
		if err := tx.Create(record).Error; err != nil {
			return err
		}
		return tx.Model(&model.Recommendation{}).
			Where("id = ?", recommendationID).
			UpdateColumn(counterColumn, gorm.Expr(counterColumn+" + ?", 1)).Error
	}
}

// ReshareHandler creates the caller's reshare of a recommendation and bumps
// the denormalized counter in the same transaction.
func ReshareHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := callerID(c)
		recommendationID := c.Param("id")
		if userID == "" || recommendationID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"message": "missing subject or recommendation id"})
			return
		}

		var rec model.Recommendation
		if db.Where("id = ?", recommendationID).First(&rec).RowsAffected != 1 {
			c.JSON(http.StatusNotFound, gin.H{"message": "recommendation not found"})
			return
		}

		var body struct {
			Comment string `json:"comment"`
		}
		// Comment is optional; an empty body reshares without commentary.
		c.ShouldBindJSON(&body)

		reshare := newReshare(userID, recommendationID, body.Comment)
		if err := db.Transaction(createReshareTransaction(reshare)); err != nil {
			Logger.Log.Error("fail to create reshare for user ", userID, " : ", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "fail to create reshare"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": reshare.Id})
	}
}

func newReshare(userID string, recommendationID string, comment string) *model.Reshare {
	return &model.Reshare{
		Id:               uuid.New().String(),
		ResharerID:       userID,
		RecommendationID: recommendationID,
		Comment:          comment,
	}
}

func createReshareTransaction(reshare *model.Reshare) utils.GormTransaction {
	return func(tx *gorm.DB) error {
		if err := tx.Create(reshare).Error; err != nil {
			return err
		}
		return tx.Model(&model.Recommendation{}).
			Where("id = ?", reshare.RecommendationID).
			UpdateColumn("reshares_count", gorm.Expr("reshares_count + ?", 1)).Error
	}
}

// AlignmentHandler exposes the taste alignment between the caller and another
// user, for profile pages.
func AlignmentHandler(engine *taste.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := callerID(c)
		comparedUserID := c.Param("userId")
		if userID == "" || comparedUserID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"message": "missing subject or compared user id"})
			return
		}

		alignment, err := engine.GetAlignment(userID, comparedUserID, c.Query("force") == "true")
		if err != nil {
			Logger.Log.Error("fail to get alignment: ", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "fail to compute alignment"})
			return
		}
		if alignment == nil {
			// Self comparison: not applicable rather than an error.
			c.JSON(http.StatusOK, gin.H{"alignment": nil})
			return
		}
		c.JSON(http.StatusOK, gin.H{"alignment": alignment})
	}
}

// InvalidateTasteCacheHandler drops every cached alignment pair involving a
// user. The external rating-submission pathway calls this whenever the
// user's rating history changes.
func InvalidateTasteCacheHandler(engine *taste.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Param("userId")
		if userID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"message": "missing user id"})
			return
		}
		if err := engine.InvalidateUserCache(userID); err != nil {
			Logger.Log.Error("fail to invalidate taste cache for user ", userID, " : ", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "fail to invalidate taste cache"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"invalidated": userID})
	}
}
