package feed

import (
	"github.com/plateful/plateful/model"
	"github.com/plateful/plateful/utils"
	Logger "github.com/plateful/plateful/utils/log"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// gormEngagementLookup resolves interaction flags from the join tables, with
// the redis status store as an optional read-through fast path for likes and
// saves. Reshare status is always read from the DB; the reshare table is
// small per user and has no redis mirror.
type gormEngagementLookup struct {
	db     *gorm.DB
	status *utils.EngagementStatusStore
}

// NewGormEngagementLookup builds the production EngagementLookup; status may
// be nil, in which case every lookup goes to the DB.
func NewGormEngagementLookup(db *gorm.DB, status *utils.EngagementStatusStore) EngagementLookup {
	return &gormEngagementLookup{db: db, status: status}
}

func (l *gormEngagementLookup) Flags(userID string, recommendationIDs []string) (map[string]InteractionFlags, error) {
	liked, err := l.membership(utils.ActionLike, userID, recommendationIDs)
	if err != nil {
		return nil, err
	}
	saved, err := l.membership(utils.ActionSave, userID, recommendationIDs)
	if err != nil {
		return nil, err
	}

	var resharedIDs []string
	err = l.db.Model(&model.Reshare{}).
		Where("resharer_id = ? AND recommendation_id IN ? AND deleted_at IS NULL", userID, recommendationIDs).
		Pluck("recommendation_id", &resharedIDs).Error
	if err != nil {
		return nil, errors.Wrap(err, "fail to fetch reshare status")
	}
	flags := map[string]InteractionFlags{}
	for _, id := range recommendationIDs {
		flags[id] = InteractionFlags{
			Liked:    liked[id],
			Saved:    saved[id],
			Reshared: utils.ContainsString(resharedIDs, id),
		}
	}
	return flags, nil
}

// membership resolves one action's flags, hitting redis first and falling
// back to the join table for ids redis has no entry for. DB results are
// backfilled into redis so the next feed render stays cheap.
func (l *gormEngagementLookup) membership(action string, userID string, recommendationIDs []string) (map[string]bool, error) {
	result := map[string]bool{}
	missing := recommendationIDs

	if l.status != nil {
		cached, err := l.status.GetEngagedStatus(action, recommendationIDs, userID)
		if err != nil {
			Logger.Log.Error("engagement status store read failed, falling back to DB: ", err)
		} else {
			missing = []string{}
			for _, id := range recommendationIDs {
				if engaged, ok := cached[id]; ok {
					result[id] = engaged
				} else {
					missing = append(missing, id)
				}
			}
		}
	}
	if len(missing) == 0 {
		return result, nil
	}

	var engagedIDs []string
	query := l.db.Model(&model.UserRecommendationLike{})
	if action == utils.ActionSave {
		query = l.db.Model(&model.UserRecommendationSave{})
	}
	err := query.
		Where("user_id = ? AND recommendation_id IN ? AND deleted_at IS NULL", userID, missing).
		Pluck("recommendation_id", &engagedIDs).Error
	if err != nil {
		return nil, errors.Wrapf(err, "fail to fetch %s status", action)
	}

	engaged := map[string]bool{}
	for _, id := range engagedIDs {
		engaged[id] = true
	}
	for _, id := range missing {
		result[id] = engaged[id]
		if l.status != nil {
			if err := l.status.SetEngagedStatus(action, id, userID, engaged[id]); err != nil {
				Logger.Log.Error("fail to backfill engagement status: ", err)
			}
		}
	}
	return result, nil
}
