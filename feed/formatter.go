package feed

import (
	"encoding/json"
	"time"

	"github.com/jinzhu/copier"
	"github.com/plateful/plateful/model"
	"github.com/pkg/errors"
)

// FormattedItem is the wire shape one feed entry renders to. Exactly one of
// the payload pointers is set, matching Type.
type FormattedItem struct {
	Type           string                   `json:"type"`
	Author         *FormattedAuthor         `json:"author,omitempty"`
	Recommendation *FormattedRecommendation `json:"recommendation,omitempty"`
	Reshare        *FormattedReshare        `json:"reshare,omitempty"`
	List           *FormattedList           `json:"list,omitempty"`
	Request        *FormattedRequest        `json:"request,omitempty"`
	Interaction    *InteractionFlags        `json:"interaction,omitempty"`
}

type FormattedAuthor struct {
	Id          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	AvatarUrl   string `json:"avatar_url"`
}

type FormattedRecommendation struct {
	Id                string    `json:"id"`
	RestaurantID      string    `json:"restaurant_id"`
	RestaurantName    string    `json:"restaurant_name"`
	RestaurantAddress string    `json:"restaurant_address"`
	Cuisine           string    `json:"cuisine"`
	Rating            float64   `json:"rating"`
	Review            string    `json:"review"`
	Occasion          string    `json:"occasion"`
	MealType          string    `json:"meal_type"`
	LikesCount        int       `json:"likes_count"`
	SavesCount        int       `json:"saves_count"`
	ResharesCount     int       `json:"reshares_count"`
	CommentsCount     int       `json:"comments_count"`
	CreatedAt         time.Time `json:"created_at"`
}

type FormattedReshare struct {
	Id             string                   `json:"id"`
	Comment        string                   `json:"comment"`
	Resharer       *FormattedAuthor         `json:"resharer"`
	Recommendation *FormattedRecommendation `json:"recommendation"`
	CreatedAt      time.Time                `json:"created_at"`
}

type FormattedList struct {
	Id          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	IsPublic    bool            `json:"is_public"`
	Restaurants json.RawMessage `json:"restaurants"`
	LikesCount  int             `json:"likes_count"`
	SavesCount  int             `json:"saves_count"`
	CreatedAt   time.Time       `json:"created_at"`
}

type FormattedRequest struct {
	Id           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Location     string    `json:"location"`
	Bounty       int64     `json:"bounty"`
	Status       string    `json:"status"`
	RepliesCount int       `json:"replies_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// InteractionFlags is the caller's own engagement with a recommendation-like
// item.
type InteractionFlags struct {
	Liked    bool `json:"liked"`
	Saved    bool `json:"saved"`
	Reshared bool `json:"reshared"`
}

// EngagementLookup resolves the caller's like/save/reshare status for a batch
// of recommendation ids. This is a post-pass over the ranked feed, not part
// of the ranking core.
type EngagementLookup interface {
	Flags(userID string, recommendationIDs []string) (map[string]InteractionFlags, error)
}

// Formatter maps ranked content items into the wire format.
type Formatter struct {
	engagement EngagementLookup
}

func NewFormatter(engagement EngagementLookup) *Formatter {
	return &Formatter{engagement: engagement}
}

// Format renders the ranked items, populating the caller's interaction flags
// for recommendations and reshares in one batch lookup.
func (f *Formatter) Format(userID string, items []model.ContentItem) ([]FormattedItem, error) {
	recommendationIDs := []string{}
	for _, item := range items {
		if item.DedupKind() == model.KindRecommendation {
			recommendationIDs = append(recommendationIDs, item.DedupID())
		}
	}

	flags := map[string]InteractionFlags{}
	if f.engagement != nil && len(recommendationIDs) > 0 {
		var err error
		flags, err = f.engagement.Flags(userID, recommendationIDs)
		if err != nil {
			return nil, errors.Wrap(err, "fail to resolve engagement flags")
		}
	}

	out := make([]FormattedItem, 0, len(items))
	for _, item := range items {
		switch item.Kind {
		case model.KindRecommendation:
			interaction := flags[item.Recommendation.Id]
			out = append(out, FormattedItem{
				Type:           string(model.KindRecommendation),
				Author:         formatAuthor(&item.Recommendation.Author),
				Recommendation: formatRecommendation(item.Recommendation),
				Interaction:    &interaction,
			})
		case model.KindReshare:
			interaction := flags[item.Reshare.RecommendationID]
			formatted := FormattedReshare{
				Id:        item.Reshare.Id,
				Comment:   item.Reshare.Comment,
				Resharer:  formatAuthor(&item.Reshare.Resharer),
				CreatedAt: item.Reshare.CreatedAt,
			}
			if item.Reshare.Recommendation != nil {
				formatted.Recommendation = formatRecommendation(item.Reshare.Recommendation)
			}
			out = append(out, FormattedItem{
				Type:        string(model.KindReshare),
				Author:      formatAuthor(item.Author()),
				Reshare:     &formatted,
				Interaction: &interaction,
			})
		case model.KindList:
			formatted := FormattedList{}
			copier.Copy(&formatted, item.List)
			formatted.Restaurants = json.RawMessage(item.List.Restaurants)
			out = append(out, FormattedItem{
				Type:   string(model.KindList),
				Author: formatAuthor(&item.List.Author),
				List:   &formatted,
			})
		case model.KindRequest:
			formatted := FormattedRequest{}
			copier.Copy(&formatted, item.Request)
			out = append(out, FormattedItem{
				Type:    string(model.KindRequest),
				Author:  formatAuthor(&item.Request.Author),
				Request: &formatted,
			})
		}
	}
	return out, nil
}

func formatAuthor(user *model.User) *FormattedAuthor {
	if user == nil {
		return nil
	}
	author := FormattedAuthor{}
	copier.Copy(&author, user)
	return &author
}

func formatRecommendation(rec *model.Recommendation) *FormattedRecommendation {
	formatted := FormattedRecommendation{}
	copier.Copy(&formatted, rec)
	return &formatted
}
