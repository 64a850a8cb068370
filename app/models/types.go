package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/v2/bson"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Post represents a volunteer opportunity published by an organizer.
type Post struct {
	ID             bson.ObjectID  `json:"_id" bson:"_id,omitempty" validate:"-"`
	Title          string         `json:"title" bson:"title" validate:"required,max=200"`
	Description    string         `json:"description,omitempty" bson:"description,omitempty"`
	Category       string         `json:"category,omitempty" bson:"category,omitempty"`
	Location       string         `json:"location,omitempty" bson:"location,omitempty"`
	Thumbnail      string         `json:"thumbnail,omitempty" bson:"thumbnail,omitempty" validate:"omitempty,url"`
	OrganizerName  string         `json:"organizerName,omitempty" bson:"organizerName,omitempty"`
	OrganizerEmail string         `json:"organizerEmail" bson:"organizerEmail" validate:"required,email"`
	Deadline       time.Time      `json:"deadline" bson:"deadline" validate:"required"`
	SlotsRemaining int            `json:"slotsRemaining" bson:"slotsRemaining" validate:"gte=0"`
	Capacity       int            `json:"capacity,omitempty" bson:"capacity,omitempty" validate:"gte=0"`
	CreatedAt      time.Time      `json:"createdAt" bson:"createdAt"`
	Extra          map[string]any `json:"-" bson:",inline" validate:"-"`
}

// Request represents one volunteer's claim against a Post. PostID is a weak
// reference: nothing guarantees the Post still exists.
type Request struct {
	ID             bson.ObjectID  `json:"_id" bson:"_id,omitempty" validate:"-"`
	PostID         string         `json:"PostId" bson:"PostId" validate:"required"`
	VolunteerEmail string         `json:"volunteerEmail" bson:"volunteerEmail" validate:"required,email"`
	VolunteerName  string         `json:"volunteerName,omitempty" bson:"volunteerName,omitempty"`
	Suggestion     string         `json:"suggestion,omitempty" bson:"suggestion,omitempty" validate:"max=1000"`
	Status         string         `json:"status" bson:"status"`
	CreatedAt      time.Time      `json:"createdAt" bson:"createdAt"`
	Extra          map[string]any `json:"-" bson:",inline" validate:"-"`
}

// PostFilter selects Posts in a listing. Zero values disable a criterion.
type PostFilter struct {
	TitleContains  string
	OrganizerEmail string
	SortByDeadline bool
	Limit          int
}

// RequestFilter selects Requests in a listing. Zero values disable a criterion.
type RequestFilter struct {
	PostID         string
	VolunteerEmail string
}
