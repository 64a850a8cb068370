package models

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"time"
)

var postFields = jsonFieldNames(reflect.TypeOf(Post{}))

// Validate checks if the post meets all validation requirements
func (p *Post) Validate() error {
	if err := validate.Struct(p); err != nil {
		return err
	}

	if p.CreatedAt.IsZero() {
		return errors.New("created_at cannot be zero")
	}

	return nil
}

// BeforeCreate sets up any necessary fields before creation
func (p *Post) BeforeCreate() {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	if p.Capacity == 0 {
		p.Capacity = p.SlotsRemaining
	}
}

// HasSlots reports whether at least one volunteer slot is still open.
func (p *Post) HasSlots() bool {
	return p.SlotsRemaining > 0
}

// OrganizedBy reports whether email is the post's organizer.
func (p *Post) OrganizedBy(email string) bool {
	return p.OrganizerEmail == email
}

// TitleMatches reports whether the title contains query, ignoring case.
func (p *Post) TitleMatches(query string) bool {
	return strings.Contains(strings.ToLower(p.Title), strings.ToLower(query))
}

// Matches reports whether the post satisfies the filter's predicates.
// Sorting and limits are left to the caller.
func (p *Post) Matches(filter PostFilter) bool {
	if filter.TitleContains != "" && !p.TitleMatches(filter.TitleContains) {
		return false
	}
	if filter.OrganizerEmail != "" && !p.OrganizedBy(filter.OrganizerEmail) {
		return false
	}
	return true
}

func (p Post) MarshalJSON() ([]byte, error) {
	type post Post
	return marshalWithExtra(post(p), p.Extra)
}

func (p *Post) UnmarshalJSON(data []byte) error {
	type post Post
	var decoded post
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	extra, err := extractExtra(data, postFields)
	if err != nil {
		return err
	}
	decoded.Extra = extra
	*p = Post(decoded)
	return nil
}
