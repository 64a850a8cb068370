package models

import (
	"encoding/json"
	"errors"
	"reflect"
	"time"
)

// StatusRequested is the status of every freshly created request.
const StatusRequested = "requested"

var requestFields = jsonFieldNames(reflect.TypeOf(Request{}))

// Validate checks if the request meets all validation requirements
func (r *Request) Validate() error {
	if err := validate.Struct(r); err != nil {
		return err
	}

	if r.CreatedAt.IsZero() {
		return errors.New("created_at cannot be zero")
	}

	return nil
}

// BeforeCreate sets up any necessary fields before creation
func (r *Request) BeforeCreate() {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	if r.Status == "" {
		r.Status = StatusRequested
	}
}

// Matches reports whether the request satisfies the filter.
func (r *Request) Matches(filter RequestFilter) bool {
	if filter.PostID != "" && r.PostID != filter.PostID {
		return false
	}
	if filter.VolunteerEmail != "" && r.VolunteerEmail != filter.VolunteerEmail {
		return false
	}
	return true
}

func (r Request) MarshalJSON() ([]byte, error) {
	type request Request
	return marshalWithExtra(request(r), r.Extra)
}

func (r *Request) UnmarshalJSON(data []byte) error {
	type request Request
	var decoded request
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	extra, err := extractExtra(data, requestFields)
	if err != nil {
		return err
	}
	decoded.Extra = extra
	*r = Request(decoded)
	return nil
}
