package models

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// ErrInvalidID is returned for identifiers that are not 24-character hex ObjectIDs.
var ErrInvalidID = errors.New("invalid id")

// ParseID converts a hex identifier into an ObjectID.
func ParseID(id string) (bson.ObjectID, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return bson.NilObjectID, ErrInvalidID
	}
	return oid, nil
}

// jsonFieldNames maps the JSON names of t's fields to their Go field names.
func jsonFieldNames(t reflect.Type) map[string]string {
	names := make(map[string]string, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, _, _ := strings.Cut(tag, ",")
		if name == "" {
			name = field.Name
		}
		names[name] = field.Name
	}
	return names
}

// marshalWithExtra encodes base and folds the free-form fields into the same
// object. Declared fields win over extras with the same name.
func marshalWithExtra(base any, extra map[string]any) ([]byte, error) {
	data, err := json.Marshal(base)
	if err != nil || len(extra) == 0 {
		return data, err
	}

	var merged map[string]json.RawMessage
	if err := json.Unmarshal(data, &merged); err != nil {
		return nil, err
	}
	for key, value := range extra {
		if _, declared := merged[key]; declared {
			continue
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		merged[key] = raw
	}
	return json.Marshal(merged)
}

// extractExtra returns the members of a JSON object that are not declared fields.
func extractExtra(data []byte, declared map[string]string) (map[string]any, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	var extra map[string]any
	for key, value := range raw {
		if _, ok := declared[key]; ok {
			continue
		}
		var decoded any
		if err := json.Unmarshal(value, &decoded); err != nil {
			return nil, err
		}
		if extra == nil {
			extra = make(map[string]any)
		}
		extra[key] = decoded
	}
	return extra, nil
}
