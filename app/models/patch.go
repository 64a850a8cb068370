package models

import (
	"encoding/json"
	"errors"
	"sort"
)

// ErrEmptyPatch is returned when an update body carries no fields.
var ErrEmptyPatch = errors.New("nothing to update")

// PostPatch is a set of Post fields to overwrite. Fields absent from the
// decoded body are left untouched.
type PostPatch struct {
	Post   Post
	fields map[string]json.RawMessage
}

// DecodePostPatch decodes an update body. The identifier is never patchable.
func DecodePostPatch(data []byte) (*PostPatch, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	delete(fields, "_id")
	if len(fields) == 0 {
		return nil, ErrEmptyPatch
	}

	patch := &PostPatch{fields: fields}
	if err := json.Unmarshal(data, &patch.Post); err != nil {
		return nil, err
	}
	return patch, nil
}

// Fields returns the JSON names of the fields being overwritten, sorted.
func (p *PostPatch) Fields() []string {
	names := make([]string, 0, len(p.fields))
	for name := range p.fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether the patch overwrites the named JSON field.
func (p *PostPatch) Has(field string) bool {
	_, ok := p.fields[field]
	return ok
}

// Validate checks only the declared fields present in the patch.
func (p *PostPatch) Validate() error {
	var names []string
	for field := range p.fields {
		if name, ok := postFields[field]; ok {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return nil
	}
	return validate.StructPartial(&p.Post, names...)
}

// ApplyTo overwrites the patched fields of post in place, keeping its id.
func (p *PostPatch) ApplyTo(post *Post) error {
	current, err := json.Marshal(post)
	if err != nil {
		return err
	}
	var merged map[string]json.RawMessage
	if err := json.Unmarshal(current, &merged); err != nil {
		return err
	}
	for field, value := range p.fields {
		merged[field] = value
	}

	data, err := json.Marshal(merged)
	if err != nil {
		return err
	}
	var updated Post
	if err := json.Unmarshal(data, &updated); err != nil {
		return err
	}
	updated.ID = post.ID
	*post = updated
	return nil
}
