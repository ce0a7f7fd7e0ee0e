package models

import (
	"slices"
	"time"
)

// UserContact is the per-channel contact a flow executes against.
type UserContact struct {
	ID            string         `json:"id" validate:"required"`
	Name          string         `json:"name,omitempty"`
	Tags          []string       `json:"tags,omitempty"`
	Fields        map[string]any `json:"fields,omitempty"`
	IsFollower    bool           `json:"is_follower,omitempty"`
	LastInboundAt *time.Time     `json:"last_inbound_at,omitempty"`
}

// HasTag reports whether the contact carries the tag.
func (u *UserContact) HasTag(tag string) bool {
	return slices.Contains(u.Tags, tag)
}

// AddTag tags the contact, ignoring duplicates.
func (u *UserContact) AddTag(tag string) {
	if !u.HasTag(tag) {
		u.Tags = append(u.Tags, tag)
	}
}
