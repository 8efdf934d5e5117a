package profile

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when the target user or profile does not exist.
var ErrNotFound = errors.New("user not found")

// Profile holds the assisted user's details. On the device it is a
// single row; on the server it is keyed by user id.
type Profile struct {
	UserID              string    `json:"userId,omitempty"`
	Name                string    `json:"name"`
	Age                 string    `json:"age"`
	Gender              string    `json:"gender"`
	Location            string    `json:"location"`
	VoiceProfileCreated bool      `json:"voiceProfileCreated"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

// Update is a partial profile change; nil fields are left untouched.
type Update struct {
	Name                *string `json:"name,omitempty"`
	Age                 *string `json:"age,omitempty"`
	Gender              *string `json:"gender,omitempty"`
	Location            *string `json:"location,omitempty"`
	VoiceProfileCreated *bool   `json:"voiceProfileCreated,omitempty"`
}

// Apply merges the update into the profile.
func (p *Profile) Apply(u Update) {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Age != nil {
		p.Age = *u.Age
	}
	if u.Gender != nil {
		p.Gender = *u.Gender
	}
	if u.Location != nil {
		p.Location = *u.Location
	}
	if u.VoiceProfileCreated != nil {
		p.VoiceProfileCreated = *u.VoiceProfileCreated
	}
}

// UserRepository is the server-side user profile store.
type UserRepository interface {
	Get(ctx context.Context, userID string) (*Profile, error)
	Create(ctx context.Context, p *Profile) error
	// UpdatePartial applies the non-nil fields; returns ErrNotFound when
	// the user does not exist.
	UpdatePartial(ctx context.Context, userID string, u Update) error
}

// Store is the device-side single-row profile store.
type Store interface {
	Get(ctx context.Context) (*Profile, error)
	Save(ctx context.Context, p *Profile) error
}
