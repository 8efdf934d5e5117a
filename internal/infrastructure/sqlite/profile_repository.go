package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/sahayak/sahayak-sync/internal/domain/profile"
)

// ProfileRepository implements profile.Store: the device keeps a single
// profile row.
type ProfileRepository struct {
	db *sql.DB
}

func NewProfileRepository(store *Store) *ProfileRepository {
	return &ProfileRepository{db: store.DB()}
}

func (r *ProfileRepository) Get(ctx context.Context) (*profile.Profile, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT name, age, gender, location, voice_profile_created, updated_at
		FROM user_profile
		WHERE id=1
	`)
	var p profile.Profile
	var voice int
	var updatedAt string
	if err := row.Scan(&p.Name, &p.Age, &p.Gender, &p.Location, &voice, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, profile.ErrNotFound
		}
		return nil, err
	}
	p.VoiceProfileCreated = voice == 1
	if t, err := time.Parse(time.RFC3339Nano, updatedAt); err == nil {
		p.UpdatedAt = t
	}
	return &p, nil
}

func (r *ProfileRepository) Save(ctx context.Context, p *profile.Profile) error {
	voice := 0
	if p.VoiceProfileCreated {
		voice = 1
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_profile (id, name, age, gender, location, voice_profile_created, updated_at)
		VALUES (1,?,?,?,?,?,?)
		ON CONFLICT(id) DO UPDATE SET
			name=excluded.name,
			age=excluded.age,
			gender=excluded.gender,
			location=excluded.location,
			voice_profile_created=excluded.voice_profile_created,
			updated_at=excluded.updated_at
	`, p.Name, p.Age, p.Gender, p.Location, voice, time.Now().UTC().Format(time.RFC3339Nano))
	return err
}
