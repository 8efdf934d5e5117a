package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sahayak/sahayak-sync/internal/domain/profile"
)

// UserRepository implements profile.UserRepository.
type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Get(ctx context.Context, userID string) (*profile.Profile, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, age, gender, location, voice_profile_created, updated_at
		FROM users
		WHERE id=$1
	`, userID)
	var p profile.Profile
	if err := row.Scan(&p.UserID, &p.Name, &p.Age, &p.Gender, &p.Location, &p.VoiceProfileCreated, &p.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, profile.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *UserRepository) Create(ctx context.Context, p *profile.Profile) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (id, name, age, gender, location, voice_profile_created, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (id) DO NOTHING
	`, p.UserID, p.Name, p.Age, p.Gender, p.Location, p.VoiceProfileCreated, time.Now().UTC())
	return err
}

func (r *UserRepository) UpdatePartial(ctx context.Context, userID string, u profile.Update) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users SET
			name = COALESCE($1, name),
			age = COALESCE($2, age),
			gender = COALESCE($3, gender),
			location = COALESCE($4, location),
			voice_profile_created = COALESCE($5, voice_profile_created),
			updated_at = NOW()
		WHERE id=$6
	`, u.Name, u.Age, u.Gender, u.Location, u.VoiceProfileCreated, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return profile.ErrNotFound
	}
	return nil
}
