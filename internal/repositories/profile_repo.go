package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/BradenHooton/scribe/internal/database"
	"github.com/BradenHooton/scribe/internal/models"
	"github.com/jackc/pgx/v5"
)

// ProfileRepository manages the single "about me" row
type ProfileRepository struct {
	db *database.DB
}

func NewProfileRepository(db *database.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Get returns the profile, or models.ErrNotFound before one has been saved.
func (r *ProfileRepository) Get(ctx context.Context) (*models.Profile, error) {
	query := `SELECT id, avatar, nickname, bio, email FROM profile ORDER BY id LIMIT 1`

	var p models.Profile
	err := r.db.Pool.QueryRow(ctx, query).Scan(&p.ID, &p.Avatar, &p.Nickname, &p.Bio, &p.Email)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &p, nil
}

// Save updates the existing row or inserts the first one. The row is
// locked for the duration so two saves cannot both insert.
func (r *ProfileRepository) Save(ctx context.Context, p *models.Profile) (*models.Profile, error) {
	saved := &models.Profile{}

	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `LOCK TABLE profile IN SHARE ROW EXCLUSIVE MODE`); err != nil {
			return err
		}

		var id int64
		err := tx.QueryRow(ctx, `SELECT id FROM profile ORDER BY id LIMIT 1`).Scan(&id)
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return tx.QueryRow(ctx, `
				INSERT INTO profile (avatar, nickname, bio, email)
				VALUES ($1, $2, $3, $4)
				RETURNING id, avatar, nickname, bio, email`,
				p.Avatar, p.Nickname, p.Bio, p.Email,
			).Scan(&saved.ID, &saved.Avatar, &saved.Nickname, &saved.Bio, &saved.Email)
		case err != nil:
			return err
		}

		return tx.QueryRow(ctx, `
			UPDATE profile SET avatar = $2, nickname = $3, bio = $4, email = $5
			WHERE id = $1
			RETURNING id, avatar, nickname, bio, email`,
			id, p.Avatar, p.Nickname, p.Bio, p.Email,
		).Scan(&saved.ID, &saved.Avatar, &saved.Nickname, &saved.Bio, &saved.Email)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", database.MapPostgresError(err))
	}
	return saved, nil
}
