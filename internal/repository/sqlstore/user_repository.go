package sqlstore

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/certbloom/certbloom/internal/db"
	"github.com/certbloom/certbloom/internal/logger"
	"github.com/certbloom/certbloom/internal/models"
	"github.com/certbloom/certbloom/internal/repository"
)

type userRepository struct {
	db *db.DB
}

// NewUserRepository creates a new UserRepository implementation
func NewUserRepository(conn *db.DB) repository.UserRepository {
	return &userRepository{db: conn}
}

func (r *userRepository) Upsert(ctx context.Context, u models.User) (*models.User, error) {
	log := logger.FromContext(ctx).WithPrefix("user_repo")
	log.Debug("upserting user: id=%s", u.ID)

	query, args, err := r.db.Builder().
		Insert("users").
		Columns("id", "display_name", "created_at").
		Values(u.ID, u.DisplayName, u.CreatedAt.UTC()).
		Suffix("ON CONFLICT (id) DO UPDATE SET display_name = excluded.display_name").
		ToSql()
	if err != nil {
		return nil, err
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		log.Error("failed to upsert user: %v", err)
		return nil, err
	}
	return r.Get(ctx, u.ID)
}

func (r *userRepository) Get(ctx context.Context, id string) (*models.User, error) {
	log := logger.FromContext(ctx).WithPrefix("user_repo")
	log.Debug("getting user: id=%s", id)

	query, args, err := r.db.Builder().
		Select("id", "display_name", "created_at").
		From("users").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, err
	}
	var u models.User
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&u.ID, &u.DisplayName, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("user not found: id=%s", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get user: %v", err)
		return nil, err
	}
	return &u, nil
}
