package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ray-remotestate/caferp/models"
)

type IService interface {
	Create(ctx context.Context, name string, role models.Role) (*models.User, error)
	Get(ctx context.Context, id uuid.UUID) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	ChangeRole(ctx context.Context, id uuid.UUID, role models.Role) (*models.User, error)
}

func NewService(db *sqlx.DB) IService {
	return &service{db: db}
}

type service struct {
	db *sqlx.DB
}

func (s *service) Create(ctx context.Context, name string, role models.Role) (*models.User, error) {
	if name == "" {
		return nil, models.ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if role == "" {
		role = models.RoleCustomer
	}
	if !role.Valid() {
		return nil, models.ValidationError{Field: "role", Reason: fmt.Sprintf("unknown role %q", role)}
	}

	var id uuid.UUID
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO users (name, role) VALUES ($1, $2) RETURNING id`,
		name, role,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return s.Get(ctx, id)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	err := s.db.GetContext(ctx, &u,
		`SELECT id, name, role, created_at FROM users WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.NotFoundError{Entity: "user", ID: id.String()}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &u, nil
}

func (s *service) List(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	err := s.db.SelectContext(ctx, &users,
		`SELECT id, name, role, created_at FROM users ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// ChangeRole updates the one mutable user attribute.
func (s *service) ChangeRole(ctx context.Context, id uuid.UUID, role models.Role) (*models.User, error) {
	if !role.Valid() {
		return nil, models.ValidationError{Field: "role", Reason: fmt.Sprintf("unknown role %q", role)}
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET role = $1 WHERE id = $2`, role, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update role: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, models.NotFoundError{Entity: "user", ID: id.String()}
	}
	return s.Get(ctx, id)
}
