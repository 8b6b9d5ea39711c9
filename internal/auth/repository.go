package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"car-mzansi-connect/internal/models"

	"github.com/lib/pq"
)

var (
	ErrUserNotFound = errors.New("auth: user not found")
	ErrEmailTaken   = errors.New("auth: email already registered")
)

// CreateUserParams is a new account with its password already hashed.
type CreateUserParams struct {
	ID           string
	Name         string
	Email        string
	Phone        string
	PasswordHash string
}

// UserRecord is a user together with its stored password hash.
type UserRecord struct {
	models.User
	PasswordHash string
}

type UserRepository interface {
	CreateUser(ctx context.Context, p CreateUserParams) (models.User, error)
	GetByEmail(ctx context.Context, email string) (UserRecord, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	UpdateProfile(ctx context.Context, id string, patch models.ProfileUpdate) (models.User, error)
}

// PostgresUserRepository stores accounts in the users table.
type PostgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

const uniqueViolation = "23505"

func (r *PostgresUserRepository) CreateUser(ctx context.Context, p CreateUserParams) (models.User, error) {
	const query = `
		INSERT INTO users (id, name, email, phone, password_hash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`

	var createdAt time.Time
	err := r.db.QueryRowContext(ctx, query, p.ID, p.Name, normalizeEmail(p.Email), p.Phone, p.PasswordHash).Scan(&createdAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return models.User{}, ErrEmailTaken
		}
		return models.User{}, fmt.Errorf("auth: insert user: %w", err)
	}

	return models.User{
		ID:        p.ID,
		Name:      p.Name,
		Email:     normalizeEmail(p.Email),
		Phone:     p.Phone,
		CreatedAt: createdAt,
	}, nil
}

func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (UserRecord, error) {
	const query = `
		SELECT id, name, email, phone, created_at, password_hash
		FROM users WHERE email = $1`

	var rec UserRecord
	err := r.db.QueryRowContext(ctx, query, normalizeEmail(email)).Scan(
		&rec.ID, &rec.Name, &rec.Email, &rec.Phone, &rec.CreatedAt, &rec.PasswordHash,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return UserRecord{}, ErrUserNotFound
	}
	if err != nil {
		return UserRecord{}, fmt.Errorf("auth: get user by email: %w", err)
	}
	return rec, nil
}

func (r *PostgresUserRepository) GetByID(ctx context.Context, id string) (models.User, error) {
	const query = `SELECT id, name, email, phone, created_at FROM users WHERE id = $1`

	var u models.User
	err := r.db.QueryRowContext(ctx, query, id).Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("auth: get user by id: %w", err)
	}
	return u, nil
}

// UpdateProfile applies the non-nil fields of patch.
func (r *PostgresUserRepository) UpdateProfile(ctx context.Context, id string, patch models.ProfileUpdate) (models.User, error) {
	const query = `
		UPDATE users
		SET name = COALESCE($2, name), phone = COALESCE($3, phone), updated_at = NOW()
		WHERE id = $1
		RETURNING id, name, email, phone, created_at`

	var u models.User
	err := r.db.QueryRowContext(ctx, query, id, nullable(patch.Name), nullable(patch.Phone)).
		Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("auth: update profile: %w", err)
	}
	return u, nil
}

func nullable(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
