// Package auth is the marketplace authentication provider: accounts in Postgres,
// bcrypt password hashes, HS256 session tokens and Redis-backed sessions.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"car-mzansi-connect/internal/common/logger"
	"car-mzansi-connect/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrWeakPassword       = errors.New("auth: password must be at least 8 characters")
	ErrInvalidToken       = errors.New("auth: invalid or expired token")
	ErrMissingFields      = errors.New("auth: name and email are required")
)

const MinPasswordLength = 8

// SignUpRequest is a new account. Phone is optional.
type SignUpRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone,omitempty"`
}

type Options struct {
	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int
}

type Provider struct {
	users    UserRepository
	sessions SessionStore
	secret   []byte
	ttl      time.Duration
	cost     int
	now      func() time.Time
	logger   logger.Logger
}

func NewProvider(users UserRepository, sessions SessionStore, opts Options, log logger.Logger) *Provider {
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 24 * time.Hour
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	return &Provider{
		users:    users,
		sessions: sessions,
		secret:   []byte(opts.JWTSecret),
		ttl:      opts.TokenTTL,
		cost:     opts.BcryptCost,
		now:      time.Now,
		logger:   log.WithFields(map[string]interface{}{"component": "auth"}),
	}
}

// SignUp creates the account and signs it in.
func (p *Provider) SignUp(ctx context.Context, req SignUpRequest) (models.Session, error) {
	if len(req.Password) < MinPasswordLength {
		return models.Session{}, ErrWeakPassword
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" {
		return models.Session{}, ErrMissingFields
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), p.cost)
	if err != nil {
		return models.Session{}, fmt.Errorf("auth: hash password: %w", err)
	}

	user, err := p.users.CreateUser(ctx, CreateUserParams{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(req.Name),
		Email:        req.Email,
		Phone:        strings.TrimSpace(req.Phone),
		PasswordHash: string(hash),
	})
	if err != nil {
		return models.Session{}, err
	}

	p.logger.Info("Account created", map[string]interface{}{"userId": user.ID})
	return p.startSession(ctx, user)
}

func (p *Provider) SignIn(ctx context.Context, email, password string) (models.Session, error) {
	rec, err := p.users.GetByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		return models.Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.Session{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(rec.PasswordHash), []byte(password)); err != nil {
		return models.Session{}, ErrInvalidCredentials
	}
	return p.startSession(ctx, rec.User)
}

// SignOut ends the session behind token. Unknown or expired tokens are a no-op.
func (p *Provider) SignOut(ctx context.Context, token string) error {
	claims, err := p.parse(token)
	if err != nil {
		return nil
	}
	if err := p.sessions.Delete(ctx, claims.ID); err != nil {
		return err
	}
	p.logger.Info("Signed out", map[string]interface{}{"userId": claims.Subject})
	return nil
}

// Current returns the user signed in with token.
func (p *Provider) Current(ctx context.Context, token string) (models.User, error) {
	sess, err := p.session(ctx, token)
	if err != nil {
		return models.User{}, err
	}
	return sess.User, nil
}

func (p *Provider) UpdateProfile(ctx context.Context, token string, patch models.ProfileUpdate) (models.User, error) {
	sess, err := p.session(ctx, token)
	if err != nil {
		return models.User{}, err
	}

	user, err := p.users.UpdateProfile(ctx, sess.UserID, patch)
	if err != nil {
		return models.User{}, err
	}

	sess.User = user
	if err := p.sessions.Save(ctx, sess); err != nil {
		p.logger.WithError(err).Warn("Profile updated but session not refreshed", map[string]interface{}{"userId": user.ID})
	}
	return user, nil
}

func (p *Provider) session(ctx context.Context, token string) (models.Session, error) {
	claims, err := p.parse(token)
	if err != nil {
		return models.Session{}, err
	}
	sess, err := p.sessions.Get(ctx, claims.ID)
	if errors.Is(err, ErrSessionNotFound) {
		return models.Session{}, ErrInvalidToken
	}
	if err != nil {
		return models.Session{}, err
	}
	if sess.IsExpired(p.now()) || sess.UserID != claims.Subject {
		return models.Session{}, ErrInvalidToken
	}
	sess.Token = token
	return sess, nil
}

func (p *Provider) startSession(ctx context.Context, user models.User) (models.Session, error) {
	now := p.now().UTC()
	sess := models.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		User:      user,
		CreatedAt: now,
		ExpiresAt: now.Add(p.ttl),
	}

	token, err := p.sign(sess)
	if err != nil {
		return models.Session{}, fmt.Errorf("auth: sign token: %w", err)
	}
	if err := p.sessions.Save(ctx, sess); err != nil {
		return models.Session{}, err
	}

	sess.Token = token
	return sess, nil
}

func (p *Provider) sign(sess models.Session) (string, error) {
	claims := jwt.RegisteredClaims{
		ID:        sess.ID,
		Subject:   sess.UserID,
		IssuedAt:  jwt.NewNumericDate(sess.CreatedAt),
		ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
}

func (p *Provider) parse(token string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return p.secret, nil
	}, jwt.WithTimeFunc(p.now))
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
