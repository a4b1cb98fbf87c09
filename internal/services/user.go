// Package services contains the application logic between the HTTP
// handlers and the store.
package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/haruplan/haruplan/internal/auth"
	"github.com/haruplan/haruplan/internal/model"
	"github.com/haruplan/haruplan/internal/store"
)

// UserService handles registration and credential checks.
type UserService struct {
	store           store.Store
	defaultTimeZone string
}

func NewUserService(s store.Store, defaultTimeZone string) *UserService {
	return &UserService{store: s, defaultTimeZone: defaultTimeZone}
}

// RegisterRequest carries the fields accepted at registration.
type RegisterRequest struct {
	Username    string  `json:"username"`
	Email       string  `json:"email"`
	Password    string  `json:"password"`
	DisplayName *string `json:"displayName,omitempty"`
	TimeZone    string  `json:"timeZone,omitempty"`
}

// Register validates the request, hashes the password and creates the user.
func (s *UserService) Register(ctx context.Context, req RegisterRequest) (*model.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if req.Username == "" || req.Email == "" {
		return nil, errors.Wrap(model.ErrValidation, "username and email are required")
	}
	if len(req.Password) < 8 {
		return nil, errors.Wrap(model.ErrValidation, "password must be at least 8 characters")
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	tz := req.TimeZone
	if tz == "" {
		tz = s.defaultTimeZone
	}
	return s.store.Users().Create(ctx, &model.User{
		UserID:       uuid.New().String(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		DisplayName:  req.DisplayName,
		TimeZone:     tz,
	})
}

// Authenticate checks a username/password pair and returns the user.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	u, err := s.store.Users().GetByUsername(ctx, username)
	if err != nil {
		// Do not leak whether the username exists.
		return nil, auth.ErrBadCredentials
	}
	if !u.IsActive || !auth.CheckPassword(u.PasswordHash, password) {
		return nil, auth.ErrBadCredentials
	}
	return u, nil
}

// GetUser returns a user by ID.
func (s *UserService) GetUser(ctx context.Context, userID string) (*model.User, error) {
	return s.store.Users().GetByID(ctx, userID)
}
