package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/dmarkhas/driftchat/internal/core"
	"github.com/dmarkhas/driftchat/internal/media"
	"github.com/dmarkhas/driftchat/internal/store"
)

// minPasswordLen is the minimum accepted password length.
const minPasswordLen = 6

// Service provides signup, login and profile operations. Domain failures
// come back as *core.Error so the transport can map them to statuses.
type Service struct {
	store     store.UserStore
	uploader  media.Uploader
	jwtConfig *JWTConfig
}

// NewService creates a new authentication service.
func NewService(userStore store.UserStore, uploader media.Uploader, jwtConfig *JWTConfig) *Service {
	return &Service{
		store:     userStore,
		uploader:  uploader,
		jwtConfig: jwtConfig,
	}
}

// Signup creates a new user and returns it with a session token.
func (s *Service) Signup(ctx context.Context, fullName, email, password string) (*store.User, string, error) {
	fullName = strings.TrimSpace(fullName)
	email = strings.ToLower(strings.TrimSpace(email))

	if fullName == "" || email == "" || password == "" {
		return nil, "", core.ValidationError(core.ErrCodeMissingFields, "please fill all the fields")
	}
	if len(password) < minPasswordLen {
		return nil, "", core.ValidationError(core.ErrCodeShortPassword,
			fmt.Sprintf("password must be at least %d characters long", minPasswordLen))
	}

	hashedPassword, err := HashPassword(password)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user := &store.User{
		ID:           uuid.NewString(),
		FullName:     fullName,
		Email:        email,
		PasswordHash: hashedPassword,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrEmailTaken) {
			return nil, "", core.ConflictError(core.ErrCodeEmailTaken, "email already exists")
		}
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	token, err := GenerateToken(s.jwtConfig, user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("generate token: %w", err)
	}

	return user, token, nil
}

// Login validates credentials and returns the user with a session token.
// Both unknown email and wrong password come back as auth errors; the
// status is the same 400 either way, only the message differs.
func (s *Service) Login(ctx context.Context, email, password string) (*store.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, "", core.AuthError(core.ErrCodeUserNotFound, "user not found")
		}
		return nil, "", fmt.Errorf("get user: %w", err)
	}

	if err := ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", core.AuthError(core.ErrCodeBadCreds, "invalid credentials")
	}

	token, err := GenerateToken(s.jwtConfig, user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("generate token: %w", err)
	}

	return user, token, nil
}

// GetUser loads the authenticated user for /auth/check.
func (s *Service) GetUser(ctx context.Context, userID string) (*store.User, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, core.AuthError(core.ErrCodeUserNotFound, "user not found")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// UpdateProfilePic hands the image to the media collaborator and stores
// the resulting URL. ProfilePic is the only mutable identity field.
func (s *Service) UpdateProfilePic(ctx context.Context, userID, profilePic string) (*store.User, error) {
	if profilePic == "" {
		return nil, core.ValidationError(core.ErrCodeMissingFields, "profile picture is required")
	}

	url, err := s.uploader.Upload(ctx, profilePic)
	if err != nil {
		if errors.Is(err, media.ErrNotImage) || errors.Is(err, media.ErrTooLarge) {
			return nil, core.ValidationError(core.ErrCodeBadImage, err.Error())
		}
		return nil, fmt.Errorf("upload profile pic: %w", err)
	}

	user, err := s.store.UpdateProfilePic(ctx, userID, url)
	if err != nil {
		return nil, fmt.Errorf("update profile pic: %w", err)
	}
	return user, nil
}

// ValidateToken validates a JWT token and returns the claims.
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	return ValidateToken(s.jwtConfig, tokenString)
}
