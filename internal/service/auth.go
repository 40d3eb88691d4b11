package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pageza/recipe-catalog/backend/internal/authz"
	"github.com/pageza/recipe-catalog/backend/internal/model"
	"github.com/pageza/recipe-catalog/backend/internal/types"
)

// TokenTTL is the lifetime of issued access tokens.
const TokenTTL = 24 * time.Hour

type AuthService struct {
	db        *gorm.DB
	jwtSecret string
}

func NewAuthService(db *gorm.DB, jwtSecret string) *AuthService {
	return &AuthService{
		db:        db,
		jwtSecret: jwtSecret,
	}
}

// Register creates a regular user and returns an access token for it.
func (s *AuthService) Register(ctx context.Context, email, username, password string) (*model.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var existing int64
	if err := s.db.WithContext(ctx).Model(&model.User{}).
		Where("email = ? OR username = ?", email, username).
		Count(&existing).Error; err != nil {
		return nil, "", fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing > 0 {
		return nil, "", fmt.Errorf("%w: user already exists", ErrConflict)
	}

	user, err := s.createUser(ctx, email, username, password, "")
	if err != nil {
		return nil, "", err
	}

	token, err := s.GenerateToken(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login checks the credentials and returns an access token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user model.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.GenerateToken(&user)
	if err != nil {
		return nil, "", err
	}
	return &user, token, nil
}

// EnsureAdmin returns the user with email, promoting it to administrator, or
// creates a new administrator when none exists. password is only used when
// creating.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user model.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	switch {
	case err == nil:
		if !user.IsAdmin() {
			if err := s.db.WithContext(ctx).Model(&user).Update("role", model.RoleAdministrator).Error; err != nil {
				return nil, fmt.Errorf("failed to promote user: %w", err)
			}
			log.Info().Str("component", "auth").Str("user_id", user.ID.String()).Msg("user promoted to administrator")
		}
		return &user, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		if password == "" {
			return nil, NewValidationError("password", "required to create the administrator")
		}
		username := strings.SplitN(email, "@", 2)[0]
		return s.createUser(ctx, email, username, password, model.RoleAdministrator)
	default:
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
}

func (s *AuthService) createUser(ctx context.Context, email, username, password, role string) (*model.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Email:        email,
		Username:     username,
		PasswordHash: string(hashedPassword),
		Role:         role,
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	log.Info().Str("component", "auth").Str("user_id", user.ID.String()).Msg("user created")
	return user, nil
}

// GenerateToken issues an HS256 access token for user.
func (s *AuthService) GenerateToken(user *model.User) (string, error) {
	now := time.Now()
	claims := &types.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
		UserID:   user.ID,
		Username: user.Username,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and verifies tokenString.
func (s *AuthService) ValidateToken(tokenString string) (*types.TokenClaims, error) {
	claims := &types.TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.jwtSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.UserID == uuid.Nil {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// GetUserByID returns the user or ErrNotFound.
func (s *AuthService) GetUserByID(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &user, nil
}

// CurrentUserID implements IdentityLookup.
func (s *AuthService) CurrentUserID(p authz.Principal) (uuid.UUID, bool) {
	if !p.Authenticated || p.UserID == uuid.Nil {
		return uuid.Nil, false
	}
	return p.UserID, true
}

// IsAdmin implements IdentityLookup by reading the user's role from the
// store. Unknown users are not administrators.
func (s *AuthService) IsAdmin(ctx context.Context, p authz.Principal) (bool, error) {
	if !p.Authenticated {
		return false, nil
	}
	user, err := s.GetUserByID(ctx, p.UserID)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return user.IsAdmin(), nil
}
