package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/vncsmyrnk/organs/internal/core/domain"
	"github.com/vncsmyrnk/organs/internal/core/ports"
	"golang.org/x/crypto/bcrypt"
)

const (
	DefaultTokenTTL = time.Hour
	bcryptCost      = 10
)

// Claims is the signed session payload.
type Claims struct {
	UserID   string `json:"_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

type AuthService struct {
	userRepo  ports.UserRepository
	jwtSecret []byte
	tokenTTL  time.Duration
	opts      Options
}

func NewAuthService(userRepo ports.UserRepository, jwtSecret []byte, tokenTTL time.Duration, opts Options) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = DefaultTokenTTL
	}
	return &AuthService{
		userRepo:  userRepo,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		opts:      opts.withDefaults(),
	}
}

func (s *AuthService) SignUp(ctx context.Context, input ports.SignUpInput) (*domain.User, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(input.Email)
	if username == "" || email == "" || input.Password == "" {
		return nil, domain.ErrMissingSignUpFields
	}

	existing, err := withStore(ctx, s.opts.StoreTimeout, func(ctx context.Context) (*domain.User, error) {
		return s.userRepo.GetByEmail(ctx, email)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if existing != nil {
		return nil, domain.ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		ProfileImage: input.ProfileImage,
		Organs:       []uuid.UUID{},
		CreatedAt:    s.opts.Now(),
	}

	// A concurrent sign-up with the same email surfaces here as ErrEmailTaken.
	err = withStoreErr(ctx, s.opts.StoreTimeout, func(ctx context.Context) error {
		return s.userRepo.Create(ctx, user)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.opts.Recorder.SignedUp()
	zerolog.Ctx(ctx).Info().Stringer("user_id", user.ID).Msg("user signed up")
	return user, nil
}

func (s *AuthService) SignIn(ctx context.Context, email, password string) (string, error) {
	user, err := withStore(ctx, s.opts.StoreTimeout, func(ctx context.Context) (*domain.User, error) {
		return s.userRepo.GetByEmail(ctx, strings.TrimSpace(email))
	})
	if err != nil {
		return "", fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		s.opts.Recorder.SignedIn(false)
		return "", domain.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.opts.Recorder.SignedIn(false)
		return "", domain.ErrInvalidCredentials
	}

	token, err := s.generateAccessToken(user)
	if err != nil {
		return "", fmt.Errorf("failed to generate access token: %w", err)
	}

	s.opts.Recorder.SignedIn(true)
	return token, nil
}

// Authenticate verifies an HS256 token and returns the identity it was issued to.
func (s *AuthService) Authenticate(_ context.Context, tokenString string) (uuid.UUID, error) {
	if tokenString == "" {
		return uuid.Nil, domain.ErrMissingToken
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return s.jwtSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.opts.Now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, fmt.Errorf("%w: token expired", domain.ErrInvalidToken)
		}
		return uuid.Nil, domain.ErrInvalidToken
	}

	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return uuid.Nil, domain.ErrInvalidToken
	}
	return id, nil
}

func (s *AuthService) generateAccessToken(user *domain.User) (string, error) {
	now := s.opts.Now()
	claims := Claims{
		UserID:   user.ID.String(),
		Username: user.Username,
		Email:    user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}
