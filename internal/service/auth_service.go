package service

import (
	"alcyxob/fitness-programs/internal/config"
	"alcyxob/fitness-programs/internal/domain"
	"alcyxob/fitness-programs/internal/repository"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

// Caller is the verified identity behind a request.
type Caller struct {
	ID        primitive.ObjectID
	Role      domain.Role
	TokenID   string    // jti, used for revocation
	ExpiresAt time.Time // token expiry
}

type AuthService interface {
	Register(ctx context.Context, email, password string, role domain.Role) (*domain.User, error)
	Login(ctx context.Context, email, password string) (token string, user *domain.User, err error)
	VerifyToken(ctx context.Context, token string) (*Caller, error)
	Logout(ctx context.Context, caller *Caller) error
}

// authService implements the AuthService interface.
type authService struct {
	userRepo      repository.UserRepository
	revocations   repository.TokenRevocationRepository
	validate      *validator.Validate
	jwtSecret     []byte
	jwtExpiration time.Duration
	jwtIssuer     string
	now           func() time.Time
}

// NewAuthService creates a new instance of authService.
func NewAuthService(userRepo repository.UserRepository, revocations repository.TokenRevocationRepository, cfg config.JWTConfig) AuthService {
	if cfg.Secret == "" {
		panic("JWT secret cannot be empty") // Critical configuration
	}
	if cfg.Expiration <= 0 {
		cfg.Expiration = time.Hour
	}
	return &authService{
		userRepo:      userRepo,
		revocations:   revocations,
		validate:      validator.New(),
		jwtSecret:     []byte(cfg.Secret),
		jwtExpiration: cfg.Expiration,
		jwtIssuer:     cfg.Issuer,
		now:           time.Now,
	}
}

// Register handles new user registration.
func (s *authService) Register(ctx context.Context, email, password string, role domain.Role) (*domain.User, error) {
	email = normalizeEmail(email)
	if role == "" {
		role = domain.RoleUser
	}

	verr := &ValidationError{}
	if s.validate.Var(email, "required,email") != nil {
		verr.add("email", "Please include a valid email")
	}
	if len(password) < minPasswordLength {
		verr.add("password", fmt.Sprintf("Password must be at least %d characters", minPasswordLength))
	}
	if !role.Valid() {
		verr.add("role", `Role must be either "trainer" or "user"`)
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	_, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil {
		return nil, ErrConflict
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup user by email: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: string(hashedPassword),
		Role:         role,
	}
	userID, err := s.userRepo.Create(ctx, user)
	if err != nil {
		// Lost a race with a concurrent registration of the same email
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	user.ID = userID

	user.PasswordHash = ""
	return user, nil
}

// Login handles user authentication and JWT generation.
func (s *authService) Login(ctx context.Context, email, password string) (token string, user *domain.User, err error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return "", nil, ErrInvalidCredentials
	}

	user, err = s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("lookup user by email: %w", err)
	}

	if err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err = s.generateJWT(user)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}

	user.PasswordHash = ""
	return token, user, nil
}

// VerifyToken validates signature, expiry and revocation of a bearer token.
func (s *authService) VerifyToken(ctx context.Context, tokenString string) (*Caller, error) {
	if tokenString == "" {
		return nil, ErrUnauthenticated
	}

	claims := &jwtClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrUnauthenticated
	}
	if claims.ExpiresAt == nil || claims.ID == "" || !claims.Role.Valid() {
		return nil, ErrUnauthenticated
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil, ErrUnauthenticated
	}

	revoked, err := s.revocations.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("check token revocation: %w", err)
	}
	if revoked {
		return nil, ErrUnauthenticated
	}

	return &Caller{
		ID:        userID,
		Role:      claims.Role,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Logout revokes the caller's token for the rest of its lifetime.
func (s *authService) Logout(ctx context.Context, caller *Caller) error {
	if caller == nil || caller.TokenID == "" {
		return ErrUnauthenticated
	}
	if err := s.revocations.Revoke(ctx, caller.TokenID, caller.ExpiresAt); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// --- JWT Helper ---

// jwtClaims defines the structure of the JWT payload.
type jwtClaims struct {
	UserID string      `json:"id"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// generateJWT creates a new JWT token for the given user.
func (s *authService) generateJWT(user *domain.User) (string, error) {
	now := s.now()
	claims := &jwtClaims{
		UserID: user.ID.Hex(),
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID.Hex(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtExpiration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.jwtIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
