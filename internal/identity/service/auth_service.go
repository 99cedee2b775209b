package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	rtdomain "eventflow/auth-service/internal/refreshtoken/domain"
	"eventflow/auth-service/internal/revocation"
	roledomain "eventflow/auth-service/internal/role/domain"
	"eventflow/auth-service/internal/security"
	userdomain "eventflow/auth-service/internal/user/domain"
)

// UserInfo is the public projection of a user returned with tokens.
type UserInfo struct {
	ID        string
	Email     string
	FirstName string
	LastName  string
	Role      string
}

// AuthResult holds the outcome of Register, Login, or Refresh.
type AuthResult struct {
	AccessToken   string
	AccessTokenID string
	RefreshToken  string
	ExpiresAt     time.Time // access token expiry
	User          UserInfo
}

// UserRepo is the minimal user repository needed by the auth service.
type UserRepo interface {
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
	GetByEmail(ctx context.Context, email string) (*userdomain.User, error)
	Create(ctx context.Context, u *userdomain.User) error
	Update(ctx context.Context, u *userdomain.User) error
}

// RoleRepo is the minimal role repository needed by the auth service.
type RoleRepo interface {
	GetByID(ctx context.Context, id string) (*roledomain.Role, error)
	GetByName(ctx context.Context, name string) (*roledomain.Role, error)
}

// RefreshTokenRepo is the minimal refresh token repository needed by the auth service.
type RefreshTokenRepo interface {
	GetByValue(ctx context.Context, value string) (*rtdomain.RefreshToken, error)
	Create(ctx context.Context, t *rtdomain.RefreshToken) error
	Revoke(ctx context.Context, value, replacedBy string) error
	Rotate(ctx context.Context, oldValue string, next *rtdomain.RefreshToken) error
}

// TokenIssuer mints access and refresh tokens; implemented by *security.TokenProvider.
type TokenIssuer interface {
	GenerateAccessToken(userID, email, role, firstName, lastName string) (string, *security.AccessClaims, error)
	GenerateRefreshToken(userID string) (*rtdomain.RefreshToken, error)
}

// PasswordHasher hashes and verifies passwords; implemented by *security.Hasher.
type PasswordHasher interface {
	Hash(password []byte) (string, error)
	Compare(hash string, password []byte) error
	CompareDummy(password []byte)
}

// Option configures an AuthService.
type Option func(*AuthService)

// WithOperationTimeout bounds every operation, including all store and cache calls, by d.
// The caller's deadline still applies when it is earlier.
func WithOperationTimeout(d time.Duration) Option {
	return func(s *AuthService) { s.opTimeout = d }
}

// WithRevocationCache enables early invalidation of access tokens.
func WithRevocationCache(c revocation.Cache) Option {
	return func(s *AuthService) { s.revocations = c }
}

// WithLogger sets the logger used for store failures.
func WithLogger(l *zap.Logger) Option {
	return func(s *AuthService) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides time.Now; for tests.
func WithClock(now func() time.Time) Option {
	return func(s *AuthService) { s.now = now }
}

// AuthService implements register, login, refresh-token rotation and revocation.
// It holds no mutable state; concurrency control lives in the refresh token store.
type AuthService struct {
	users         UserRepo
	roles         RoleRepo
	refreshTokens RefreshTokenRepo
	hasher        PasswordHasher
	tokens        TokenIssuer
	revocations   revocation.Cache
	defaultRole   string
	opTimeout     time.Duration
	logger        *zap.Logger
	now           func() time.Time
}

// NewAuthService returns an AuthService. defaultRole is the role name assigned on Register.
func NewAuthService(
	users UserRepo,
	roles RoleRepo,
	refreshTokens RefreshTokenRepo,
	hasher PasswordHasher,
	tokens TokenIssuer,
	defaultRole string,
	opts ...Option,
) *AuthService {
	s := &AuthService{
		users:         users,
		roles:         roles,
		refreshTokens: refreshTokens,
		hasher:        hasher,
		tokens:        tokens,
		defaultRole:   defaultRole,
		logger:        zap.NewNop(),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CheckDefaultRole verifies the configured default role exists. Called at startup.
func (s *AuthService) CheckDefaultRole(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	role, err := s.roles.GetByName(ctx, s.defaultRole)
	if err != nil {
		return s.unavailable("get default role", err)
	}
	if role == nil {
		return fmt.Errorf("%w: %q", ErrDefaultRoleMissing, s.defaultRole)
	}
	return nil
}

// Register creates an active user with the default role and signs them in.
func (s *AuthService) Register(ctx context.Context, email, password, firstName, lastName string) (*AuthResult, error) {
	email = userdomain.NormalizeEmail(email)
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	if err := validateName("first_name", firstName); err != nil {
		return nil, err
	}
	if err := validateName("last_name", lastName); err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, s.unavailable("get user by email", err)
	}
	if existing != nil {
		return nil, ErrEmailAlreadyRegistered
	}
	role, err := s.roles.GetByName(ctx, s.defaultRole)
	if err != nil {
		return nil, s.unavailable("get default role", err)
	}
	if role == nil {
		return nil, ErrDefaultRoleMissing
	}
	hashed, err := s.hasher.Hash([]byte(password))
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	now := s.now().UTC()
	user := &userdomain.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hashed,
		FirstName:    firstName,
		LastName:     lastName,
		RoleID:       role.ID,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, userdomain.ErrDuplicateEmail) {
			return nil, ErrEmailAlreadyRegistered
		}
		return nil, s.unavailable("create user", err)
	}
	return s.issueSession(ctx, user, role.Name)
}

// Login verifies email and password and issues a new token pair.
// All failures return ErrInvalidCredentials, and an unknown email costs one bcrypt comparison
// like a known one does.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = userdomain.NormalizeEmail(email)
	if email == "" || password == "" {
		s.hasher.CompareDummy([]byte(password))
		return nil, ErrInvalidCredentials
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, s.unavailable("get user by email", err)
	}
	if user == nil {
		s.hasher.CompareDummy([]byte(password))
		return nil, ErrInvalidCredentials
	}
	if err := s.hasher.Compare(user.PasswordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.Active {
		return nil, ErrInvalidCredentials
	}
	roleName, err := s.roleName(ctx, user)
	if err != nil {
		return nil, err
	}
	return s.issueSession(ctx, user, roleName)
}

// Refresh exchanges an active refresh token for a new pair. Revoking the presented token and
// storing its successor commit together, so a failed Refresh leaves the presented token usable.
// Of concurrent calls presenting the same token exactly one succeeds; the rest, and any
// later replay, get ErrInvalidRefreshToken.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	if refreshToken == "" {
		return nil, ErrInvalidRefreshToken
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	current, err := s.refreshTokens.GetByValue(ctx, refreshToken)
	if err != nil {
		return nil, s.unavailable("get refresh token", err)
	}
	if current == nil || !current.IsActive(s.now()) {
		return nil, ErrInvalidRefreshToken
	}
	user, err := s.users.GetByID(ctx, current.UserID)
	if err != nil {
		return nil, s.unavailable("get user", err)
	}
	if user == nil || !user.Active {
		return nil, ErrInvalidRefreshToken
	}
	roleName, err := s.roleName(ctx, user)
	if err != nil {
		return nil, err
	}

	result, next, err := s.issuePair(user, roleName)
	if err != nil {
		return nil, err
	}
	if err := s.refreshTokens.Rotate(ctx, refreshToken, next); err != nil {
		if errors.Is(err, rtdomain.ErrAlreadyRevoked) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, s.unavailable("rotate refresh token", err)
	}
	return result, nil
}

// Revoke ends the session behind refreshToken. Revoking an already revoked or expired
// token fails with ErrTokenAlreadyRevoked; an unknown token with ErrInvalidRefreshToken.
func (s *AuthService) Revoke(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return ErrInvalidRefreshToken
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	current, err := s.refreshTokens.GetByValue(ctx, refreshToken)
	if err != nil {
		return s.unavailable("get refresh token", err)
	}
	if current == nil {
		return ErrInvalidRefreshToken
	}
	if !current.IsActive(s.now()) {
		return ErrTokenAlreadyRevoked
	}
	if err := s.refreshTokens.Revoke(ctx, refreshToken, ""); err != nil {
		if errors.Is(err, rtdomain.ErrAlreadyRevoked) {
			return ErrTokenAlreadyRevoked
		}
		return s.unavailable("revoke refresh token", err)
	}
	return nil
}

// RevokeAccessToken blacklists the access token described by claims until it expires.
func (s *AuthService) RevokeAccessToken(ctx context.Context, claims *security.AccessClaims) error {
	if claims == nil || claims.ID == "" {
		return ErrInvalidRefreshToken
	}
	if s.revocations == nil {
		return s.unavailable("blacklist access token", errors.New("revocation cache not configured"))
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	if err := revocation.BlacklistClaims(ctx, s.revocations, claims, s.now()); err != nil {
		return s.unavailable("blacklist access token", err)
	}
	return nil
}

// DeactivateUser disables the account so later Login and Refresh calls fail.
// Outstanding access tokens stay valid until expiry unless blacklisted.
func (s *AuthService) DeactivateUser(ctx context.Context, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return &ValidationError{Field: "user_id", Message: "user_id is required"}
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return s.unavailable("get user", err)
	}
	if user == nil {
		return ErrUserNotFound
	}
	if !user.Active {
		return nil
	}
	user.Active = false
	user.UpdatedAt = s.now().UTC()
	if err := s.users.Update(ctx, user); err != nil {
		return s.unavailable("update user", err)
	}
	return nil
}

// issueSession issues a pair for user and persists the refresh token.
func (s *AuthService) issueSession(ctx context.Context, user *userdomain.User, roleName string) (*AuthResult, error) {
	result, refresh, err := s.issuePair(user, roleName)
	if err != nil {
		return nil, err
	}
	if err := s.refreshTokens.Create(ctx, refresh); err != nil {
		return nil, s.unavailable("create refresh token", err)
	}
	return result, nil
}

func (s *AuthService) issuePair(user *userdomain.User, roleName string) (*AuthResult, *rtdomain.RefreshToken, error) {
	access, claims, err := s.tokens.GenerateAccessToken(user.ID, user.Email, roleName, user.FirstName, user.LastName)
	if err != nil {
		return nil, nil, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := s.tokens.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("issue refresh token: %w", err)
	}
	result := &AuthResult{
		AccessToken:   access,
		AccessTokenID: claims.ID,
		RefreshToken:  refresh.Token,
		ExpiresAt:     claims.ExpiresAt.Time,
		User: UserInfo{
			ID:        user.ID,
			Email:     user.Email,
			FirstName: user.FirstName,
			LastName:  user.LastName,
			Role:      roleName,
		},
	}
	return result, refresh, nil
}

func (s *AuthService) roleName(ctx context.Context, user *userdomain.User) (string, error) {
	role, err := s.roles.GetByID(ctx, user.RoleID)
	if err != nil {
		return "", s.unavailable("get role", err)
	}
	if role == nil {
		return "", fmt.Errorf("role %s of user %s not found", user.RoleID, user.ID)
	}
	return role.Name, nil
}

func (s *AuthService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.opTimeout)
}

func (s *AuthService) unavailable(op string, err error) error {
	s.logger.Warn("auth store call failed", zap.String("op", op), zap.Error(err))
	return unavailable(op, err)
}
