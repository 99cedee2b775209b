package security

import (
	"crypto"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	rtdomain "eventflow/auth-service/internal/refreshtoken/domain"
)

// MinHMACSecretLen is the minimum HS256 secret length in bytes.
const MinHMACSecretLen = 32

var (
	// ErrInvalidToken is returned when a token is malformed or invalid.
	ErrInvalidToken = errors.New("invalid token")
	// ErrWeakSecret is returned when an HS256 secret is shorter than MinHMACSecretLen.
	ErrWeakSecret = errors.New("jwt secret must be at least 32 bytes")
)

// AccessClaims holds JWT claims for the access token.
type AccessClaims struct {
	jwt.RegisteredClaims
	Email     string `json:"email"`
	Role      string `json:"role"`
	FirstName string `json:"given_name,omitempty"`
	LastName  string `json:"family_name,omitempty"`
}

// Remaining returns how long the token stays valid after now; zero or negative when expired.
func (c *AccessClaims) Remaining(now time.Time) time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	return c.ExpiresAt.Time.Sub(now)
}

// TokenProvider issues stateless access JWTs and opaque refresh tokens.
// Access tokens are signed with RS256/ES256 when built from a key pair and HS256 when built from a secret.
type TokenProvider struct {
	method     jwt.SigningMethod
	signingKey any
	verifyKey  any
	issuer     string
	audience   string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenProvider returns a TokenProvider that signs with the given private key (RS256 or ES256).
// privateKey may be nil for verify-only use; publicKey is required.
func NewTokenProvider(privateKey crypto.Signer, publicKey crypto.PublicKey, issuer, audience string, accessTTL, refreshTTL time.Duration) (*TokenProvider, error) {
	if publicKey == nil && privateKey != nil {
		publicKey = privateKey.Public()
	}
	method := jwt.GetSigningMethod(KeyAlg(publicKey))
	if method == nil {
		return nil, ErrInvalidKey
	}
	p := &TokenProvider{
		method:     method,
		verifyKey:  publicKey,
		issuer:     issuer,
		audience:   audience,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
	if privateKey != nil {
		p.signingKey = privateKey
	}
	return p, nil
}

// NewHMACTokenProvider returns a TokenProvider that signs and verifies with a shared HS256 secret.
func NewHMACTokenProvider(secret []byte, issuer, audience string, accessTTL, refreshTTL time.Duration) (*TokenProvider, error) {
	if len(secret) < MinHMACSecretLen {
		return nil, ErrWeakSecret
	}
	key := append([]byte(nil), secret...)
	return &TokenProvider{
		method:     jwt.SigningMethodHS256,
		signingKey: key,
		verifyKey:  key,
		issuer:     issuer,
		audience:   audience,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}, nil
}

// Alg returns the JWS algorithm used for access tokens.
func (p *TokenProvider) Alg() string { return p.method.Alg() }

// AccessTTL returns the configured access token lifetime.
func (p *TokenProvider) AccessTTL() time.Duration { return p.accessTTL }

// RefreshTTL returns the configured refresh token lifetime.
func (p *TokenProvider) RefreshTTL() time.Duration { return p.refreshTTL }

// GenerateAccessToken issues a short-lived access JWT carrying the user's identity and role.
// The returned claims include the generated jti and expiry.
func (p *TokenProvider) GenerateAccessToken(userID, email, role, firstName, lastName string) (string, *AccessClaims, error) {
	if p.signingKey == nil {
		return "", nil, fmt.Errorf("token provider has no signing key: %w", ErrInvalidKey)
	}
	jti, err := generateJTI()
	if err != nil {
		return "", nil, err
	}
	now := time.Now().UTC()
	claims := &AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   userID,
			Issuer:    p.issuer,
			Audience:  jwt.ClaimStrings{p.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.accessTTL)),
		},
		Email:     email,
		Role:      role,
		FirstName: firstName,
		LastName:  lastName,
	}
	token, err := jwt.NewWithClaims(p.method, claims).SignedString(p.signingKey)
	if err != nil {
		return "", nil, err
	}
	return token, claims, nil
}

// GenerateRefreshToken returns a new, unpersisted refresh token for userID.
// The raw value is in Token; TokenHash is what the store keeps.
func (p *TokenProvider) GenerateRefreshToken(userID string) (*rtdomain.RefreshToken, error) {
	value, err := NewRefreshTokenValue()
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &rtdomain.RefreshToken{
		ID:        uuid.New().String(),
		UserID:    userID,
		Token:     value,
		TokenHash: HashRefreshToken(value),
		ExpiresAt: now.Add(p.refreshTTL),
		CreatedAt: now,
	}, nil
}

// ValidateAccess parses and validates the access token (algorithm, signature, exp, iss, aud).
func (p *TokenProvider) ValidateAccess(tokenString string) (*AccessClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AccessClaims{}, func(token *jwt.Token) (interface{}, error) {
		return p.verifyKey, nil
	}, jwt.WithValidMethods([]string{p.method.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*AccessClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Issuer != p.issuer {
		return nil, ErrInvalidToken
	}
	audOk := false
	for _, a := range claims.Audience {
		if a == p.audience {
			audOk = true
			break
		}
	}
	if !audOk || claims.ID == "" || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func generateJTI() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
