// Package authv1 defines the EventFlow AuthService wire messages and gRPC bindings.
// Messages travel as JSON (see api/codec) on both the gRPC and REST surfaces.
package authv1

import "time"

// TokenTypeBearer is the token_type of every issued access token.
const TokenTypeBearer = "Bearer"

type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type RevokeRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type RevokeResponse struct{}

type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
}

// AuthResponse is returned by Register, Login and Refresh.
type AuthResponse struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	TokenType    string    `json:"tokenType"`
	ExpiresAt    time.Time `json:"expiresAt"`
	User         *User     `json:"user"`
}

type MeRequest struct{}

// MeResponse describes the caller as seen in their access token.
type MeResponse struct {
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Role      string    `json:"role"`
	TokenID   string    `json:"tokenId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type RevokeAccessTokenRequest struct{}

type RevokeAccessTokenResponse struct{}

// GetUserId returns the subject of the issued tokens, or "" for a nil response.
func (r *AuthResponse) GetUserId() string {
	if r == nil || r.User == nil {
		return ""
	}
	return r.User.ID
}
