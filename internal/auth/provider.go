package auth

import (
	"context"
	"errors"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserNotConfirmed   = errors.New("user is not confirmed")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCode        = errors.New("invalid confirmation code")
	ErrChallengeRequired  = errors.New("additional authentication challenge required")
)

// Identity is what the provider vouches for after a successful sign-in.
// Subject is stable for the lifetime of the account.
type Identity struct {
	Subject  string
	Username string
	Email    string
}

type Tokens struct {
	IDToken      string `json:"id_token"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int32  `json:"expires_in"`
}

type Provider interface {
	Authenticate(ctx context.Context, username, password string) (*Identity, *Tokens, error)
	SignUp(ctx context.Context, username, password, email string) error
	ConfirmSignUp(ctx context.Context, username, code string) error
	SignOut(ctx context.Context, accessToken string) error
}
