package auth

import (
	"context"
	"strings"
	"sync"
	"time"
)

type LocalUser struct {
	Username     string
	PasswordHash string
	Email        string
}

// LocalProvider signs users in against a fixed set of bcrypt hashed accounts
// and issues HS256 tokens. Accounts registered through SignUp live in memory
// only.
type LocalProvider struct {
	mu       sync.RWMutex
	users    map[string]LocalUser
	secret   string
	issuer   string
	audience string
	ttl      time.Duration
}

func NewLocalProvider(users []LocalUser, secret, issuer, audience string, ttl time.Duration) *LocalProvider {
	if ttl <= 0 {
		ttl = time.Hour
	}
	byName := make(map[string]LocalUser, len(users))
	for _, u := range users {
		byName[u.Username] = u
	}
	return &LocalProvider{
		users:    byName,
		secret:   secret,
		issuer:   issuer,
		audience: audience,
		ttl:      ttl,
	}
}

func localSubject(username string) string {
	return "local|" + username
}

func (p *LocalProvider) Authenticate(ctx context.Context, username, password string) (*Identity, *Tokens, error) {
	p.mu.RLock()
	user, ok := p.users[username]
	p.mu.RUnlock()

	if !ok || !CheckPasswordHash(password, user.PasswordHash) {
		return nil, nil, ErrInvalidCredentials
	}

	identity := &Identity{
		Subject:  localSubject(user.Username),
		Username: user.Username,
		Email:    user.Email,
	}

	token, err := GenerateJWT(identity, p.secret, p.issuer, p.audience, p.ttl)
	if err != nil {
		return nil, nil, err
	}

	return identity, &Tokens{
		IDToken:     token,
		AccessToken: token,
		ExpiresIn:   int32(p.ttl / time.Second),
	}, nil
}

func (p *LocalProvider) SignUp(ctx context.Context, username, password, email string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return ErrInvalidCredentials
	}

	hash, err := HashPassword(password)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.users[username]; exists {
		return ErrUserExists
	}
	p.users[username] = LocalUser{Username: username, PasswordHash: hash, Email: email}
	return nil
}

// ConfirmSignUp accepts any code for a known user; local accounts need no
// confirmation.
func (p *LocalProvider) ConfirmSignUp(ctx context.Context, username, code string) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if _, ok := p.users[username]; !ok {
		return ErrInvalidCredentials
	}
	return nil
}

func (p *LocalProvider) SignOut(ctx context.Context, accessToken string) error {
	return nil
}
