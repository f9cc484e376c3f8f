package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims is the verified identity carried by a bearer token.
type Claims struct {
	Subject  string
	Username string
	Email    string
}

// tokenClaims understands both locally issued tokens and Cognito ID and
// access tokens, which name the username claim differently.
type tokenClaims struct {
	Username        string `json:"username,omitempty"`
	CognitoUsername string `json:"cognito:username,omitempty"`
	Email           string `json:"email,omitempty"`
	ClientID        string `json:"client_id,omitempty"`
	TokenUse        string `json:"token_use,omitempty"`
	jwt.RegisteredClaims
}

func (c *tokenClaims) username() string {
	if c.CognitoUsername != "" {
		return c.CognitoUsername
	}
	return c.Username
}

// VerifierConfig enables HS256 with HMACSecret, RS256 with RSAKeyfunc, or
// both. RSAKeyfunc is normally built with NewRemoteKeyfunc.
type VerifierConfig struct {
	HMACSecret string
	RSAKeyfunc jwt.Keyfunc
	Issuer     string
	Audience   string
}

type Verifier struct {
	hmacSecret []byte
	rsaKeyfunc jwt.Keyfunc
	issuer     string
	audience   string
}

func NewVerifier(cfg VerifierConfig) (*Verifier, error) {
	if cfg.HMACSecret == "" && cfg.RSAKeyfunc == nil {
		return nil, fmt.Errorf("verifier needs an HMAC secret or an RSA key source")
	}
	return &Verifier{
		hmacSecret: []byte(cfg.HMACSecret),
		rsaKeyfunc: cfg.RSAKeyfunc,
		issuer:     cfg.Issuer,
		audience:   cfg.Audience,
	}, nil
}

func (v *Verifier) keyFunc(token *jwt.Token) (interface{}, error) {
	switch token.Method.(type) {
	case *jwt.SigningMethodHMAC:
		if len(v.hmacSecret) == 0 {
			return nil, jwt.ErrSignatureInvalid
		}
		return v.hmacSecret, nil
	case *jwt.SigningMethodRSA:
		if v.rsaKeyfunc == nil {
			return nil, jwt.ErrTokenUnverifiable
		}
		return v.rsaKeyfunc(token)
	default:
		return nil, jwt.ErrSignatureInvalid
	}
}

// Verify checks signature, expiry and, when configured, issuer and audience.
// Every failure wraps ErrInvalidToken.
func (v *Verifier) Verify(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"HS256", "RS256"}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, v.keyFunc, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	if v.audience != "" && !v.audienceMatches(claims) {
		return nil, fmt.Errorf("%w: audience mismatch", ErrInvalidToken)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	return &Claims{
		Subject:  claims.Subject,
		Username: claims.username(),
		Email:    claims.Email,
	}, nil
}

// Cognito access tokens carry the app client in client_id instead of aud.
func (v *Verifier) audienceMatches(c *tokenClaims) bool {
	if c.ClientID == v.audience {
		return true
	}
	for _, aud := range c.Audience {
		if aud == v.audience {
			return true
		}
	}
	return false
}

// GenerateJWT issues an HS256 token for identity, used by the local provider.
func GenerateJWT(identity *Identity, secret, issuer, audience string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &tokenClaims{
		Username: identity.Username,
		Email:    identity.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.Subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}
	if audience != "" {
		claims.Audience = jwt.ClaimStrings{audience}
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", err
	}

	return tokenString, nil
}
