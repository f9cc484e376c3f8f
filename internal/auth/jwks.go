package auth

import (
	"context"
	"fmt"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

// CognitoIssuer is the issuer of tokens minted by the given user pool.
func CognitoIssuer(region, userPoolID string) string {
	return fmt.Sprintf("https://cognito-idp.%s.amazonaws.com/%s", region, userPoolID)
}

// CognitoJWKSURL is where a user pool publishes its signing keys.
func CognitoJWKSURL(region, userPoolID string) string {
	return CognitoIssuer(region, userPoolID) + "/.well-known/jwks.json"
}

// NewRemoteKeyfunc resolves RS256 verification keys from the JWK Set at url.
// The set is refreshed in the background until ctx ends, and again whenever a
// token names a key id that is not cached yet, so key rotation needs no
// restart.
func NewRemoteKeyfunc(ctx context.Context, url string) (jwt.Keyfunc, error) {
	k, err := keyfunc.NewDefaultCtx(ctx, []string{url})
	if err != nil {
		return nil, fmt.Errorf("load jwks from %s: %w", url, err)
	}
	return k.Keyfunc, nil
}
