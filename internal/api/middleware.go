package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"cloud-drive/internal/catalog"
	"cloud-drive/internal/models"

	"go.uber.org/zap"
)

type contextKey string

const (
	userContextKey  = contextKey("user")
	tokenContextKey = contextKey("token")
)

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	headerParts := strings.Split(authHeader, " ")
	if len(headerParts) != 2 || headerParts[0] != "Bearer" || headerParts[1] == "" {
		return "", false
	}
	return headerParts[1], true
}

// AuthMiddleware verifies the bearer token and resolves the acting user by
// the token subject. A subject seen for the first time gets a user row.
func (s *Server) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			writeError(w, http.StatusUnauthorized, "Authorization header required")
			return
		}

		tokenString, ok := bearerToken(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "Invalid Authorization header format")
			return
		}

		user, err := s.userFromToken(r.Context(), tokenString)
		if err != nil {
			s.handleError(w, r, err, "Failed to resolve user")
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		ctx = context.WithValue(ctx, tokenContextKey, tokenString)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) userFromToken(ctx context.Context, tokenString string) (*models.User, error) {
	claims, err := s.verifier.Verify(tokenString)
	if err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByExternalID(ctx, claims.Subject)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, catalog.ErrNotFound) {
		return nil, err
	}

	username := claims.Username
	if username == "" {
		username = claims.Subject
	}
	s.logger.Info("provisioning user on first request", zap.String("username", username))
	return s.store.UpsertUser(ctx, catalog.UpsertUserParams{
		ExternalID: claims.Subject,
		Username:   username,
		Email:      claims.Email,
	})
}

func GetUserFromContext(ctx context.Context) *models.User {
	if user, ok := ctx.Value(userContextKey).(*models.User); ok {
		return user
	}
	return nil
}

func getTokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenContextKey).(string)
	return token
}
