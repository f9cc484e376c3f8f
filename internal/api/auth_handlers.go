package api

import (
	"errors"
	"net/http"
	"strings"

	"cloud-drive/internal/auth"
	"cloud-drive/internal/catalog"
	"cloud-drive/internal/models"

	"go.uber.org/zap"
)

type LoginRequest struct {
	Username string `json:"username" validate:"notblank" example:"alice"`
	Password string `json:"password" validate:"required" example:"password123"`
}

type LoginResponse struct {
	User   *models.User `json:"user"`
	Tokens *auth.Tokens `json:"tokens"`
}

type RegisterRequest struct {
	Username string `json:"username" validate:"notblank" example:"alice"`
	Password string `json:"password" validate:"required" example:"password123"`
	Email    string `json:"email" validate:"omitempty,email" example:"alice@example.com"`
}

type ConfirmRequest struct {
	Username string `json:"username" validate:"notblank" example:"alice"`
	Code     string `json:"code" validate:"notblank" example:"123456"`
}

func (s *Server) handleIdentityError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Invalid username or password")
	case errors.Is(err, auth.ErrUserNotConfirmed):
		writeError(w, http.StatusForbidden, "Account is not confirmed")
	case errors.Is(err, auth.ErrChallengeRequired):
		writeError(w, http.StatusForbidden, "Additional sign-in step required")
	case errors.Is(err, auth.ErrUserExists):
		writeError(w, http.StatusConflict, "User already exists")
	case errors.Is(err, auth.ErrInvalidCode):
		writeError(w, http.StatusBadRequest, "Invalid or expired confirmation code")
	default:
		s.handleError(w, r, err, "Identity provider error")
	}
}

// @Summary      Log in
// @Description  Authenticates against the identity provider, records the user on first sign-in and returns the provider tokens.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        loginRequest  body      LoginRequest  true  "Login credentials"
// @Success      200           {object}  Envelope{data=LoginResponse}
// @Failure      400           {object}  Envelope
// @Failure      401           {object}  Envelope
// @Failure      500           {object}  Envelope
// @Router       /auth/login [post]
func (s *Server) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	req.Username = strings.TrimSpace(req.Username)

	identity, tokens, err := s.identity.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		s.handleIdentityError(w, r, err)
		return
	}

	user, err := s.store.UpsertUser(r.Context(), catalog.UpsertUserParams{
		ExternalID: identity.Subject,
		Username:   identity.Username,
		Email:      identity.Email,
	})
	if err != nil {
		s.handleError(w, r, err, "Failed to record user")
		return
	}

	s.logger.Info("user signed in", zap.Int64("user_id", user.ID))
	writeJSON(w, http.StatusOK, LoginResponse{User: user, Tokens: tokens})
}

// @Summary      Register
// @Description  Creates an account at the identity provider. The account may need confirmation before it can sign in.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        registerRequest  body      RegisterRequest  true  "Account details"
// @Success      201              {object}  Envelope
// @Failure      400              {object}  Envelope
// @Failure      409              {object}  Envelope
// @Failure      500              {object}  Envelope
// @Router       /auth/register [post]
func (s *Server) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	req.Username = strings.TrimSpace(req.Username)

	if err := s.identity.SignUp(r.Context(), req.Username, req.Password, req.Email); err != nil {
		s.handleIdentityError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"username": req.Username})
}

// @Summary      Confirm registration
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        confirmRequest  body      ConfirmRequest  true  "Confirmation code"
// @Success      200             {object}  Envelope
// @Failure      400             {object}  Envelope
// @Failure      500             {object}  Envelope
// @Router       /auth/confirm [post]
func (s *Server) ConfirmHandler(w http.ResponseWriter, r *http.Request) {
	var req ConfirmRequest
	if !decodeRequest(w, r, &req) {
		return
	}
	req.Username = strings.TrimSpace(req.Username)

	if err := s.identity.ConfirmSignUp(r.Context(), req.Username, req.Code); err != nil {
		s.handleIdentityError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"confirmed": true})
}

// @Summary      Log out
// @Description  Signs the user out of every device at the identity provider.
// @Tags         auth
// @Security     BearerAuth
// @Success      204  {null}    nil "No Content"
// @Failure      401  {object}  Envelope
// @Failure      500  {object}  Envelope
// @Router       /auth/logout [post]
func (s *Server) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.identity.SignOut(r.Context(), getTokenFromContext(r.Context())); err != nil {
		s.handleIdentityError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
