package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud-drive/internal/models"

	"github.com/jackc/pgx/v5"
)

const userColumns = `id, external_id, username, email, created_at, updated_at`

func scanUser(row rowScanner) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.ExternalID,
		&user.Username,
		&user.Email,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

type UpsertUserParams struct {
	ExternalID string
	Username   string
	Email      string
}

// UpsertUser creates the user on first sign-in and refreshes the username and
// email on later ones. The external id never changes.
func (q *Queries) UpsertUser(ctx context.Context, arg UpsertUserParams) (*models.User, error) {
	arg.ExternalID = strings.TrimSpace(arg.ExternalID)
	arg.Username = strings.TrimSpace(arg.Username)
	if arg.ExternalID == "" || arg.Username == "" {
		return nil, fmt.Errorf("%w: external id and username are required", ErrInvalidInput)
	}

	query := `
		INSERT INTO users (external_id, username, email)
		VALUES ($1, $2, $3)
		ON CONFLICT (external_id) DO UPDATE
		SET username = EXCLUDED.username, email = EXCLUDED.email, updated_at = NOW()
		RETURNING ` + userColumns

	user, err := scanUser(q.db.QueryRow(ctx, query, arg.ExternalID, arg.Username, arg.Email))
	if err != nil {
		if pgErrorCode(err) == pgUniqueViolation {
			return nil, fmt.Errorf("%w: username %q is taken", ErrInvalidInput, arg.Username)
		}
		return nil, err
	}
	return user, nil
}

func (q *Queries) GetUserByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE external_id = $1`
	return scanUser(q.db.QueryRow(ctx, query, externalID))
}

func (q *Queries) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return scanUser(q.db.QueryRow(ctx, query, username))
}

func (q *Queries) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(q.db.QueryRow(ctx, query, id))
}
