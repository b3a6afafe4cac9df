package auth

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/safar/storefront/internal/models"
)

// DBResolver resolves tokens against the users table. It stands in for
// the external identity provider in deployments where users live in the
// same database.
type DBResolver struct {
	db *sql.DB
}

func NewDBResolver(db *sql.DB) *DBResolver {
	return &DBResolver{db: db}
}

func (r *DBResolver) Resolve(ctx context.Context, token string) (*Principal, error) {
	principal := &Principal{}

	query := `
		SELECT id, role
		FROM users
		WHERE auth_token = $1`

	err := r.db.QueryRowContext(ctx, query, token).Scan(&principal.UserID, &principal.Role)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrUnknownToken
		}
		return nil, fmt.Errorf("resolve token: %w", err)
	}

	return principal, nil
}

// CreateUser registers a user with a freshly minted token. The token is
// returned exactly once, via the second return value.
func CreateUser(ctx context.Context, db *sql.DB, email, name, role string) (*models.User, string, error) {
	user := &models.User{}
	token := uuid.NewString()

	query := `
		INSERT INTO users (email, name, role, auth_token, created_at, updated_at, version)
		VALUES ($1, $2, $3, $4, NOW(), NOW(), 1)
		RETURNING id, email, name, role, created_at, updated_at, version`

	err := db.QueryRowContext(ctx, query, email, name, role, token).Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.Role,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.Version,
	)
	if err != nil {
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	return user, token, nil
}
