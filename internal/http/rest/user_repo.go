package rest

import (
	"context"

	"github.com/gitgud/citywatch/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

func (api *API) GetUserByIDRepo(ctx context.Context, id uuid.UUID) (model.User, error) {
	var user model.User
	err := api.DB.QueryRow(ctx, `
		SELECT id, name, phone, email, is_admin, created_at, updated_at
		FROM users WHERE id = $1
	`, id).Scan(&user.ID, &user.Name, &user.Phone, &user.Email, &user.IsAdmin,
		&user.CreatedAt, &user.UpdatedAt)
	if err == pgx.ErrNoRows {
		return model.User{}, ErrUserNotFound
	}
	return user, err
}

func (api *API) UserExistsRepo(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := api.DB.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

func (api *API) UpdateUserRepo(ctx context.Context, id uuid.UUID, req model.UpdateUserRequest) error {
	result, err := api.DB.Exec(ctx, `
		UPDATE users SET
			name       = COALESCE($1, name),
			phone      = COALESCE($2, phone),
			email      = COALESCE($3, email),
			updated_at = NOW()
		WHERE id = $4
	`, req.Name, req.Phone, req.Email, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// DeleteUserRepo removes a user's profile. Their reports and comments
// stay (shown as Anonymous), and their vote ledger rows stay too since
// scores already include them.
func (api *API) DeleteUserRepo(ctx context.Context, id uuid.UUID) error {
	return api.Database.RunInTx(ctx, func(tx pgx.Tx) error {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrUserNotFound
		}

		_, err := tx.Exec(ctx, `UPDATE users SET name = '', phone = '', email = '', updated_at = NOW() WHERE id = $1`, id)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `DELETE FROM users WHERE id = $1
			AND NOT EXISTS (SELECT 1 FROM reports WHERE user_id = $1)
			AND NOT EXISTS (SELECT 1 FROM comments WHERE user_id = $1)`, id)
		return err
	})
}

func (api *API) CreateUserRepo(ctx context.Context, user model.User) (model.User, error) {
	err := api.DB.QueryRow(ctx, `
		INSERT INTO users (id, name, phone, email, is_admin)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`, user.ID, user.Name, user.Phone, user.Email, user.IsAdmin).
		Scan(&user.CreatedAt, &user.UpdatedAt)
	return user, err
}
