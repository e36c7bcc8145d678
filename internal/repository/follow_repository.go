package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type followRepository struct {
	db *sqlx.DB
}

func NewFollowRepository(db *sqlx.DB) FollowRepository {
	return &followRepository{db: db}
}

// Create reports whether a new row was written. An existing pair is left as is.
func (r *followRepository) Create(ctx context.Context, userID, authorID int64) (bool, error) {
	query := `
		INSERT INTO follows (user_id, author_id)
		VALUES (?, ?)
		ON CONFLICT (user_id, author_id) DO NOTHING
	`

	result, err := r.db.ExecContext(ctx, r.db.Rebind(query), userID, authorID)
	if err != nil {
		return false, fmt.Errorf("ошибка при создании подписки: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("ошибка при проверке добавленных строк: %w", err)
	}

	return rowsAffected > 0, nil
}

func (r *followRepository) Delete(ctx context.Context, userID, authorID int64) error {
	query := `DELETE FROM follows WHERE user_id = ? AND author_id = ?`

	result, err := r.db.ExecContext(ctx, r.db.Rebind(query), userID, authorID)
	if err != nil {
		return fmt.Errorf("ошибка при удалении подписки: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("ошибка при проверке удаленных строк: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("подписка не найдена: %w", ErrNotFound)
	}

	return nil
}

func (r *followRepository) Exists(ctx context.Context, userID, authorID int64) (bool, error) {
	query := `SELECT COUNT(*) FROM follows WHERE user_id = ? AND author_id = ?`

	var count int
	if err := r.db.GetContext(ctx, &count, r.db.Rebind(query), userID, authorID); err != nil {
		return false, fmt.Errorf("ошибка при проверке подписки: %w", err)
	}

	return count > 0, nil
}
