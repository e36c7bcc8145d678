package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"yatube/internal/models"
)

type commentRepository struct {
	db *sqlx.DB
}

func NewCommentRepository(db *sqlx.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	query := `
		INSERT INTO comments (text, created_at, author_id, post_id)
		VALUES (?, ?, ?, ?)
		RETURNING comment_id
	`

	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now().UTC()
	}

	err := r.db.QueryRowxContext(ctx, r.db.Rebind(query),
		comment.Text,
		comment.CreatedAt,
		comment.AuthorID,
		comment.PostID,
	).Scan(&comment.CommentID)
	if err != nil {
		return fmt.Errorf("ошибка при создании комментария: %w", err)
	}

	return nil
}

func (r *commentRepository) ListByPost(ctx context.Context, postID int64) ([]models.Comment, error) {
	query := `
		SELECT c.comment_id, c.text, c.created_at, c.author_id, c.post_id,
			u.username AS author_username
		FROM comments c
		JOIN users u ON u.user_id = c.author_id
		WHERE c.post_id = ?
		ORDER BY c.created_at DESC, c.comment_id DESC
	`

	comments := []models.Comment{}
	if err := r.db.SelectContext(ctx, &comments, r.db.Rebind(query), postID); err != nil {
		return nil, fmt.Errorf("ошибка при получении комментариев: %w", err)
	}

	return comments, nil
}
