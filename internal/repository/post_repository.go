package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"yatube/internal/models"
	"yatube/internal/pagination"
)

// PostFilter narrows a feed. Zero fields are ignored, so the zero value
// selects every post.
type PostFilter struct {
	GroupID    int64
	AuthorID   int64
	FollowerID int64
}

func (f PostFilter) where() (string, []interface{}) {
	var (
		conditions []string
		args       []interface{}
	)

	if f.GroupID != 0 {
		conditions = append(conditions, "p.group_id = ?")
		args = append(args, f.GroupID)
	}
	if f.AuthorID != 0 {
		conditions = append(conditions, "p.author_id = ?")
		args = append(args, f.AuthorID)
	}
	if f.FollowerID != 0 {
		conditions = append(conditions, "p.author_id IN (SELECT f.author_id FROM follows f WHERE f.user_id = ?)")
		args = append(args, f.FollowerID)
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

const postSelect = `
	SELECT p.post_id, p.text, p.created_at, p.updated_at, p.author_id, p.group_id, p.image,
		u.username AS author_username, g.slug AS group_slug, g.title AS group_title
	FROM posts p
	JOIN users u ON u.user_id = p.author_id
	LEFT JOIN post_groups g ON g.group_id = p.group_id`

const postOrder = ` ORDER BY p.created_at DESC, p.post_id DESC`

type PostRepositoryImpl struct {
	DB *sqlx.DB

	// count and slice of a page are read in one transaction
	readOpts *sql.TxOptions
}

func NewPostRepository(db *sqlx.DB) *PostRepositoryImpl {
	repo := &PostRepositoryImpl{DB: db}
	if db.DriverName() != "sqlite" {
		repo.readOpts = &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
	}
	return repo
}

func (r *PostRepositoryImpl) Create(ctx context.Context, post *models.Post) error {
	query := `
		INSERT INTO posts (text, created_at, updated_at, author_id, group_id, image)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING post_id
	`

	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now().UTC()
	}
	post.UpdatedAt = post.CreatedAt

	err := r.DB.QueryRowxContext(ctx, r.DB.Rebind(query),
		post.Text,
		post.CreatedAt,
		post.UpdatedAt,
		post.AuthorID,
		post.GroupID,
		post.Image,
	).Scan(&post.PostID)
	if err != nil {
		return fmt.Errorf("ошибка при создании поста: %w", err)
	}

	return nil
}

func (r *PostRepositoryImpl) GetByID(ctx context.Context, postID int64) (*models.Post, error) {
	query := postSelect + ` WHERE p.post_id = ?`

	var post models.Post
	err := r.DB.GetContext(ctx, &post, r.DB.Rebind(query), postID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("пост с ID %d не найден: %w", postID, ErrNotFound)
		}
		return nil, fmt.Errorf("ошибка при получении поста: %w", err)
	}

	return &post, nil
}

// Update rewrites the editable fields. Author and creation time never change.
func (r *PostRepositoryImpl) Update(ctx context.Context, post *models.Post) error {
	query := `
		UPDATE posts SET
			text = ?,
			group_id = ?,
			image = ?,
			updated_at = ?
		WHERE post_id = ? AND author_id = ?
	`

	post.UpdatedAt = time.Now().UTC()

	result, err := r.DB.ExecContext(ctx, r.DB.Rebind(query),
		post.Text,
		post.GroupID,
		post.Image,
		post.UpdatedAt,
		post.PostID,
		post.AuthorID,
	)
	if err != nil {
		return fmt.Errorf("ошибка при обновлении поста: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("ошибка при проверке обновленных строк: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("пост с ID %d не найден: %w", post.PostID, ErrNotFound)
	}

	return nil
}

// Delete removes the post, its comments go with it through the foreign key.
func (r *PostRepositoryImpl) Delete(ctx context.Context, postID int64) error {
	query := `DELETE FROM posts WHERE post_id = ?`

	result, err := r.DB.ExecContext(ctx, r.DB.Rebind(query), postID)
	if err != nil {
		return fmt.Errorf("ошибка при удалении поста: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("ошибка при проверке удаленных строк: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("пост с ID %d не найден: %w", postID, ErrNotFound)
	}

	return nil
}

func (r *PostRepositoryImpl) ListPage(ctx context.Context, filter PostFilter, rawPage string, pageSize int) ([]models.Post, pagination.Page, error) {
	where, args := filter.where()

	tx, err := r.DB.BeginTxx(ctx, r.readOpts)
	if err != nil {
		return nil, pagination.Page{}, fmt.Errorf("ошибка при открытии транзакции: %w", err)
	}
	defer tx.Rollback()

	var total int
	if err := tx.GetContext(ctx, &total, tx.Rebind(`SELECT COUNT(*) FROM posts p`+where), args...); err != nil {
		return nil, pagination.Page{}, fmt.Errorf("ошибка при подсчете постов: %w", err)
	}

	page := pagination.New(total, rawPage, pageSize)

	posts := []models.Post{}
	query := tx.Rebind(postSelect + where + postOrder + ` LIMIT ? OFFSET ?`)
	if err := tx.SelectContext(ctx, &posts, query, append(args, page.Limit(), page.Offset())...); err != nil {
		return nil, pagination.Page{}, fmt.Errorf("ошибка при получении постов: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, pagination.Page{}, fmt.Errorf("ошибка при завершении транзакции: %w", err)
	}

	return posts, page, nil
}

func (r *PostRepositoryImpl) CountByAuthor(ctx context.Context, authorID int64) (int, error) {
	query := `SELECT COUNT(*) FROM posts WHERE author_id = ?`

	var count int
	if err := r.DB.GetContext(ctx, &count, r.DB.Rebind(query), authorID); err != nil {
		return 0, fmt.Errorf("ошибка при подсчете постов автора: %w", err)
	}

	return count, nil
}
