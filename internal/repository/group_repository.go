package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"yatube/internal/models"
)

type groupRepository struct {
	db *sqlx.DB
}

func NewGroupRepository(db *sqlx.DB) GroupRepository {
	return &groupRepository{db: db}
}

func (r *groupRepository) Create(ctx context.Context, group *models.Group) error {
	query := `
		INSERT INTO post_groups (title, slug, description)
		VALUES (?, ?, ?)
		RETURNING group_id
	`

	err := r.db.QueryRowxContext(ctx, r.db.Rebind(query), group.Title, group.Slug, group.Description).
		Scan(&group.GroupID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("группа %s уже существует: %w", group.Slug, ErrDuplicate)
		}
		return fmt.Errorf("ошибка при создании группы: %w", err)
	}

	return nil
}

func (r *groupRepository) GetByID(ctx context.Context, groupID int64) (*models.Group, error) {
	var group models.Group

	query := `SELECT group_id, title, slug, description FROM post_groups WHERE group_id = ?`

	err := r.db.GetContext(ctx, &group, r.db.Rebind(query), groupID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("группа с ID %d не найдена: %w", groupID, ErrNotFound)
		}
		return nil, fmt.Errorf("ошибка при получении группы: %w", err)
	}

	return &group, nil
}

func (r *groupRepository) GetBySlug(ctx context.Context, slug string) (*models.Group, error) {
	var group models.Group

	query := `SELECT group_id, title, slug, description FROM post_groups WHERE slug = ?`

	err := r.db.GetContext(ctx, &group, r.db.Rebind(query), slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("группа %s не найдена: %w", slug, ErrNotFound)
		}
		return nil, fmt.Errorf("ошибка при получении группы: %w", err)
	}

	return &group, nil
}

func (r *groupRepository) List(ctx context.Context) ([]models.Group, error) {
	groups := []models.Group{}

	query := `SELECT group_id, title, slug, description FROM post_groups ORDER BY title, group_id`

	if err := r.db.SelectContext(ctx, &groups, query); err != nil {
		return nil, fmt.Errorf("ошибка при получении списка групп: %w", err)
	}

	return groups, nil
}
