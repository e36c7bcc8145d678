package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"yatube/internal/models"
)

type userRepository struct {
	db *sqlx.DB
}

const userColumns = `user_id, username, first_name, last_name, email, password_hash,
	refresh_token, refresh_token_expiry_time, created_at`

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) CreateUser(ctx context.Context, user *models.User, password string) error {
	// create password hash
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("ошибка при хешировании пароля: %w", err)
	}

	user.PasswordHash = string(hashedPassword)
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	if user.RefreshTokenExpiryTime.IsZero() {
		user.RefreshTokenExpiryTime = user.CreatedAt
	}

	query := `
		INSERT INTO users (username, first_name, last_name, email, password_hash,
			refresh_token, refresh_token_expiry_time, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING user_id
	`

	err = r.db.QueryRowxContext(ctx, r.db.Rebind(query),
		user.Username,
		user.FirstName,
		user.LastName,
		user.Email,
		user.PasswordHash,
		user.RefreshToken,
		user.RefreshTokenExpiryTime,
		user.CreatedAt,
	).Scan(&user.UserID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("пользователь %s уже существует: %w", user.Username, ErrDuplicate)
		}
		return fmt.Errorf("ошибка при создании пользователя: %w", err)
	}

	return nil
}

func (r *userRepository) GetUserByID(ctx context.Context, userID int64) (*models.User, error) {
	var user models.User

	query := `SELECT ` + userColumns + ` FROM users WHERE user_id = ?`

	err := r.db.GetContext(ctx, &user, r.db.Rebind(query), userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("пользователь с ID %d не найден: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("ошибка при получении пользователя: %w", err)
	}

	return &user, nil
}

func (r *userRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User

	query := `SELECT ` + userColumns + ` FROM users WHERE username = ?`

	err := r.db.GetContext(ctx, &user, r.db.Rebind(query), username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("пользователь %s не найден: %w", username, ErrNotFound)
		}
		return nil, fmt.Errorf("ошибка при получении пользователя по имени: %w", err)
	}

	return &user, nil
}

func (r *userRepository) VerifyPassword(ctx context.Context, username, password string) (*models.User, error) {
	user, err := r.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	// checking that the password hash is the same
	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	if err != nil {
		return nil, ErrInvalidPassword
	}

	return user, nil
}

func (r *userRepository) UpdateRefreshToken(ctx context.Context, userID int64, refreshToken string, expiryTime time.Time) error {
	query := `
		UPDATE users
		SET refresh_token = ?, refresh_token_expiry_time = ?
		WHERE user_id = ?
	`

	result, err := r.db.ExecContext(ctx, r.db.Rebind(query), refreshToken, expiryTime.UTC(), userID)
	if err != nil {
		return fmt.Errorf("ошибка при обновлении refresh token: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("ошибка при проверке обновленных строк: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("пользователь с ID %d не найден: %w", userID, ErrNotFound)
	}

	return nil
}

func (r *userRepository) GetUserByRefreshToken(ctx context.Context, refreshToken string, now time.Time) (*models.User, error) {
	if refreshToken == "" {
		return nil, fmt.Errorf("недействительный или просроченный refresh token: %w", ErrNotFound)
	}

	var user models.User

	query := `
		SELECT ` + userColumns + ` FROM users
		WHERE refresh_token = ?
		AND refresh_token_expiry_time > ?
	`

	err := r.db.GetContext(ctx, &user, r.db.Rebind(query), refreshToken, now.UTC())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("недействительный или просроченный refresh token: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("ошибка при получении пользователя по refresh token: %w", err)
	}

	return &user, nil
}
