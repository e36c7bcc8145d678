package database

import (
	"context"
	"embed"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"yatube/internal/config"
	"yatube/internal/logger"
)

const (
	DriverPostgres = "postgres"
	DriverPgx      = "pgx"
	DriverSQLite   = "sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

func init() {
	// modernc registers itself as "sqlite", which sqlx does not know about
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

type MethodsDB interface {
	CloseDB() error
	RunMigrations() error
	HealthCheck(ctx context.Context) error
}

type DB struct {
	*sqlx.DB
}

func ConnectDB(cfg *config.Config) (*DB, error) {
	switch cfg.DB.Driver {
	case DriverSQLite:
		return OpenSQLite(cfg.DB.SQLitePath)
	case DriverPostgres, DriverPgx:
		return connectPostgres(cfg)
	default:
		return nil, fmt.Errorf("неизвестный драйвер БД: %q", cfg.DB.Driver)
	}
}

func connectPostgres(cfg *config.Config) (*DB, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.DB.DbHOST,
		cfg.DB.DbPORT,
		cfg.DB.DbUSER,
		cfg.DB.DbPASSWORD,
		cfg.DB.DbNAME,
		cfg.DB.DbSSLMODE,
	)

	logger.Info.Printf("Подключаемся к БД: driver=%s, host=%s, dbname=%s", cfg.DB.Driver, cfg.DB.DbHOST, cfg.DB.DbNAME)

	db, err := sqlx.Connect(cfg.DB.Driver, connStr)
	if err != nil {
		return nil, fmt.Errorf("не удалось подключиться к БД: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	return prepare(&DB{db})
}

// OpenSQLite opens an embedded database. The pool is pinned to a single
// connection so that ":memory:" databases survive between queries.
func OpenSQLite(path string) (*DB, error) {
	dsn := path
	if path != ":memory:" {
		dsn = fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", path)
	}

	logger.Info.Printf("Подключаемся к БД: driver=%s, path=%s", DriverSQLite, path)

	db, err := sqlx.Connect(DriverSQLite, dsn)
	if err != nil {
		return nil, fmt.Errorf("не удалось подключиться к БД: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	return prepare(&DB{db})
}

func prepare(db *DB) (*DB, error) {
	if err := db.RunMigrations(); err != nil {
		db.Close()
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.HealthCheck(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("проверка БД не пройдена: %w", err)
	}

	logger.Info.Printf("Успешное подключение к БД (%s)", db.DriverName())
	return db, nil
}

func (db *DB) CloseDB() error {
	return db.DB.Close()
}

func (db *DB) RunMigrations() error {
	name := "migrations/postgres.sql"
	if db.DriverName() == DriverSQLite {
		name = "migrations/sqlite.sql"
	}

	migrationSQL, err := migrations.ReadFile(name)
	if err != nil {
		return fmt.Errorf("ошибка при чтении файла миграций: %w", err)
	}

	logger.Info.Printf("Применяем миграции из файла: %s", name)

	for _, stmt := range strings.Split(string(migrationSQL), ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("ошибка при выполнении миграций: %w", err)
		}
	}

	logger.Info.Println("Миграции успешно применены")
	return nil
}

func (db *DB) HealthCheck(ctx context.Context) error {
	if db == nil || db.DB == nil {
		return fmt.Errorf("подключение к БД не инициализировано")
	}

	return db.PingContext(ctx)
}

