package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/lib/pq"
	"github.com/xlaiver/cl4projectsurebet-vip/internal/domain"
	_ "modernc.org/sqlite"
)

const (
	dialectPostgres = "postgres"
	dialectSQLite   = "sqlite"

	migrationsTable = "customers_schema_migrations"
)

// SQLRepository stores customer records in Postgres (remote) or SQLite (local file).
type SQLRepository struct {
	db      *sql.DB
	dialect string
}

func NewPostgresRepository(cred *Credentials) (*SQLRepository, error) {
	psqlconn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cred.Host,
		cred.Port,
		cred.User,
		cred.Password,
		cred.DBName)

	db, err := sql.Open("postgres", psqlconn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if e2 := db.Ping(); e2 != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", e2)
	}

	db.SetMaxOpenConns(100)
	db.SetMaxIdleConns(10)
	return &SQLRepository{db: db, dialect: dialectPostgres}, nil
}

// NewSQLiteRepository opens a SQLite file. ":memory:" gives a private in-memory database.
func NewSQLiteRepository(path string) (*SQLRepository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// one connection: SQLite serializes writers anyway, and ":memory:" is per-connection
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLRepository{db: db, dialect: dialectSQLite}, nil
}

// NewSQLRepositoryWithDB wraps an existing handle; dialect is "postgres" or "sqlite".
func NewSQLRepositoryWithDB(db *sql.DB, dialect string) *SQLRepository {
	return &SQLRepository{db: db, dialect: dialect}
}

func (r *SQLRepository) RunMigrations(migrationsPath string) error {
	var (
		driver database.Driver
		err    error
	)
	switch r.dialect {
	case dialectPostgres:
		driver, err = postgres.WithInstance(r.db, &postgres.Config{MigrationsTable: migrationsTable})
	case dialectSQLite:
		driver, err = sqlite.WithInstance(r.db, &sqlite.Config{MigrationsTable: migrationsTable})
	default:
		return fmt.Errorf("unsupported dialect %q", r.dialect)
	}
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", migrationsPath),
		r.dialect,
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if e2 := m.Up(); e2 != nil && !errors.Is(e2, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", e2)
	}

	return nil
}

func (r *SQLRepository) Insert(ctx context.Context, customer *domain.Customer) error {
	rec, err := toRecord(customer)
	if err != nil {
		return err
	}

	query := `INSERT INTO customers (id, name, email, phone, purchase_date, total, payment_method, items)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, insertErr := r.db.ExecContext(ctx, query,
		rec.ID,
		rec.Name,
		rec.Email,
		rec.Phone,
		rec.PurchaseDate,
		rec.Total.String(),
		rec.PaymentMethod,
		rec.Items)

	if insertErr != nil {
		if r.isUniqueViolation(insertErr) {
			return ErrDuplicateCustomer
		}
		return fmt.Errorf("insert customer: %w", insertErr)
	}
	return nil
}

func (r *SQLRepository) ListAll(ctx context.Context) ([]*domain.Customer, error) {
	query := `SELECT id, name, email, phone, purchase_date, total, payment_method, items
	          FROM customers ORDER BY purchase_date DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query customers: %w", err)
	}
	defer rows.Close()

	var customers []*domain.Customer
	for rows.Next() {
		var rec record
		if err := rows.Scan(
			&rec.ID,
			&rec.Name,
			&rec.Email,
			&rec.Phone,
			&rec.PurchaseDate,
			&rec.Total,
			&rec.PaymentMethod,
			&rec.Items,
		); err != nil {
			return nil, fmt.Errorf("scan customer row: %w", err)
		}
		c, err := rec.toCustomer()
		if err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return customers, nil
}

func (r *SQLRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLRepository) Close() error {
	return r.db.Close()
}

func (r *SQLRepository) isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
