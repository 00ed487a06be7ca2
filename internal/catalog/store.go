// Package catalog is the durable product catalog behind the optimizer.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql" // MySQL driver
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/nutrily/rationer/internal/contract"
	"github.com/nutrily/rationer/schema"
)

// productColumns lists the catalog columns after the name key, in the
// fixed nutrient order followed by the serving constraints.
const productColumns = "protein, saturated_fat, unsaturated_fat, simple_carbs, complex_carbs, soluble_fiber, insoluble_fiber, kcal, max_portions, step_grams"

// StoreImpl persists products using various database backends.
type StoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
	connStr string
}

var _ contract.CatalogStore = &StoreImpl{} // Compile-time check

// NewStore initializes and returns a new catalog store based on the
// backend type. The products table is created when missing.
func NewStore(backend schema.DatabaseBackend, connStr string) (contract.CatalogStore, error) {
	var db *sql.DB
	var err error

	switch backend {
	case schema.SQLiteBackend:
		dbPath := connStr
		if dbPath == "" {
			dbPath = contract.GetDBFilePath()
		}
		db, err = sql.Open("sqlite", dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite catalog at %q: %w. Ensure the directory is writable", dbPath, err)
		}
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)

	case schema.MySQLBackend:
		// connStr should be:
		// user:password@tcp(host:port)/dbname
		db, err = sql.Open("mysql", connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to MySQL catalog: %w. Check connection format: user:password@tcp(host:port)/dbname", err)
		}

	case schema.PostgreSQLBackend:
		// connStr should be:
		// host=localhost port=5432 user=postgres password=secret dbname=postgres
		db, err = sql.Open("pgx", connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to PostgreSQL catalog: %w. Check connection format: host=localhost port=5432 user=postgres dbname=mydb", err)
		}

	case schema.NoneBackend:
		// Return a no-op store for catalog-less operation
		return &StoreImpl{db: nil, backend: backend, connStr: connStr}, nil

	default:
		return nil, fmt.Errorf("unsupported catalog backend: %s. Must be sqlite, mysql, postgresql, or none", backend)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s database. Check that the server is running and connection parameters are valid: %w", backend, err)
	}

	if _, err := db.Exec(getCreateTableQuery(backend)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create products table: %w", err)
	}

	return &StoreImpl{db: db, backend: backend, connStr: connStr}, nil
}

// getCreateTableQuery returns the CREATE TABLE query for the given backend.
func getCreateTableQuery(backend schema.DatabaseBackend) string {
	switch backend {
	case schema.MySQLBackend:
		return `
			CREATE TABLE IF NOT EXISTS products (
				name VARCHAR(255) PRIMARY KEY,
				protein DOUBLE NOT NULL,
				saturated_fat DOUBLE NOT NULL,
				unsaturated_fat DOUBLE NOT NULL,
				simple_carbs DOUBLE NOT NULL,
				complex_carbs DOUBLE NOT NULL,
				soluble_fiber DOUBLE NOT NULL,
				insoluble_fiber DOUBLE NOT NULL,
				kcal DOUBLE NOT NULL,
				max_portions DOUBLE NOT NULL,
				step_grams DOUBLE NOT NULL
			);
		`

	case schema.PostgreSQLBackend:
		return `
			CREATE TABLE IF NOT EXISTS products (
				name TEXT PRIMARY KEY,
				protein DOUBLE PRECISION NOT NULL,
				saturated_fat DOUBLE PRECISION NOT NULL,
				unsaturated_fat DOUBLE PRECISION NOT NULL,
				simple_carbs DOUBLE PRECISION NOT NULL,
				complex_carbs DOUBLE PRECISION NOT NULL,
				soluble_fiber DOUBLE PRECISION NOT NULL,
				insoluble_fiber DOUBLE PRECISION NOT NULL,
				kcal DOUBLE PRECISION NOT NULL,
				max_portions DOUBLE PRECISION NOT NULL,
				step_grams DOUBLE PRECISION NOT NULL
			);
		`

	default: // SQLite
		return `
			CREATE TABLE IF NOT EXISTS products (
				name TEXT PRIMARY KEY,
				protein REAL NOT NULL,
				saturated_fat REAL NOT NULL,
				unsaturated_fat REAL NOT NULL,
				simple_carbs REAL NOT NULL,
				complex_carbs REAL NOT NULL,
				soluble_fiber REAL NOT NULL,
				insoluble_fiber REAL NOT NULL,
				kcal REAL NOT NULL,
				max_portions REAL NOT NULL,
				step_grams REAL NOT NULL
			);
		`
	}
}

// placeholders returns n parameter placeholders starting at position
// start, in the backend's syntax.
func (s *StoreImpl) placeholders(start, n int) string {
	parts := make([]string, n)
	for i := range parts {
		if s.backend == schema.PostgreSQLBackend {
			parts[i] = fmt.Sprintf("$%d", start+i)
		} else {
			parts[i] = "?"
		}
	}
	return strings.Join(parts, ", ")
}

// productArgs flattens a product into insert arguments, name first.
// The kcal column is always recomputed from the base components so the
// stored value can never drift from the derivation formula.
func productArgs(p schema.Product) []any {
	v := p.PerHundredGrams
	return []any{
		p.Name,
		v[schema.Protein],
		v[schema.SaturatedFat],
		v[schema.UnsaturatedFat],
		v[schema.SimpleCarbs],
		v[schema.ComplexCarbs],
		v[schema.SolubleFiber],
		v[schema.InsolubleFiber],
		schema.DeriveCalories(v),
		p.MaxPortions,
		p.StepGrams,
	}
}

// scanProduct reads one product row in column order.
func scanProduct(row interface{ Scan(...any) error }) (schema.Product, error) {
	var p schema.Product
	var kcal float64
	err := row.Scan(
		&p.Name,
		&p.PerHundredGrams[schema.Protein],
		&p.PerHundredGrams[schema.SaturatedFat],
		&p.PerHundredGrams[schema.UnsaturatedFat],
		&p.PerHundredGrams[schema.SimpleCarbs],
		&p.PerHundredGrams[schema.ComplexCarbs],
		&p.PerHundredGrams[schema.SolubleFiber],
		&p.PerHundredGrams[schema.InsolubleFiber],
		&kcal,
		&p.MaxPortions,
		&p.StepGrams,
	)
	if err != nil {
		return schema.Product{}, err
	}
	p.PerHundredGrams[schema.Calories] = kcal
	return p, nil
}

// ListProducts returns all products ordered by name.
func (s *StoreImpl) ListProducts(ctx context.Context) ([]schema.Product, error) {
	if s.db == nil {
		return nil, nil
	}
	query := fmt.Sprintf(`SELECT name, %s FROM products ORDER BY name`, productColumns)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var products []schema.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// GetProduct returns the product with the given name.
func (s *StoreImpl) GetProduct(ctx context.Context, name string) (schema.Product, error) {
	if s.db == nil {
		return schema.Product{}, contract.ErrProductNotFound
	}
	query := fmt.Sprintf(`SELECT name, %s FROM products WHERE name = %s`, productColumns, s.placeholders(1, 1))
	p, err := scanProduct(s.db.QueryRowContext(ctx, query, name))
	if errors.Is(err, sql.ErrNoRows) {
		return schema.Product{}, contract.ErrProductNotFound
	}
	if err != nil {
		return schema.Product{}, fmt.Errorf("failed to get product %q: %w", name, err)
	}
	return p, nil
}

// AddProduct inserts a new product. Uniqueness rides on the primary key,
// so concurrent adds of the same name cannot both succeed; the loser gets
// ErrProductExists.
func (s *StoreImpl) AddProduct(ctx context.Context, p schema.Product) error {
	if s.db == nil {
		return fmt.Errorf("catalog backend is disabled")
	}
	query := fmt.Sprintf(`INSERT INTO products (name, %s) VALUES (%s)`, productColumns, s.placeholders(1, 11))
	if _, err := s.db.ExecContext(ctx, query, productArgs(p)...); err != nil {
		if isDuplicateKey(err) {
			return fmt.Errorf("%w: %s", contract.ErrProductExists, p.Name)
		}
		return fmt.Errorf("failed to add product %q: %w", p.Name, err)
	}
	return nil
}

// isDuplicateKey reports whether err is the backend's unique-constraint
// violation on the products primary key.
func isDuplicateKey(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062 // ER_DUP_ENTRY
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// UpdateProduct replaces the product stored under name. The payload may
// carry a different name, which renames the entry.
func (s *StoreImpl) UpdateProduct(ctx context.Context, name string, p schema.Product) error {
	if s.db == nil {
		return fmt.Errorf("catalog backend is disabled")
	}
	cols := strings.Split("name, "+productColumns, ", ")
	assignments := make([]string, len(cols))
	for i, col := range cols {
		assignments[i] = fmt.Sprintf("%s = %s", col, s.placeholders(i+1, 1))
	}
	query := fmt.Sprintf(`UPDATE products SET %s WHERE name = %s`,
		strings.Join(assignments, ", "), s.placeholders(len(cols)+1, 1))

	args := append(productArgs(p), name)
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update product %q: %w", name, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", contract.ErrProductNotFound, name)
	}
	return nil
}

// DeleteProduct removes the product with the given name.
func (s *StoreImpl) DeleteProduct(ctx context.Context, name string) error {
	if s.db == nil {
		return fmt.Errorf("catalog backend is disabled")
	}
	query := fmt.Sprintf(`DELETE FROM products WHERE name = %s`, s.placeholders(1, 1))
	result, err := s.db.ExecContext(ctx, query, name)
	if err != nil {
		return fmt.Errorf("failed to delete product %q: %w", name, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", contract.ErrProductNotFound, name)
	}
	return nil
}

// ReplaceProducts atomically swaps the whole catalog for the given set.
func (s *StoreImpl) ReplaceProducts(ctx context.Context, products []schema.Product) error {
	if s.db == nil {
		return fmt.Errorf("catalog backend is disabled")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin catalog replace: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM products`); err != nil {
		return fmt.Errorf("failed to clear products: %w", err)
	}
	query := fmt.Sprintf(`INSERT INTO products (name, %s) VALUES (%s)`, productColumns, s.placeholders(1, 11))
	for _, p := range products {
		if _, err := tx.ExecContext(ctx, query, productArgs(p)...); err != nil {
			if isDuplicateKey(err) {
				return fmt.Errorf("%w: %s", contract.ErrProductExists, p.Name)
			}
			return fmt.Errorf("failed to insert product %q: %w", p.Name, err)
		}
	}
	return tx.Commit()
}

// Status returns status information about the catalog store.
func (s *StoreImpl) Status(ctx context.Context) (schema.CatalogStatus, error) {
	status := schema.CatalogStatus{
		Backend:   string(s.backend),
		Connected: s.db != nil,
	}
	if s.db == nil {
		return status, nil
	}

	row := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`)
	if err := row.Scan(&status.TotalProducts); err != nil {
		return status, fmt.Errorf("failed to count products: %w", err)
	}

	// Table size is approximate and backend-specific; failures degrade to 0.
	switch s.backend {
	case schema.SQLiteBackend:
		sizeQuery := "SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()"
		if err := s.db.QueryRowContext(ctx, sizeQuery).Scan(&status.TableSizeBytes); err != nil {
			status.TableSizeBytes = 0
		}
	case schema.MySQLBackend:
		cfg, err := mysql.ParseDSN(s.connStr)
		if err != nil || cfg.DBName == "" {
			break
		}
		sizeQuery := "SELECT data_length + index_length FROM information_schema.tables WHERE table_schema = ? AND table_name = ?"
		if err := s.db.QueryRowContext(ctx, sizeQuery, cfg.DBName, "products").Scan(&status.TableSizeBytes); err != nil {
			status.TableSizeBytes = 0
		}
	case schema.PostgreSQLBackend:
		if err := s.db.QueryRowContext(ctx, "SELECT pg_total_relation_size($1)", "products").Scan(&status.TableSizeBytes); err != nil {
			status.TableSizeBytes = 0
		}
	}
	return status, nil
}

// Close closes the underlying DB connection.
func (s *StoreImpl) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
