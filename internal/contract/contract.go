// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"errors"

	"github.com/nutrily/rationer/schema"
)

// Catalog errors surfaced by store implementations. Callers match them
// with errors.Is to map onto CLI messages or HTTP statuses.
var (
	ErrProductNotFound = errors.New("product not found")
	ErrProductExists   = errors.New("product already exists")
)

// CatalogStore defines the operations the product catalog must support.
// The core never mutates products; the write operations serve the CLI,
// HTTP and MCP surfaces. Implementations must be safe for concurrent use.
type CatalogStore interface {
	// ListProducts returns all products ordered by name.
	ListProducts(ctx context.Context) ([]schema.Product, error)

	// GetProduct returns the product with the given name, or
	// ErrProductNotFound.
	GetProduct(ctx context.Context, name string) (schema.Product, error)

	// AddProduct inserts a new product, or returns ErrProductExists.
	AddProduct(ctx context.Context, p schema.Product) error

	// UpdateProduct replaces the product stored under name, or returns
	// ErrProductNotFound.
	UpdateProduct(ctx context.Context, name string, p schema.Product) error

	// DeleteProduct removes the product with the given name, or returns
	// ErrProductNotFound.
	DeleteProduct(ctx context.Context, name string) error

	// ReplaceProducts atomically swaps the whole catalog, used by CSV import.
	ReplaceProducts(ctx context.Context, products []schema.Product) error

	// Status reports backend, connectivity and row counts.
	Status(ctx context.Context) (schema.CatalogStatus, error)

	// Close releases the underlying connection.
	Close() error
}
