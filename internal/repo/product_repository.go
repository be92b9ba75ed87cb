package repo

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/rogerio-castellano/inventory-shell/internal/models"
)

// ProductRepository defines the interface for product data operations.
type ProductRepository interface {
	Create(ctx context.Context, product models.Product) (models.Product, error)
	DeleteByName(ctx context.Context, name string) (bool, error)
	All(ctx context.Context) iter.Seq2[models.Product, error]
	Search(ctx context.Context, prefix string) iter.Seq2[models.Product, error]
	UpdateQuantity(ctx context.Context, pattern string, quantity int, mode UpdateMode) (int64, error)
	Totals(ctx context.Context) (Totals, error)
	LowStock(ctx context.Context, threshold int) iter.Seq2[models.Product, error]
}

// Totals is the inventory report: summed quantity and summed quantity*price.
type Totals struct {
	Quantity int64   `bson:"total_quantity" json:"total_quantity"`
	Value    float64 `bson:"total_value" json:"total_value"`
}

// UpdateMode selects which records UpdateQuantity touches when the pattern
// matches more than one product.
type UpdateMode string

const (
	UpdateFirst  UpdateMode = "first"
	UpdateAll    UpdateMode = "all"
	UpdateUnique UpdateMode = "unique"
)

// ParseUpdateMode converts a configuration value into an UpdateMode.
func ParseUpdateMode(s string) (UpdateMode, error) {
	switch m := UpdateMode(s); m {
	case UpdateFirst, UpdateAll, UpdateUnique:
		return m, nil
	case "":
		return UpdateFirst, nil
	default:
		return "", fmt.Errorf("unknown update mode %q", s)
	}
}

var (
	// ErrProductNotFound is returned when no product matches a lookup.
	ErrProductNotFound = errors.New("product not found")
	// ErrAmbiguousMatch is returned by UpdateQuantity in UpdateUnique mode when
	// the pattern matches more than one product.
	ErrAmbiguousMatch = errors.New("pattern matches more than one product")
)

// Collect drains a product sequence into a slice, stopping at the first error.
func Collect(seq iter.Seq2[models.Product, error]) ([]models.Product, error) {
	products := []models.Product{}
	for p, err := range seq {
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, nil
}
