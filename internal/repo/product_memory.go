package repo

import (
	"context"
	"iter"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/rogerio-castellano/inventory-shell/internal/models"
)

// InMemoryProductRepository is an in-memory implementation of ProductRepository.
// Records are kept in insertion order.
type InMemoryProductRepository struct {
	products []models.Product
	nextID   int
}

// NewInMemoryProductRepository creates a new instance of InMemoryProductRepository.
func NewInMemoryProductRepository() *InMemoryProductRepository {
	return &InMemoryProductRepository{
		products: []models.Product{},
		nextID:   1,
	}
}

// Create adds a new product to the repository. Duplicate names are accepted.
func (r *InMemoryProductRepository) Create(_ context.Context, product models.Product) (models.Product, error) {
	product.ID = strconv.Itoa(r.nextID)
	r.nextID++
	r.products = append(r.products, product)
	return product, nil
}

// DeleteByName removes the first product whose name equals name.
func (r *InMemoryProductRepository) DeleteByName(_ context.Context, name string) (bool, error) {
	for i, p := range r.products {
		if p.Name == name {
			r.products = append(r.products[:i], r.products[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r *InMemoryProductRepository) All(ctx context.Context) iter.Seq2[models.Product, error] {
	return r.filter(ctx, ProductFilter{})
}

func (r *InMemoryProductRepository) Search(ctx context.Context, prefix string) iter.Seq2[models.Product, error] {
	return r.filter(ctx, ProductFilter{NamePrefix: prefix})
}

func (r *InMemoryProductRepository) LowStock(ctx context.Context, threshold int) iter.Seq2[models.Product, error] {
	return r.filter(ctx, ProductFilter{MaxQty: &threshold})
}

func (r *InMemoryProductRepository) filter(ctx context.Context, pf ProductFilter) iter.Seq2[models.Product, error] {
	snapshot := append([]models.Product(nil), r.products...)
	return func(yield func(models.Product, error) bool) {
		for _, p := range snapshot {
			if err := ctx.Err(); err != nil {
				yield(models.Product{}, err)
				return
			}
			if matchesFilter(p, pf) && !yield(p, nil) {
				return
			}
		}
	}
}

// UpdateQuantity sets the quantity of the products whose name contains pattern.
func (r *InMemoryProductRepository) UpdateQuantity(_ context.Context, pattern string, quantity int, mode UpdateMode) (int64, error) {
	pf := ProductFilter{NameContains: pattern}

	var matches []int
	for i, p := range r.products {
		if matchesFilter(p, pf) {
			matches = append(matches, i)
		}
	}

	switch {
	case len(matches) == 0:
		return 0, ErrProductNotFound
	case mode == UpdateUnique && len(matches) > 1:
		return 0, ErrAmbiguousMatch
	case mode != UpdateAll:
		matches = matches[:1]
	}

	for _, i := range matches {
		r.products[i].Quantity = quantity
	}
	return int64(len(matches)), nil
}

// Totals sums quantities and stock value. Value is accumulated as a decimal
// so that repeated float additions do not drift.
func (r *InMemoryProductRepository) Totals(_ context.Context) (Totals, error) {
	var qty int64
	value := decimal.Zero
	for _, p := range r.products {
		qty += int64(p.Quantity)
		value = value.Add(decimal.NewFromFloat(p.Price).Mul(decimal.NewFromInt(int64(p.Quantity))))
	}
	return Totals{Quantity: qty, Value: value.InexactFloat64()}, nil
}
