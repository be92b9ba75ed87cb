package shell

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strconv"

	"github.com/rogerio-castellano/inventory-shell/internal/models"
	"github.com/rogerio-castellano/inventory-shell/internal/repo"
)

func (s *Shell) addProduct(ctx context.Context) error {
	name, err := s.promptText(ctx, "Enter a product name to add: ", "Name", "required")
	if err != nil {
		return err
	}
	quantity, err := s.promptInt(ctx, "Enter the quantity: ", "Quantity", models.QuantityRule)
	if err != nil {
		return err
	}
	price, err := s.promptFloat(ctx, "Enter the price: ", "Price", "gte=0")
	if err != nil {
		return err
	}

	product := models.Product{Name: name, Quantity: quantity, Price: price}
	if err := s.validate.Struct(product); err != nil {
		return fmt.Errorf("invalid product: %w", err)
	}

	ctx, cancel := s.storeContext(ctx)
	defer cancel()

	created, err := s.repo.Create(ctx, product)
	if err != nil {
		return err
	}
	s.logger.Info().Str("id", created.ID).Str("name", created.Name).Msg("product added")
	fmt.Fprintln(s.out, "Product added!")
	return nil
}

func (s *Shell) deleteProduct(ctx context.Context) error {
	name, err := s.promptText(ctx, "Enter a product name to delete: ", "Name", "required")
	if err != nil {
		return err
	}

	ctx, cancel := s.storeContext(ctx)
	defer cancel()

	deleted, err := s.repo.DeleteByName(ctx, name)
	if err != nil {
		return err
	}
	if !deleted {
		fmt.Fprintf(s.out, "No product named %q found.\n", name)
		return nil
	}
	s.logger.Info().Str("name", name).Msg("product deleted")
	fmt.Fprintln(s.out, "Product deleted!")
	return nil
}

func (s *Shell) listProducts(ctx context.Context) error {
	ctx, cancel := s.storeContext(ctx)
	defer cancel()

	fmt.Fprintln(s.out, "Current products in your inventory:")
	return s.printProducts(s.repo.All(ctx), "No products in your inventory.")
}

func (s *Shell) searchProducts(ctx context.Context) error {
	prefix, err := s.promptText(ctx, "Enter a product name to search: ", "Name", "required")
	if err != nil {
		return err
	}

	ctx, cancel := s.storeContext(ctx)
	defer cancel()

	return s.printProducts(s.repo.Search(ctx, prefix), "Product not found")
}

func (s *Shell) updateQuantity(ctx context.Context) error {
	pattern, err := s.promptText(ctx, "Enter the product name: ", "Name", "required")
	if err != nil {
		return err
	}
	quantity, err := s.promptInt(ctx, "Enter the new quantity: ", "Quantity", models.QuantityRule)
	if err != nil {
		return err
	}

	ctx, cancel := s.storeContext(ctx)
	defer cancel()

	n, err := s.repo.UpdateQuantity(ctx, pattern, quantity, s.settings.UpdateMode)
	switch {
	case errors.Is(err, repo.ErrProductNotFound):
		fmt.Fprintln(s.out, "Product not found")
		return nil
	case errors.Is(err, repo.ErrAmbiguousMatch):
		fmt.Fprintf(s.out, "More than one product matches %q. Please use a more specific name.\n", pattern)
		return nil
	case err != nil:
		return err
	}

	s.logger.Info().Str("pattern", pattern).Int("quantity", quantity).Int64("updated", n).Msg("quantity updated")
	if n == 1 {
		fmt.Fprintln(s.out, "Quantity updated!")
	} else {
		fmt.Fprintf(s.out, "Quantity updated for %d products!\n", n)
	}
	return nil
}

func (s *Shell) report(ctx context.Context) error {
	ctx, cancel := s.storeContext(ctx)
	defer cancel()

	totals, err := s.repo.Totals(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Total quantity: %d\n", totals.Quantity)
	fmt.Fprintf(s.out, "Total inventory value: %s\n", formatPrice(totals.Value))
	return nil
}

func (s *Shell) lowStock(ctx context.Context) error {
	threshold, err := s.promptInt(ctx, "Specify a stock threshold: ", "Threshold", models.QuantityRule)
	if err != nil {
		return err
	}

	ctx, cancel := s.storeContext(ctx)
	defer cancel()

	return s.printProducts(s.repo.LowStock(ctx, threshold), fmt.Sprintf("No products at or below %d.", threshold))
}

func (s *Shell) printProducts(seq iter.Seq2[models.Product, error], empty string) error {
	i := 0
	for p, err := range seq {
		if err != nil {
			return err
		}
		i++
		fmt.Fprintf(s.out, "%d. Product Name: %s\n   Quantity: %d\n   Price: %s\n", i, p.Name, p.Quantity, formatPrice(p.Price))
	}
	if i == 0 {
		fmt.Fprintln(s.out, empty)
	}
	return nil
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
