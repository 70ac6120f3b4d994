package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/javajoker/storefront/internal/cartapi"
	"github.com/javajoker/storefront/internal/models"
)

var (
	addQuantity int
	addSpecs    []string

	productsPage     int
	productsLimit    int
	productsSearch   string
	productsCategory string
)

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "List the catalog",
	Args:  cobra.NoArgs,
	RunE:  runProducts,
}

var addCmd = &cobra.Command{
	Use:   "add <product-id>",
	Short: "Add a product to the cart",
	Example: `  storefront add 6f1c... --qty 2
  storefront add 6f1c... --spec size=L --spec finish=matte`,
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

var updateCmd = &cobra.Command{
	Use:   "update <cart-item-id> <quantity>",
	Short: "Change the quantity of a cart line",
	Args:  cobra.ExactArgs(2),
	RunE:  runUpdate,
}

var removeCmd = &cobra.Command{
	Use:   "remove <cart-item-id>",
	Short: "Remove a line from the cart",
	Args:  cobra.ExactArgs(1),
	RunE:  runRemove,
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty the cart",
	Args:  cobra.NoArgs,
	RunE:  runClear,
}

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"cart"},
	Short:   "Show the cart",
	Args:    cobra.NoArgs,
	RunE:    runList,
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show cart totals",
	Args:  cobra.NoArgs,
	RunE:  runSummary,
}

var countCmd = &cobra.Command{
	Use:   "count",
	Short: "Print the number of units in the cart",
	Args:  cobra.NoArgs,
	RunE:  runCount,
}

func init() {
	addCmd.Flags().IntVarP(&addQuantity, "qty", "q", 1, "Quantity to add")
	addCmd.Flags().StringArrayVar(&addSpecs, "spec", nil, "Variant option as key=value (repeatable)")

	productsCmd.Flags().IntVar(&productsPage, "page", 1, "Page number")
	productsCmd.Flags().IntVar(&productsLimit, "limit", 20, "Products per page")
	productsCmd.Flags().StringVar(&productsSearch, "search", "", "Search by name or description")
	productsCmd.Flags().StringVar(&productsCategory, "category", "", "Filter by category")
}

func runProducts(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	page, err := shop.client.ListProducts(ctx, cartapi.ProductQuery{
		Page:     productsPage,
		Limit:    productsLimit,
		Search:   productsSearch,
		Category: productsCategory,
	})
	if err != nil {
		return err
	}
	renderProducts(cmd.OutOrStdout(), page)
	return nil
}

func runAdd(cmd *cobra.Command, args []string) error {
	specs, err := parseSpecs(addSpecs)
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	// The guest merge needs the current cart, so load it while the product
	// is being looked up.
	var product *cartapi.Product
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := shop.client.GetProduct(gctx, args[0])
		if err != nil {
			return fmt.Errorf("product %s: %w", args[0], err)
		}
		product = p
		return nil
	})
	g.Go(func() error {
		return shop.manager.FetchCart(gctx, false)
	})
	if err := g.Wait(); err != nil {
		return err
	}

	added, err := shop.manager.AddToCart(ctx, product.Snapshot(), addQuantity, specs)
	if err != nil {
		return err
	}
	if !added {
		return fmt.Errorf("cart is busy, try again")
	}
	renderCart(cmd.OutOrStdout(), shop.manager.Items(), shop.manager.GetCartSummary())
	return nil
}

func runUpdate(cmd *cobra.Command, args []string) error {
	quantity, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid quantity %q", args[1])
	}
	if quantity < 1 {
		return fmt.Errorf("quantity must be at least 1, use remove to drop a line")
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	if err := shop.manager.FetchCart(ctx, false); err != nil {
		return err
	}
	if _, err := shop.manager.UpdateCartItem(ctx, args[0], quantity); err != nil {
		return err
	}
	renderCart(cmd.OutOrStdout(), shop.manager.Items(), shop.manager.GetCartSummary())
	return nil
}

func runRemove(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	if err := shop.manager.FetchCart(ctx, false); err != nil {
		return err
	}
	if _, err := shop.manager.RemoveFromCart(ctx, args[0]); err != nil {
		return err
	}
	renderCart(cmd.OutOrStdout(), shop.manager.Items(), shop.manager.GetCartSummary())
	return nil
}

func runClear(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	return shop.manager.ClearCart(ctx)
}

func runList(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	if err := shop.manager.FetchCart(ctx, false); err != nil {
		return err
	}
	renderCart(cmd.OutOrStdout(), shop.manager.Items(), shop.manager.GetCartSummary())
	return nil
}

func runSummary(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	if err := shop.manager.FetchCart(ctx, false); err != nil {
		return err
	}
	renderSummary(cmd.OutOrStdout(), shop.manager.GetCartSummary())
	return nil
}

func runCount(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	if !shop.auth.IsAuthenticated() {
		if err := shop.manager.FetchCart(ctx, false); err != nil {
			return err
		}
	}
	count, err := shop.manager.Count(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), count)
	return nil
}

// parseSpecs turns repeated key=value flags into a selection. Numeric and
// boolean values keep their JSON type.
func parseSpecs(pairs []string) (models.Specifications, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	specs := make(models.Specifications, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --spec %q, expected key=value", pair)
		}
		value = strings.TrimSpace(value)
		switch {
		case value == "true" || value == "false":
			specs[key] = value == "true"
		default:
			if n, err := strconv.ParseFloat(value, 64); err == nil {
				specs[key] = n
			} else {
				specs[key] = value
			}
		}
	}
	return specs, nil
}
