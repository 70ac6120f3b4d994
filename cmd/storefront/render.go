package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/javajoker/storefront/internal/cartapi"
	"github.com/javajoker/storefront/internal/models"
)

var (
	primary = lipgloss.Color("#7C3AED")
	muted   = lipgloss.Color("#6B7280")
	accent  = lipgloss.Color("#10B981")
)

type styles struct {
	Title  lipgloss.Style
	Muted  lipgloss.Style
	Bold   lipgloss.Style
	Amount lipgloss.Style
	Total  lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		Title: r.NewStyle().
			Foreground(primary).
			Bold(true),
		Muted: r.NewStyle().
			Foreground(muted),
		Bold: r.NewStyle().
			Bold(true),
		Amount: r.NewStyle().
			Width(12).
			Align(lipgloss.Right),
		Total: r.NewStyle().
			Foreground(accent).
			Bold(true).
			Width(12).
			Align(lipgloss.Right),
	}
}

func money(amount float64) string {
	return fmt.Sprintf("%.2f", amount)
}

func renderProducts(w io.Writer, page *cartapi.ProductPage) {
	s := newStyles(w)
	if len(page.Products) == 0 {
		fmt.Fprintln(w, s.Muted.Render("No products found."))
		return
	}

	fmt.Fprintln(w, s.Title.Render("Products"))
	for _, p := range page.Products {
		fmt.Fprintf(w, "%s  %s %s\n",
			s.Muted.Render(p.ID),
			s.Bold.Render(p.Name),
			s.Amount.Render(money(p.Price)),
		)
		meta := []string{p.Category, fmt.Sprintf("gst %.0f%%", p.GST), fmt.Sprintf("%d in stock", p.InventoryCount)}
		fmt.Fprintln(w, "  "+s.Muted.Render(strings.Join(meta, " · ")))
	}
	fmt.Fprintln(w, s.Muted.Render(fmt.Sprintf("page %d of %d, %d products",
		page.Pagination.Page, page.Pagination.TotalPages, page.Pagination.Total)))
}

func renderCart(w io.Writer, items []models.CartItem, summary models.CartSummary) {
	s := newStyles(w)
	if len(items) == 0 {
		fmt.Fprintln(w, s.Muted.Render("Your cart is empty."))
		return
	}

	fmt.Fprintln(w, s.Title.Render("Cart"))
	for _, item := range items {
		name := item.ProductID
		if item.Product != nil && item.Product.Name != "" {
			name = item.Product.Name
		}
		line := 0.0
		if item.ItemCalculations != nil {
			line = item.ItemCalculations.TotalAmount
		} else if item.Product != nil {
			line = models.CalculateItem(item.Product.Price, item.Product.GST, item.Quantity).TotalAmount
		}

		fmt.Fprintf(w, "%s  %s x%d %s\n",
			s.Muted.Render(item.ID),
			s.Bold.Render(name),
			item.Quantity,
			s.Amount.Render(money(line)),
		)
		if specs := formatSpecs(item.Specifications); specs != "" {
			fmt.Fprintln(w, "  "+s.Muted.Render(specs))
		}
	}
	fmt.Fprintln(w)
	renderSummary(w, summary)
}

func renderSummary(w io.Writer, summary models.CartSummary) {
	s := newStyles(w)
	fmt.Fprintf(w, "%-10s %s\n", "Items", s.Amount.Render(fmt.Sprintf("%d", summary.ItemCount)))
	fmt.Fprintf(w, "%-10s %s\n", "Subtotal", s.Amount.Render(money(summary.Subtotal)))
	fmt.Fprintf(w, "%-10s %s\n", "GST", s.Amount.Render(money(summary.GSTAmount)))
	fmt.Fprintf(w, "%-10s %s\n", "Total", s.Total.Render(money(summary.TotalAmount)))
}

func renderCheckout(w io.Writer, checkout *cartapi.Checkout) {
	s := newStyles(w)
	fmt.Fprintln(w, s.Title.Render("Checkout"))
	fmt.Fprintf(w, "%-10s %s\n", "Payment", checkout.PaymentID)
	fmt.Fprintf(w, "%-10s %s\n", "Status", checkout.Status)
	fmt.Fprintf(w, "%-10s %s %s\n", "Amount", s.Total.Render(money(checkout.Amount)), strings.ToUpper(checkout.Currency))
}

func formatSpecs(specs models.Specifications) string {
	if len(specs) == 0 {
		return ""
	}
	keys := make([]string, 0, len(specs))
	for k := range specs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, specs[k]))
	}
	return strings.Join(parts, ", ")
}
