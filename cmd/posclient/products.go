package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"pos-service/internal/localstore"
	"pos-service/internal/state"

	"github.com/spf13/cobra"
)

func newProductsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "products",
		Aliases: []string{"inventory"},
		Short:   "Manage the product inventory on this device",
	}
	cmd.AddCommand(
		newProductsListCmd(a),
		newProductsAddCmd(a),
		newProductsStockCmd(a),
		newProductsDeleteCmd(a),
	)
	return cmd
}

func newProductsListCmd(a *app) *cobra.Command {
	var f state.ProductFilter
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tCODE\tNAME\tCATEGORY\tQTY\tPRICE\tGST%")
			for _, p := range a.state.Inventory.Filter(f) {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d %s\t%.2f\t%g\n",
					p.ID, p.Code, p.Name, p.Category, p.Quantity, p.Unit, p.Price, p.GSTPercent)
			}
			fmt.Fprintf(w, "\t\t\t\tstock value\t%.2f\t\n", a.state.Inventory.TotalValue())
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&f.Search, "search", "", "match name, code or category")
	cmd.Flags().StringVar(&f.Category, "category", "", "only this category")
	cmd.Flags().BoolVar(&f.LowStockOnly, "low-stock", false, "only products at or below their threshold")
	return cmd
}

func newProductsAddCmd(a *app) *cobra.Command {
	var p localstore.Product
	var expiry string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a product",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if expiry != "" {
				t, err := time.Parse(time.DateOnly, expiry)
				if err != nil {
					return fmt.Errorf("invalid --expiry: %w", err)
				}
				p.ExpiryDate = &t
			}
			created, err := a.state.Inventory.Add(cmd.Context(), p)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s)\n", created.Name, created.ID)
			return nil
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&p.Code, "code", "", "barcode or short code")
	fl.StringVar(&p.Name, "name", "", "product name")
	fl.StringVar(&p.Category, "category", "", "category")
	fl.IntVar(&p.Quantity, "qty", 0, "opening stock")
	fl.StringVar(&p.Unit, "unit", "pcs", "unit of measure")
	fl.Float64Var(&p.Price, "price", 0, "selling price")
	fl.Float64Var(&p.GSTPercent, "gst", 0, "GST percent")
	fl.IntVar(&p.LowStockThreshold, "low-stock", 0, "low stock threshold")
	fl.StringVar(&expiry, "expiry", "", "expiry date (YYYY-MM-DD)")
	fl.StringVar(&p.Description, "description", "", "description")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newProductsStockCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stock <product-id> <delta>",
		Short: "Add or remove stock, e.g. `stock p1 -- -3`",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			delta, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid delta %q", args[1])
			}
			p, err := a.state.Inventory.AdjustStock(cmd.Context(), args[0], delta)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s now has %d %s\n", p.Name, p.Quantity, p.Unit)
			return nil
		},
	}
}

func newProductsDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <product-id>",
		Short: "Remove a product from this device",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.state.Inventory.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
}
