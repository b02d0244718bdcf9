package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"pos-service/internal/localstore"
	"pos-service/internal/state"
	"pos-service/pkg/syncapi"

	"github.com/spf13/cobra"
)

// parseLine splits "ref:qty" where ref is a product id or code; qty defaults to 1
func parseLine(arg string) (string, int, error) {
	ref, qtyStr, found := strings.Cut(arg, ":")
	if ref == "" {
		return "", 0, fmt.Errorf("invalid item %q", arg)
	}
	if !found {
		return ref, 1, nil
	}
	qty, err := strconv.Atoi(qtyStr)
	if err != nil || qty <= 0 {
		return "", 0, fmt.Errorf("invalid quantity in %q", arg)
	}
	return ref, qty, nil
}

func lookupProduct(inv *state.Inventory, ref string) (localstore.Product, error) {
	if p, ok := inv.Get(ref); ok {
		return p, nil
	}
	matches := inv.FindByCode(ref)
	switch len(matches) {
	case 0:
		return localstore.Product{}, fmt.Errorf("%w: %s", state.ErrProductNotFound, ref)
	case 1:
		return matches[0], nil
	default:
		return localstore.Product{}, fmt.Errorf("code %s matches %d products, use the id", ref, len(matches))
	}
}

func newSellCmd(a *app) *cobra.Command {
	var opts state.CheckoutOptions
	var operator, pin string
	cmd := &cobra.Command{
		Use:   "sell <id-or-code>[:qty]...",
		Short: "Ring up a sale and print the invoice",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if operator != "" {
				if _, err := a.state.Operators.Authenticate(cmd.Context(), operator, pin); err != nil {
					return err
				}
			}

			cart := state.NewCart()
			for _, arg := range args {
				ref, qty, err := parseLine(arg)
				if err != nil {
					return err
				}
				p, err := lookupProduct(a.state.Inventory, ref)
				if err != nil {
					return err
				}
				if err := cart.Add(p, qty); err != nil {
					return err
				}
			}

			txn, err := a.state.Transactions.Checkout(cmd.Context(), cart, opts)
			if err != nil {
				return err
			}
			return printInvoice(cmd.OutOrStdout(), txn)
		},
	}
	cmd.Flags().StringVar(&opts.PaymentMethod, "payment", "cash", "payment method")
	cmd.Flags().StringVar(&opts.CustomerName, "customer", "", "customer name")
	cmd.Flags().StringVar(&operator, "operator", "", "operator email, checked against --pin")
	cmd.Flags().StringVar(&pin, "pin", "", "operator pin")
	cmd.MarkFlagsRequiredTogether("operator", "pin")
	return cmd
}

func printInvoice(out io.Writer, txn *localstore.Transaction) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Invoice %s\t%s\n", txn.InvoiceNumber, txn.CreatedAt.Local().Format("2006-01-02 15:04"))
	if txn.CustomerName != "" {
		fmt.Fprintf(w, "Customer\t%s\n", txn.CustomerName)
	}
	for _, li := range txn.Items {
		fmt.Fprintf(w, "%s\t%d x %.2f\tGST %g%%\n", li.Name, li.Quantity, li.Price, li.GSTPercent)
	}
	fmt.Fprintf(w, "Subtotal\t%.2f\n", txn.Subtotal)
	fmt.Fprintf(w, "GST\t%.2f\n", txn.TaxTotal)
	fmt.Fprintf(w, "Total\t%.2f\t%s\n", txn.Total, txn.PaymentMethod)
	return w.Flush()
}

func newReturnCmd(a *app) *cobra.Command {
	var reason string
	cmd := &cobra.Command{
		Use:   "return <invoice-number> [<id-or-code>[:qty]...]",
		Short: "Take items back against an invoice; without items lists what can be returned",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			txn, err := findInvoice(a.state.Transactions, args[0])
			if err != nil {
				return err
			}

			if len(args) == 1 {
				items, err := a.state.Returns.Returnable(ctx, txn.ID)
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "PRODUCT\tNAME\tSOLD\tRETURNED\tREMAINING")
				for _, it := range items {
					fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\n", it.ProductID, it.Name, it.Sold, it.Returned, it.Remaining)
				}
				return w.Flush()
			}

			req := state.ReturnRequest{TransactionID: txn.ID, Reason: reason}
			for _, arg := range args[1:] {
				ref, qty, err := parseLine(arg)
				if err != nil {
					return err
				}
				req.Items = append(req.Items, state.ReturnLine{ProductID: invoiceProductID(txn, ref), Quantity: qty})
			}
			ret, err := a.state.Returns.Process(ctx, req)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Refund %.2f against %s\n", ret.RefundAmount, ret.InvoiceNumber)
			return nil
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "", "reason for the return")
	return cmd
}

func findInvoice(txns *state.Transactions, invoiceNumber string) (localstore.Transaction, error) {
	for _, t := range txns.List() {
		if strings.EqualFold(t.InvoiceNumber, invoiceNumber) {
			return t, nil
		}
	}
	return localstore.Transaction{}, fmt.Errorf("%w: %s", state.ErrTransactionMissing, invoiceNumber)
}

// invoiceProductID resolves a product code printed on the invoice to its id
func invoiceProductID(txn localstore.Transaction, ref string) string {
	for _, li := range txn.Items {
		if li.ProductID == ref {
			return ref
		}
	}
	for _, li := range txn.Items {
		if li.Code != "" && li.Code == ref {
			return li.ProductID
		}
	}
	return ref
}

// parsePeriod turns --from/--to dates into [from, to) covering whole days
func parsePeriod(from, to string) (time.Time, time.Time, error) {
	today := syncapi.Now().Local()
	start := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.Local)
	end := start.AddDate(0, 0, 1)

	if from != "" {
		t, err := time.ParseInLocation(time.DateOnly, from, time.Local)
		if err != nil {
			return start, end, fmt.Errorf("invalid --from: %w", err)
		}
		start = t
	}
	if to != "" {
		t, err := time.ParseInLocation(time.DateOnly, to, time.Local)
		if err != nil {
			return start, end, fmt.Errorf("invalid --to: %w", err)
		}
		end = t.AddDate(0, 0, 1)
	}
	if !end.After(start) {
		return start, end, errors.New("--to must not be before --from")
	}
	return start.UTC(), end.UTC(), nil
}

func newSalesCmd(a *app) *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   "sales",
		Short: "List invoices and totals for a period (default today)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			start, end, err := parsePeriod(from, to)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "INVOICE\tTIME\tITEMS\tTOTAL\tPAYMENT")
			for _, t := range a.state.Transactions.Between(start, end) {
				fmt.Fprintf(w, "%s\t%s\t%d\t%.2f\t%s\n",
					t.InvoiceNumber, t.CreatedAt.Local().Format("2006-01-02 15:04"), len(t.Items), t.Total, t.PaymentMethod)
			}
			s := a.state.Transactions.Summary(start, end)
			fmt.Fprintf(w, "\n%d invoices\trevenue %.2f\tGST %.2f\trefunds %.2f\n", s.Count, s.Revenue, s.TaxTotal, s.Refunds)
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "first day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "last day (YYYY-MM-DD)")
	return cmd
}
