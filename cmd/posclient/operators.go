package main

import (
	"fmt"
	"text/tabwriter"

	"pos-service/internal/state"

	"github.com/spf13/cobra"
)

func newOperatorsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "operators",
		Short: "Manage the people allowed to use this till",
	}

	var name, role, pin string
	add := &cobra.Command{
		Use:   "add <email>",
		Short: "Add an operator with a 4-6 digit pin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			op, err := a.state.Operators.Add(cmd.Context(), args[0], name, role, pin)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s as %s\n", op.Email, op.Role)
			return nil
		},
	}
	add.Flags().StringVar(&name, "name", "", "display name")
	add.Flags().StringVar(&role, "role", state.RoleCashier, "admin or cashier")
	add.Flags().StringVar(&pin, "pin", "", "4-6 digit pin")
	_ = add.MarkFlagRequired("name")
	_ = add.MarkFlagRequired("pin")

	list := &cobra.Command{
		Use:   "list",
		Short: "List operators",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ops, err := a.state.Operators.List(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "EMAIL\tNAME\tROLE\tACTIVE")
			for _, op := range ops {
				fmt.Fprintf(w, "%s\t%s\t%s\t%t\n", op.Email, op.Name, op.Role, op.Active)
			}
			return w.Flush()
		},
	}

	deactivate := &cobra.Command{
		Use:   "deactivate <email>",
		Short: "Block an operator from signing in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.state.Operators.Deactivate(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deactivated %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(add, list, deactivate)
	return cmd
}
