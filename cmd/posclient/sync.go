package main

import (
	"errors"
	"fmt"

	"pos-service/internal/syncclient"

	"github.com/spf13/cobra"
)

func newSyncCmd(a *app) *cobra.Command {
	var pushOnly, pullOnly bool
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Push local records to the server and pull remote changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if pushOnly && pullOnly {
				return errors.New("--push and --pull are mutually exclusive")
			}
			ctx := cmd.Context()
			userID, err := a.userID(ctx)
			if err != nil {
				return err
			}

			var res syncclient.Result
			switch {
			case pushOnly:
				res = a.client.Push(ctx, userID)
			case pullOnly:
				res = a.client.Pull(ctx, userID)
			default:
				res = a.client.BidirectionalSync(ctx, userID)
			}
			if !res.Success {
				return errors.New(res.Message)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, res.Message)
			if res.Pulled != nil && (res.Pulled.ProductsSkipped > 0 || res.Pulled.Conflicts > 0) {
				fmt.Fprintf(out, "Kept %d newer local products, %d invoice number conflicts\n",
					res.Pulled.ProductsSkipped, res.Pulled.Conflicts)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&pushOnly, "push", false, "only push local records")
	cmd.Flags().BoolVar(&pullOnly, "pull", false, "only pull remote changes")
	return cmd
}
