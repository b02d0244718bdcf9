package main

import (
	"fmt"
	"text/tabwriter"

	"pos-service/pkg/syncapi"

	"github.com/spf13/cobra"
)

func newStoresCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stores",
		Short: "List or register the account's stores on the server",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List stores",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID, err := a.userID(cmd.Context())
			if err != nil {
				return err
			}
			stores, err := a.client.ListStores(cmd.Context(), userID)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tPHONE\tGSTIN")
			for _, s := range stores {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.ID, s.Name, s.Phone, s.GSTNumber)
			}
			return w.Flush()
		},
	}

	var req syncapi.CreateStoreRequest
	create := &cobra.Command{
		Use:   "create",
		Short: "Register a store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID, err := a.userID(cmd.Context())
			if err != nil {
				return err
			}
			req.UserID = userID
			s, err := a.client.CreateStore(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created store %s (%s); set store_id to sync it\n", s.Name, s.ID)
			return nil
		},
	}
	create.Flags().StringVar(&req.Name, "name", "", "store name")
	create.Flags().StringVar(&req.Address, "address", "", "address")
	create.Flags().StringVar(&req.Phone, "phone", "", "phone")
	create.Flags().StringVar(&req.GSTNumber, "gstin", "", "GST registration number")
	_ = create.MarkFlagRequired("name")

	cmd.AddCommand(list, create)
	return cmd
}

func newFeedbackCmd(a *app) *cobra.Command {
	var req syncapi.FeedbackRequest
	cmd := &cobra.Command{
		Use:   "feedback",
		Short: "Send a rating and comment to the service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID, err := a.userID(cmd.Context())
			if err != nil {
				return err
			}
			req.UserID = userID
			if err := a.client.SendFeedback(cmd.Context(), req); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Thanks for the feedback")
			return nil
		},
	}
	cmd.Flags().IntVar(&req.Rating, "rating", 0, "1 to 5")
	cmd.Flags().StringVar(&req.Message, "message", "", "comment")
	_ = cmd.MarkFlagRequired("rating")
	return cmd
}
