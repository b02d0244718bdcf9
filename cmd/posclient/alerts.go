package main

import (
	"fmt"

	"pos-service/internal/state"
	"pos-service/pkg/syncapi"

	"github.com/spf13/cobra"
)

func newAlertsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "alerts",
		Short: "Show low stock and expiring products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			alerts := a.state.Inventory.Alerts(syncapi.Now(), a.cfg.ExpiryWindow)
			if len(alerts) == 0 {
				fmt.Fprintln(out, "No alerts")
				return nil
			}
			for _, al := range alerts {
				switch al.Kind {
				case state.AlertLowStock:
					fmt.Fprintf(out, "LOW STOCK  %s: %d left (threshold %d)\n", al.Name, al.Quantity, al.Threshold)
				case state.AlertExpired:
					fmt.Fprintf(out, "EXPIRED    %s: %s\n", al.Name, al.ExpiryDate.Format("2006-01-02"))
				case state.AlertExpiring:
					fmt.Fprintf(out, "EXPIRING   %s: %s\n", al.Name, al.ExpiryDate.Format("2006-01-02"))
				}
			}
			return nil
		},
	}
}
