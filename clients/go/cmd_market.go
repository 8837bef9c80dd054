package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func (a *app) salesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sales",
		Short: "List unclaimed items offered for sale",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := a.client.SaleItems(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tPRICE\tSTATUS")
			for _, it := range items {
				fmt.Fprintf(tw, "%s\t%s\t%.2f\t%s\n", it.ID, it.Name, it.Price, it.Status)
			}
			return tw.Flush()
		},
	}
}

func (a *app) buyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "buy <item-id>",
		Short: "Purchase a marketplace item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.client.Purchase(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !res.Success {
				return fmt.Errorf("purchase failed: %s", res.Message)
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Message)
			return nil
		},
	}
}
