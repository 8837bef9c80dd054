package main

import (
	"errors"
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/eldtechnologies/lostfound/clients/go/lostfound"
)

func (a *app) claimCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "claim <item-id>",
		Short: "File a claim on an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			claim, err := a.client.CreateClaim(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Filed claim %s (%s)\n", claim.ID, claim.Status)
			fmt.Fprintf(cmd.OutOrStdout(), "Chat with the desk: lostfound chat %s\n", claim.ID)
			return nil
		},
	}
}

func (a *app) claimsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "claims",
		Short: "List your claims",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			claims, err := a.client.MyClaims(cmd.Context())
			if err != nil {
				return err
			}
			return printClaims(cmd, claims)
		},
	}
}

func (a *app) pendingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pending",
		Short: "List claims awaiting review (admin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			claims, err := a.client.PendingClaims(cmd.Context())
			if err != nil {
				return err
			}
			return printClaims(cmd, claims)
		},
	}
}

func (a *app) approveCmd() *cobra.Command {
	var remarks string
	cmd := &cobra.Command{
		Use:   "approve <claim-id>",
		Short: "Approve a claim (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client.ApproveClaim(cmd.Context(), args[0], remarks); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Claim %s approved\n", args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&remarks, "remarks", "", "optional approval remarks")
	return cmd
}

func (a *app) rejectCmd() *cobra.Command {
	var remarks string
	cmd := &cobra.Command{
		Use:   "reject <claim-id>",
		Short: "Reject a claim with a reason (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if remarks == "" {
				return errors.New("--remarks is required when rejecting a claim")
			}
			if err := a.client.RejectClaim(cmd.Context(), args[0], remarks); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Claim %s rejected\n", args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&remarks, "remarks", "", "rejection reason")
	return cmd
}

func (a *app) analyticsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analytics",
		Short: "Show claim analytics (admin)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := a.client.Analytics(cmd.Context())
			if err != nil {
				return err
			}
			keys := make([]string, 0, len(stats))
			for k := range stats {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, k := range keys {
				fmt.Fprintf(tw, "%s\t%v\n", k, stats[k])
			}
			return tw.Flush()
		},
	}
}

func printClaims(cmd *cobra.Command, claims []lostfound.Claim) error {
	if len(claims) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No claims")
		return nil
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tITEM\tSTATUS\tFILED\tREMARKS")
	for _, c := range claims {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", c.ID, c.Title(), c.Status, formatDate(c.CreatedAt), c.Remarks)
	}
	return tw.Flush()
}
