package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eldtechnologies/lostfound/clients/go/lostfound"
)

func (a *app) profileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show your profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.client.GetProfile(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), p)
		},
	}

	var req lostfound.UpdateProfileRequest
	set := &cobra.Command{
		Use:   "set",
		Short: "Update your display name and phone number",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Unset flags keep the current values.
			current, err := a.client.GetProfile(cmd.Context())
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("name") {
				req.DisplayName = current.DisplayName
			}
			if !cmd.Flags().Changed("phone") {
				req.PhoneNumber = current.PhoneNumber
			}
			if err := a.client.UpdateProfile(cmd.Context(), req); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Profile updated")
			return nil
		},
	}
	set.Flags().StringVar(&req.DisplayName, "name", "", "display name")
	set.Flags().StringVar(&req.PhoneNumber, "phone", "", "phone number")

	cmd.AddCommand(set)
	return cmd
}
