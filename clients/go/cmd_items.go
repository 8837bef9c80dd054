package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/eldtechnologies/lostfound/clients/go/lostfound"
)

func (a *app) itemsCmd() *cobra.Command {
	var itemType, search string

	cmd := &cobra.Command{
		Use:   "items",
		Short: "List reported items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if itemType != "" && itemType != lostfound.ItemLost && itemType != lostfound.ItemFound {
				return fmt.Errorf("--type must be %q or %q", lostfound.ItemLost, lostfound.ItemFound)
			}
			items, err := a.client.ListItems(cmd.Context(), itemType)
			if err != nil {
				return err
			}
			items = lostfound.FilterItems(items, search)

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTYPE\tTITLE\tLOCATION\tREPORTED")
			for _, it := range items {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", it.ID, it.Type, it.Title, it.Location, formatDate(it.CreatedAt))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&itemType, "type", "", "only lost or found items")
	cmd.Flags().StringVarP(&search, "search", "s", "", "case-insensitive title/description filter")
	return cmd
}

func (a *app) reportCmd() *cobra.Command {
	var req lostfound.CreateItemRequest
	var imagePath string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Report a lost or found item",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if req.Type != lostfound.ItemLost && req.Type != lostfound.ItemFound {
				return fmt.Errorf("--type must be %q or %q", lostfound.ItemLost, lostfound.ItemFound)
			}
			if req.Title == "" {
				return errors.New("--title is required")
			}

			var image []byte
			if imagePath != "" {
				var err error
				if image, err = os.ReadFile(imagePath); err != nil {
					return fmt.Errorf("read image: %w", err)
				}
			}

			item, err := a.client.CreateItem(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Reported %s item %s\n", item.Type, item.ID)

			if image != nil {
				if err := a.client.UploadItemImage(cmd.Context(), item.ID, http.DetectContentType(image), image); err != nil {
					return fmt.Errorf("item %s created but image upload failed: %w", item.ID, err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Image uploaded")
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&req.Type, "type", lostfound.ItemLost, "lost or found")
	f.StringVar(&req.Title, "title", "", "item title")
	f.StringVar(&req.Location, "location", "", "where it was lost or found")
	f.StringVar(&req.Description, "description", "", "item description")
	f.StringVar(&imagePath, "image", "", "optional image file to attach")
	return cmd
}

func (a *app) matchesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "matches <item-id>",
		Short: "Show suggested matches for an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			matches, err := a.client.SuggestedMatches(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(matches) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No matches found")
				return nil
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tCONFIDENCE\tTITLE\tLOCATION")
			for _, m := range matches {
				fmt.Fprintf(tw, "%s\t%g%%\t%s\t%s\n", m.ID, m.ConfidenceScore, m.Title, m.Location)
			}
			return tw.Flush()
		},
	}
}

func formatDate(ts lostfound.Timestamp) string {
	if ts.IsZero() {
		return "-"
	}
	return ts.Local().Format("2006-01-02")
}
