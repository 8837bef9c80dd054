// Command lostfound is a command line client for the lost-and-found service.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/eldtechnologies/lostfound/clients/go/lostfound"
	"github.com/eldtechnologies/lostfound/internal/config"
)

// app holds what every subcommand needs once flags are parsed.
type app struct {
	cfg    *config.ClientConfig
	client *lostfound.Client
	logger zerolog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{cfg: config.LoadClient()}

	root := &cobra.Command{
		Use:           "lostfound",
		Short:         "Lost-and-found command line client",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := zerolog.InfoLevel
			if a.cfg.Debug {
				level = zerolog.DebugLevel
			}
			a.logger = zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), TimeFormat: time.Kitchen}).
				Level(level).
				With().
				Timestamp().
				Logger()
			a.client = lostfound.NewClient(a.cfg.BaseURL, a.cfg.Token)
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfg.BaseURL, "url", a.cfg.BaseURL, "server base URL (LOSTFOUND_URL)")
	flags.StringVar(&a.cfg.Token, "token", a.cfg.Token, "bearer token (LOSTFOUND_TOKEN)")
	flags.StringVar(&a.cfg.UserID, "user", a.cfg.UserID, "your user id; looked up from the profile when empty (LOSTFOUND_USER)")
	flags.DurationVar(&a.cfg.PollInterval, "poll", a.cfg.PollInterval, "chat poll interval (LOSTFOUND_POLL_INTERVAL)")
	flags.BoolVar(&a.cfg.Debug, "debug", a.cfg.Debug, "debug logging (LOSTFOUND_DEBUG)")

	root.AddCommand(
		a.healthCmd(),
		a.itemsCmd(),
		a.reportCmd(),
		a.matchesCmd(),
		a.claimCmd(),
		a.claimsCmd(),
		a.pendingCmd(),
		a.approveCmd(),
		a.rejectCmd(),
		a.analyticsCmd(),
		a.profileCmd(),
		a.salesCmd(),
		a.buyCmd(),
		a.chatCmd(),
	)
	return root
}

func (a *app) healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Show server health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := a.client.Health(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
