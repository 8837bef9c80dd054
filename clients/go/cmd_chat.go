package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/eldtechnologies/lostfound/clients/go/lostfound"
	"github.com/eldtechnologies/lostfound/clients/go/lostfound/chatsync"
)

const chatHelp = `Type a message and press Enter to send.
  /refresh  fetch new messages now
  /view     redraw the whole conversation
  /quit     leave the chat`

var errQuit = errors.New("quit")

func (a *app) chatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat <claim-id>",
		Short: "Chat with the lost-and-found desk about a claim",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, userName := a.cfg.UserID, ""
			if userID == "" {
				p, err := a.client.GetProfile(cmd.Context())
				if err != nil {
					return fmt.Errorf("look up user id (set --user to skip): %w", err)
				}
				userID, userName = p.UID, p.DisplayName
			}

			ctrl := chatsync.New(a.client, chatsync.Options{
				UserID:       userID,
				UserName:     userName,
				PollInterval: a.cfg.PollInterval,
				Logger:       &a.logger,
			})
			s := &chatSession{
				ctrl:   ctrl,
				userID: userID,
				in:     cmd.InOrStdin(),
				out:    cmd.OutOrStdout(),
				logger: a.logger,
			}
			return s.run(cmd.Context(), args[0])
		},
	}
}

// chatSession connects a chatsync.Controller to a line-oriented terminal.
type chatSession struct {
	ctrl   *chatsync.Controller
	userID string
	in     io.Reader
	out    io.Writer
	logger zerolog.Logger

	mu        sync.Mutex
	printed   map[string]bool
	lastState chatsync.State
}

func (s *chatSession) run(ctx context.Context, claimID string) error {
	s.printed = make(map[string]bool)

	if err := s.ctrl.Open(ctx, claimID); err != nil {
		if errors.Is(err, chatsync.ErrNotFound) {
			return fmt.Errorf("claim %s not found", claimID)
		}
		return err
	}
	defer s.ctrl.Close()

	fmt.Fprintf(s.out, "Chat for claim %s\n%s\n\n", claimID, chatHelp)
	s.render()

	g, gctx := errgroup.WithContext(ctx)

	// The scanner cannot be interrupted, so it stays outside the group.
	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(s.in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-gctx.Done():
				return
			}
		}
	}()

	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-s.ctrl.Updates():
				s.render()
			}
		}
	})

	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case line, ok := <-lines:
				if !ok {
					return errQuit
				}
				if err := s.handleLine(gctx, line); err != nil {
					return err
				}
			}
		}
	})

	err := g.Wait()
	s.render()
	if errors.Is(err, errQuit) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (s *chatSession) handleLine(ctx context.Context, line string) error {
	line = strings.TrimSpace(line)
	switch line {
	case "":
		return nil
	case "/quit", "/exit":
		return errQuit
	case "/help":
		fmt.Fprintln(s.out, chatHelp)
		return nil
	case "/refresh":
		if err := s.ctrl.Refresh(ctx); err != nil {
			fmt.Fprintf(s.out, "! refresh failed: %v\n", err)
			return nil
		}
		s.render()
		return nil
	case "/view":
		s.redraw()
		return nil
	}

	err := s.ctrl.Send(ctx, line)
	var sendErr *chatsync.SendFailedError
	switch {
	case err == nil:
		s.render()
	case errors.As(err, &sendErr):
		fmt.Fprintf(s.out, "! not sent: %v\n  your message: %s\n", sendErr.Err, line)
	case errors.Is(err, chatsync.ErrClosed):
		return errQuit
	default:
		fmt.Fprintf(s.out, "! %v\n", err)
	}
	return nil
}

// render prints confirmed messages that have not been shown yet and reports
// sync state changes.
func (s *chatSession) render() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range s.ctrl.View() {
		if m.Pending || s.printed[m.ID] {
			continue
		}
		s.printed[m.ID] = true
		fmt.Fprintln(s.out, s.formatMessage(m))
	}

	state := s.ctrl.State()
	if state == s.lastState {
		return
	}
	switch {
	case state == chatsync.StateError:
		fmt.Fprintf(s.out, "! connection problem, retrying: %v\n", s.ctrl.Err())
	case s.lastState == chatsync.StateError && (state == chatsync.StateSynced || state == chatsync.StateSyncedPending):
		fmt.Fprintln(s.out, "* reconnected")
	}
	s.lastState = state
}

// redraw prints the whole view, pending messages included.
func (s *chatSession) redraw() {
	s.mu.Lock()
	defer s.mu.Unlock()

	view := s.ctrl.View()
	fmt.Fprintf(s.out, "--- %d messages (%s) ---\n", len(view), s.ctrl.State())
	for _, m := range view {
		if !m.Pending {
			s.printed[m.ID] = true
		}
		fmt.Fprintln(s.out, s.formatMessage(m))
	}
	fmt.Fprintln(s.out, "---")
}

func (s *chatSession) formatMessage(m chatsync.Message) string {
	name := m.SenderName
	switch {
	case m.SenderID == s.userID:
		name = "You"
	case name == "":
		name = lostfound.DefaultSenderName
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s: %s", m.Timestamp.Local().Format("Jan 2 15:04"), name, m.Content)
	if m.IsProofRequest {
		b.WriteString("  [proof requested]")
	}
	if m.Pending {
		b.WriteString("  (sending)")
	}
	return b.String()
}
