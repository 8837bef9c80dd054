// Package chatsync keeps a local, ordered, duplicate-free view of one claim
// conversation in sync with the server.
//
// The view merges three inputs: the initial load, a recurring poll and
// messages sent from this client. Sent messages are echoed into the view
// immediately and replaced by the server's copy once a later fetch returns
// it. Every change is computed off to the side and swapped in whole, so
// readers never see a message vanish and come back within one cycle.
package chatsync

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/eldtechnologies/lostfound/clients/go/lostfound"
	"github.com/eldtechnologies/lostfound/internal/metrics"
)

const (
	DefaultPollInterval   = 5 * time.Second
	DefaultRequestTimeout = 10 * time.Second
	DefaultClockSkew      = 2 * time.Minute
)

// ChatAPI is the server side of a claim conversation. *lostfound.Client
// implements it.
type ChatAPI interface {
	GetClaimChat(ctx context.Context, claimID string) ([]lostfound.ChatMessage, error)
	SendChatMessage(ctx context.Context, claimID, content string) (*lostfound.ChatMessage, error)
}

// State is the synchronization state of a Controller.
type State int

const (
	StateClosed State = iota
	StateLoading
	StateSynced
	StateSyncedPending
	StateError
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateLoading:
		return "loading"
	case StateSynced:
		return "synced"
	case StateSyncedPending:
		return "synced_pending"
	case StateError:
		return "error"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Options configures a Controller. Zero values select the defaults.
type Options struct {
	UserID         string
	UserName       string
	PollInterval   time.Duration
	RequestTimeout time.Duration
	// ClockSkew is how far a server timestamp may lag the local send time
	// and still confirm a pending message.
	ClockSkew time.Duration
	Logger    *zerolog.Logger
	Now       func() time.Time
}

// Controller owns the message view of one claim conversation.
type Controller struct {
	api    ChatAPI
	opts   Options
	logger zerolog.Logger

	// sem serializes fetch+merge cycles.
	sem     chan struct{}
	updates chan struct{}

	mu      sync.Mutex
	claimID string
	state   State
	gen     uint64
	err     error
	life    context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	server  []entry
	seen    map[string]seenInfo
	nextSeq uint64
	pending []*pendingMessage
	view    []Message
}

type seenInfo struct {
	seq       uint64
	firstSeen time.Time
}

// New creates a closed Controller.
func New(api ChatAPI, opts Options) *Controller {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = DefaultRequestTimeout
	}
	if opts.ClockSkew <= 0 {
		opts.ClockSkew = DefaultClockSkew
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	return &Controller{
		api:     api,
		opts:    opts,
		logger:  logger.With().Str("component", "chatsync").Logger(),
		sem:     make(chan struct{}, 1),
		updates: make(chan struct{}, 1),
	}
}

// Open starts synchronizing claimID: it loads the conversation and starts
// the recurring poll. It returns ErrNotFound if the claim does not exist, in
// which case the controller stays closed. Other load failures leave the
// controller open in StateError; the next poll retries.
func (c *Controller) Open(ctx context.Context, claimID string) error {
	c.mu.Lock()
	if c.state != StateClosed {
		c.mu.Unlock()
		return ErrAlreadyOpen
	}
	c.gen++
	gen := c.gen
	life, cancel := context.WithCancel(context.Background())
	c.claimID = claimID
	c.state = StateLoading
	c.err = nil
	c.life = life
	c.cancel = cancel
	c.server = nil
	c.seen = make(map[string]seenInfo)
	c.nextSeq = 0
	c.pending = nil
	c.publish(nil)
	c.mu.Unlock()

	c.logger.Debug().Str("claim_id", claimID).Msg("opening conversation")

	err := c.refresh(ctx, gen, true)
	if errors.Is(err, ErrNotFound) {
		c.mu.Lock()
		if c.gen == gen {
			c.gen++
			c.state = StateClosed
			c.cancel = nil
			c.life = nil
		}
		c.mu.Unlock()
		cancel()
		return err
	}

	c.mu.Lock()
	if c.gen != gen {
		c.mu.Unlock()
		cancel()
		return ErrClosed
	}
	done := make(chan struct{})
	c.done = done
	c.mu.Unlock()

	go c.poll(life, gen, done)
	return nil
}

// Close stops synchronization. Results of refreshes still in flight are
// discarded. The last view stays readable with unconfirmed messages removed.
// Close is safe to call repeatedly.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.state == StateClosed {
		c.mu.Unlock()
		return
	}
	c.gen++
	c.state = StateClosed
	cancel, done := c.cancel, c.done
	c.cancel, c.done, c.life = nil, nil, nil
	c.pending = nil
	c.rebuild()
	claimID := c.claimID
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
	c.logger.Debug().Str("claim_id", claimID).Msg("conversation closed")
}

// Refresh fetches the full message list and merges it into the view. If
// another refresh is in flight, Refresh waits for it and then runs.
func (c *Controller) Refresh(ctx context.Context) error {
	c.mu.Lock()
	gen, state := c.gen, c.state
	c.mu.Unlock()
	if state == StateClosed {
		return ErrClosed
	}
	return c.refresh(ctx, gen, true)
}

// Send posts content to the conversation. The message shows up in the view
// immediately as pending. On failure the pending entry is removed and a
// *SendFailedError is returned; the caller should keep the composed text so
// the user can retry.
func (c *Controller) Send(ctx context.Context, content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return ErrEmptyMessage
	}

	c.mu.Lock()
	if c.state == StateClosed {
		c.mu.Unlock()
		return ErrClosed
	}
	gen, claimID, life := c.gen, c.claimID, c.life
	c.nextSeq++
	p := &pendingMessage{
		entry: entry{
			msg: Message{
				ID:         "local-" + uuid.NewString(),
				SenderID:   c.opts.UserID,
				SenderName: c.opts.UserName,
				Content:    content,
				Timestamp:  c.opts.Now(),
				Pending:    true,
			},
			seq: c.nextSeq,
		},
		mark: c.nextSeq,
	}
	c.pending = append(c.pending, p)
	c.rebuild()
	c.mu.Unlock()

	sendCtx, cancel := c.callContext(ctx, life)
	ack, err := c.api.SendChatMessage(sendCtx, claimID, content)
	cancel()

	if err != nil {
		c.mu.Lock()
		if c.gen == gen {
			c.dropPending(p)
			c.rebuild()
		}
		c.mu.Unlock()

		metrics.ChatSends.WithLabelValues("error").Inc()
		c.logger.Warn().Err(err).Str("claim_id", claimID).Msg("send failed")
		return &SendFailedError{ClaimID: claimID, Err: err}
	}
	metrics.ChatSends.WithLabelValues("ok").Inc()

	c.mu.Lock()
	if c.gen == gen && ack != nil {
		p.ackID = ack.ID
	}
	c.mu.Unlock()

	if err := c.refresh(ctx, gen, true); err != nil && !errors.Is(err, ErrClosed) {
		c.logger.Warn().Err(err).Str("claim_id", claimID).Msg("refresh after send failed")
	}
	return nil
}

// View returns the current conversation view. The slice is never modified
// after it is returned.
func (c *Controller) View() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

// State returns the synchronization state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Pending returns the number of sent messages not yet confirmed.
func (c *Controller) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// Err returns the last fetch failure, or nil after a successful refresh.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Updates receives a value whenever the view changes. Signals coalesce:
// a slow reader sees at least one signal after the latest change.
func (c *Controller) Updates() <-chan struct{} {
	return c.updates
}

func (c *Controller) poll(ctx context.Context, gen uint64, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(c.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.tick(ctx, gen)
		}
	}
}

// tick runs one timer-driven refresh, skipping it if one is in flight.
func (c *Controller) tick(ctx context.Context, gen uint64) {
	err := c.refresh(ctx, gen, false)
	if errors.Is(err, errRefreshInFlight) {
		c.logger.Debug().Msg("poll skipped, refresh in flight")
	}
}

// refresh runs one fetch+merge cycle for generation gen. When wait is false
// it gives up immediately if another cycle holds the semaphore.
func (c *Controller) refresh(ctx context.Context, gen uint64, wait bool) error {
	if wait {
		select {
		case c.sem <- struct{}{}:
		case <-ctx.Done():
			return ctx.Err()
		}
	} else {
		select {
		case c.sem <- struct{}{}:
		default:
			metrics.ChatRefreshes.WithLabelValues("skipped").Inc()
			return errRefreshInFlight
		}
	}
	defer func() { <-c.sem }()

	c.mu.Lock()
	if c.gen != gen || c.state == StateClosed {
		c.mu.Unlock()
		return ErrClosed
	}
	claimID, life := c.claimID, c.life
	c.mu.Unlock()

	fetchCtx, cancel := c.callContext(ctx, life)
	start := time.Now()
	msgs, err := c.api.GetClaimChat(fetchCtx, claimID)
	metrics.ChatFetchLatency.Observe(time.Since(start).Seconds())
	cancel()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.gen != gen || c.state == StateClosed {
		metrics.ChatRefreshes.WithLabelValues("stale").Inc()
		c.logger.Debug().Str("claim_id", claimID).Msg("discarding stale refresh")
		return ErrClosed
	}

	if err != nil {
		metrics.ChatRefreshes.WithLabelValues("error").Inc()
		if errors.Is(err, lostfound.ErrNotFound) {
			err = fmt.Errorf("%w: claim %s: %w", ErrNotFound, claimID, err)
		}
		ferr := &FetchFailedError{ClaimID: claimID, Err: err}
		c.err = ferr
		c.state = StateError
		c.logger.Warn().Err(err).Str("claim_id", claimID).Msg("fetch failed, keeping last view")
		return ferr
	}

	metrics.ChatRefreshes.WithLabelValues("ok").Inc()
	c.server = c.ingest(msgs, c.opts.Now())
	c.err = nil
	c.state = StateSynced
	c.rebuild()
	return nil
}

// callContext bounds a single API call by the request timeout and by the
// lifetime of the open conversation.
func (c *Controller) callContext(ctx context.Context, life context.Context) (context.Context, context.CancelFunc) {
	callCtx, cancel := context.WithTimeout(ctx, c.opts.RequestTimeout)
	if life == nil {
		return callCtx, cancel
	}
	stop := context.AfterFunc(life, cancel)
	return callCtx, func() {
		stop()
		cancel()
	}
}

// ingest converts a fetched snapshot into entries, assigning arrival
// sequence numbers to ids not seen before. Must hold c.mu.
func (c *Controller) ingest(msgs []lostfound.ChatMessage, now time.Time) []entry {
	seen := make(map[string]seenInfo, len(msgs))
	entries := make([]entry, 0, len(msgs))

	for _, m := range msgs {
		key := messageKey(m)
		if _, dup := seen[key]; dup {
			continue
		}
		info, ok := c.seen[key]
		if !ok {
			c.nextSeq++
			info = seenInfo{seq: c.nextSeq, firstSeen: now}
		}
		seen[key] = info

		ts := m.Timestamp.Time
		if ts.IsZero() {
			ts = info.firstSeen
		}
		entries = append(entries, entry{
			msg: Message{
				ID:             m.ID,
				SenderID:       m.SenderID,
				SenderName:     m.SenderName,
				Content:        m.Content,
				IsProofRequest: m.IsProofRequest,
				Timestamp:      ts,
			},
			seq: info.seq,
		})
	}

	c.seen = seen
	return entries
}

func messageKey(m lostfound.ChatMessage) string {
	if m.ID != "" {
		return m.ID
	}
	return fmt.Sprintf("anon\x00%s\x00%s\x00%d", m.SenderID, m.Content, m.Timestamp.UnixNano())
}

// rebuild recomputes the view from the last server snapshot and the pending
// messages. Must hold c.mu.
func (c *Controller) rebuild() {
	view, remaining := merge(c.server, c.pending, c.opts.ClockSkew)
	c.pending = remaining

	switch c.state {
	case StateSynced, StateSyncedPending:
		if len(c.pending) > 0 {
			c.state = StateSyncedPending
		} else {
			c.state = StateSynced
		}
	}
	c.publish(view)
}

// publish swaps in view if it differs from the current one. Must hold c.mu.
func (c *Controller) publish(view []Message) {
	if viewsEqual(c.view, view) {
		return
	}
	c.view = view
	select {
	case c.updates <- struct{}{}:
	default:
	}
}

func (c *Controller) dropPending(p *pendingMessage) {
	for i, q := range c.pending {
		if q == p {
			c.pending = append(c.pending[:i:i], c.pending[i+1:]...)
			return
		}
	}
}
