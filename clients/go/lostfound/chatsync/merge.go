package chatsync

import (
	"cmp"
	"slices"
	"time"
)

// Message is one entry of a conversation view.
type Message struct {
	ID             string
	SenderID       string
	SenderName     string
	Content        string
	IsProofRequest bool
	Timestamp      time.Time
	// Pending is set on optimistic entries the server has not confirmed yet.
	Pending bool
}

// entry is a message plus the sequence number it was first seen at.
type entry struct {
	msg Message
	seq uint64
}

// pendingMessage is an optimistic local echo.
type pendingMessage struct {
	entry
	// ackID is the id the server returned for this send, once known.
	ackID string
	// mark is the highest sequence number assigned before the send; server
	// messages at or below it predate the send and cannot confirm it.
	mark uint64
}

// merge builds the next view from a server snapshot and the outstanding
// pending messages. It returns the view and the pending messages that are
// still unconfirmed. Inputs are not modified.
func merge(server []entry, pending []*pendingMessage, skew time.Duration) ([]Message, []*pendingMessage) {
	byID := make(map[string]bool, len(server))
	unique := make([]entry, 0, len(server))
	for _, e := range server {
		if e.msg.ID != "" {
			if byID[e.msg.ID] {
				continue
			}
			byID[e.msg.ID] = true
		}
		unique = append(unique, e)
	}

	used := make([]bool, len(unique))
	confirmed := make([]bool, len(pending))

	// Acknowledged ids first so the content heuristic cannot steal them.
	for i, p := range pending {
		if p.ackID == "" {
			continue
		}
		for j, e := range unique {
			if !used[j] && e.msg.ID == p.ackID {
				used[j] = true
				confirmed[i] = true
				break
			}
		}
	}

	for i, p := range pending {
		if confirmed[i] {
			continue
		}
		for j, e := range unique {
			if !used[j] && confirms(e, p, skew) {
				used[j] = true
				confirmed[i] = true
				break
			}
		}
	}

	next := make([]entry, 0, len(unique)+len(pending))
	next = append(next, unique...)

	var remaining []*pendingMessage
	for i, p := range pending {
		if confirmed[i] {
			continue
		}
		remaining = append(remaining, p)
		next = append(next, p.entry)
	}

	slices.SortStableFunc(next, func(a, b entry) int {
		if c := a.msg.Timestamp.Compare(b.msg.Timestamp); c != 0 {
			return c
		}
		return cmp.Compare(a.seq, b.seq)
	})

	view := make([]Message, len(next))
	for i, e := range next {
		view[i] = e.msg
	}
	return view, remaining
}

// confirms reports whether server entry e is the authoritative copy of p.
func confirms(e entry, p *pendingMessage, skew time.Duration) bool {
	if e.seq <= p.mark {
		return false
	}
	if e.msg.SenderID != p.msg.SenderID || e.msg.Content != p.msg.Content {
		return false
	}
	return !e.msg.Timestamp.Before(p.msg.Timestamp.Add(-skew))
}

func viewsEqual(a, b []Message) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		x, y := a[i], b[i]
		if x.ID != y.ID || x.SenderID != y.SenderID || x.SenderName != y.SenderName ||
			x.Content != y.Content || x.IsProofRequest != y.IsProofRequest ||
			x.Pending != y.Pending || !x.Timestamp.Equal(y.Timestamp) {
			return false
		}
	}
	return true
}
