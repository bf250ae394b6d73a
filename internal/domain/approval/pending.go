package approval

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// ConversationRef identifies the operator chat session that triggered a deny
// action. Follow-up replies are only honored from the same conversation.
type ConversationRef string

// MessageRef points at a single message inside an operator conversation,
// typically the accept/deny prompt, so it can be edited once the decision
// lands.
type MessageRef struct {
	Conversation ConversationRef
	MessageID    string
}

// Decision is a snapshot of one pending approval. Created when the operator
// prompt for a new reservation goes out, destroyed when the decision is
// finalized.
type Decision struct {
	ReservationID  uuid.UUID
	Prompt         MessageRef
	AwaitingReason bool
	Conversation   ConversationRef
	Deadline       time.Time
}

type entry struct {
	prompt         MessageRef
	awaitingReason bool
	conversation   ConversationRef
	deadline       time.Time
}

func (e *entry) snapshot(id uuid.UUID) Decision {
	return Decision{
		ReservationID:  id,
		Prompt:         e.prompt,
		AwaitingReason: e.awaitingReason,
		Conversation:   e.conversation,
		Deadline:       e.deadline,
	}
}

// Table is the correlation map between outstanding operator prompts and
// reservations. It holds one entry per undecided reservation and, through a
// secondary index, at most one awaiting-reason binding per operator
// conversation. All mutations are atomic under the table mutex; the mutex is
// never held by callers across store writes or sends.
type Table struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*entry
	byConv  map[ConversationRef]uuid.UUID
}

func NewTable() *Table {
	return &Table{
		entries: make(map[uuid.UUID]*entry),
		byConv:  make(map[ConversationRef]uuid.UUID),
	}
}

// Register creates the pending entry for a freshly submitted reservation.
// Returns false when one already exists.
func (t *Table) Register(id uuid.UUID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.entries[id]; ok {
		return false
	}
	t.entries[id] = &entry{}
	return true
}

// AttachPrompt records the operator prompt message once it has been
// delivered, so decision outcomes can edit it later.
func (t *Table) AttachPrompt(id uuid.UUID, prompt MessageRef) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[id]
	if !ok {
		return false
	}
	e.prompt = prompt
	return true
}

func (t *Table) Get(id uuid.UUID) (Decision, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[id]
	if !ok {
		return Decision{}, false
	}
	return e.snapshot(id), true
}

// BeginAwaitReason binds the entry to the conversation that pressed deny and
// arms the reason deadline. A conversation carries at most one binding: an
// older binding held by the same conversation is superseded, reverting that
// reservation to a plain pending decision, and its snapshot is returned so
// the caller can tell the operator.
func (t *Table) BeginAwaitReason(id uuid.UUID, conv ConversationRef, deadline time.Time) (superseded *Decision, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, found := t.entries[id]
	if !found {
		return nil, false
	}

	if prevID, bound := t.byConv[conv]; bound && prevID != id {
		if prev, exists := t.entries[prevID]; exists {
			snap := prev.snapshot(prevID)
			superseded = &snap
			prev.awaitingReason = false
			prev.conversation = ""
			prev.deadline = time.Time{}
		}
	}

	e.awaitingReason = true
	e.conversation = conv
	e.deadline = deadline
	t.byConv[conv] = id
	return superseded, true
}

// ReasonBinding looks up the live awaiting-reason binding for conv. An
// expired binding is released on the spot and the reply is reported as
// unmatched, leaving the entry ready for a new deny action. The entry itself
// stays in place; finalizing it is Resolve's job, under the per-reservation
// lock.
func (t *Table) ReasonBinding(conv ConversationRef, now time.Time) (Decision, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	id, bound := t.byConv[conv]
	if !bound {
		return Decision{}, false
	}
	e, found := t.entries[id]
	if !found || !e.awaitingReason {
		delete(t.byConv, conv)
		return Decision{}, false
	}

	if now.After(e.deadline) {
		e.awaitingReason = false
		e.conversation = ""
		e.deadline = time.Time{}
		delete(t.byConv, conv)
		return Decision{}, false
	}

	return e.snapshot(id), true
}

// Resolve atomically claims and removes the entry for id. This is the commit
// point: once it returns true every later action on the same reservation is
// stale.
func (t *Table) Resolve(id uuid.UUID) (Decision, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[id]
	if !ok {
		return Decision{}, false
	}
	snap := e.snapshot(id)
	delete(t.entries, id)
	if e.awaitingReason {
		delete(t.byConv, e.conversation)
	}
	return snap, true
}

// ReleaseExpired reverts every awaiting-reason binding whose deadline has
// passed. The reservations stay pending with their prompts intact; the
// operator has to press deny again to supply a reason.
func (t *Table) ReleaseExpired(now time.Time) []Decision {
	t.mu.Lock()
	defer t.mu.Unlock()

	var released []Decision
	for id, e := range t.entries {
		if !e.awaitingReason || !now.After(e.deadline) {
			continue
		}
		released = append(released, e.snapshot(id))
		delete(t.byConv, e.conversation)
		e.awaitingReason = false
		e.conversation = ""
		e.deadline = time.Time{}
	}
	return released
}

func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}
