//go:build unit

package usecase_test

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"casita-reservations/internal/domain/approval"
	domain "casita-reservations/internal/domain/reservation"
	"casita-reservations/internal/infra"
	"casita-reservations/internal/usecase/readmodel"

	"github.com/google/uuid"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeRepository mimics the conditional-update contract of the pgx
// repository: UpdateStatus only lands on rows still Pending.
type fakeRepository struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*readmodel.ReservationRM

	failCreate bool
	failUpdate bool
	failFind   bool
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{rows: make(map[uuid.UUID]*readmodel.ReservationRM)}
}

func (r *fakeRepository) Create(_ context.Context, res *domain.Reservation) (*readmodel.ReservationRM, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failCreate {
		return nil, infra.WrapRepoErr(infra.KindDBFailure, "insert failed", nil)
	}

	d := res.Details()
	now := time.Now()
	rm := &readmodel.ReservationRM{
		ID:        res.ID(),
		Token:     res.Token(),
		Name:      d.Name,
		Email:     d.Email,
		Phone:     d.Phone,
		Date:      d.Date,
		Time:      d.Time,
		Diners:    d.Diners,
		Seating:   d.Seating,
		Pickup:    d.Pickup,
		Status:    res.Status().String(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.rows[rm.ID] = rm
	clone := *rm
	return &clone, nil
}

func (r *fakeRepository) FindByID(_ context.Context, id uuid.UUID) (*readmodel.ReservationRM, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failFind {
		return nil, infra.WrapRepoErr(infra.KindDBFailure, "select failed", nil)
	}
	rm, ok := r.rows[id]
	if !ok {
		return nil, infra.WrapRepoErr(infra.KindNotFound, "reservation not found", nil)
	}
	clone := *rm
	return &clone, nil
}

func (r *fakeRepository) List(_ context.Context) ([]*readmodel.ReservationListRM, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*readmodel.ReservationListRM, 0, len(r.rows))
	for _, rm := range r.rows {
		out = append(out, &readmodel.ReservationListRM{
			ID:     rm.ID,
			Name:   rm.Name,
			Date:   rm.Date,
			Time:   rm.Time,
			Diners: rm.Diners,
			Status: rm.Status,
		})
	}
	return out, nil
}

func (r *fakeRepository) UpdateStatus(_ context.Context, id uuid.UUID, status domain.Status, denialReason *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failUpdate {
		return infra.WrapRepoErr(infra.KindDBFailure, "update failed", nil)
	}
	rm, ok := r.rows[id]
	if !ok {
		return infra.WrapRepoErr(infra.KindNotFound, "reservation not found", nil)
	}
	if rm.Status != domain.StatusPending.String() {
		return infra.WrapRepoErr(infra.KindConflict, "reservation already decided", nil)
	}
	rm.Status = status.String()
	rm.DenialReason = denialReason
	rm.UpdatedAt = time.Now()
	return nil
}

func (r *fakeRepository) status(id uuid.UUID) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rm, ok := r.rows[id]; ok {
		return rm.Status
	}
	return ""
}

func (r *fakeRepository) denialReason(id uuid.UUID) *string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rm, ok := r.rows[id]; ok {
		return rm.DenialReason
	}
	return nil
}

// seed inserts a row directly, bypassing the domain constructor.
func (r *fakeRepository) seed(rm *readmodel.ReservationRM) {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *rm
	r.rows[rm.ID] = &clone
}

type answeredAction struct {
	ActionID string
	Text     string
}

type markedDenial struct {
	ReservationID uuid.UUID
	Reason        string
}

type fakeNotifier struct {
	mu sync.Mutex

	failNotify bool
	failPrompt bool

	nextMessageID int
	notified      []uuid.UUID
	prompted      []approval.MessageRef
	processing    []uuid.UUID
	accepted      []uuid.UUID
	denied        []markedDenial
	restored      []uuid.UUID
	answered      []answeredAction
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{}
}

func (n *fakeNotifier) NotifyNewReservation(_ context.Context, rm *readmodel.ReservationRM) (approval.MessageRef, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.failNotify {
		return approval.MessageRef{}, infra.WrapRepoErr(infra.KindDBFailure, "send failed", nil)
	}
	n.nextMessageID++
	n.notified = append(n.notified, rm.ID)
	return approval.MessageRef{
		Conversation: "op-chat",
		MessageID:    strconv.Itoa(n.nextMessageID),
	}, nil
}

func (n *fakeNotifier) PromptDenialReason(_ context.Context, prompt approval.MessageRef) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.failPrompt {
		return infra.WrapRepoErr(infra.KindDBFailure, "send failed", nil)
	}
	n.prompted = append(n.prompted, prompt)
	return nil
}

func (n *fakeNotifier) MarkProcessingDenial(_ context.Context, _ approval.MessageRef, rm *readmodel.ReservationRM) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.processing = append(n.processing, rm.ID)
	return nil
}

func (n *fakeNotifier) MarkAccepted(_ context.Context, _ approval.MessageRef, rm *readmodel.ReservationRM) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.accepted = append(n.accepted, rm.ID)
	return nil
}

func (n *fakeNotifier) MarkDenied(_ context.Context, _ approval.MessageRef, rm *readmodel.ReservationRM, reason string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.denied = append(n.denied, markedDenial{ReservationID: rm.ID, Reason: reason})
	return nil
}

func (n *fakeNotifier) RestorePrompt(_ context.Context, _ approval.MessageRef, rm *readmodel.ReservationRM) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.restored = append(n.restored, rm.ID)
	return nil
}

func (n *fakeNotifier) AnswerAction(_ context.Context, actionID, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.answered = append(n.answered, answeredAction{ActionID: actionID, Text: text})
	return nil
}

func (n *fakeNotifier) acceptedCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.accepted)
}

func (n *fakeNotifier) lastAnswer() (answeredAction, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.answered) == 0 {
		return answeredAction{}, false
	}
	return n.answered[len(n.answered)-1], true
}

type sentDenial struct {
	ReservationID uuid.UUID
	Reason        string
	RebookURL     string
}

type fakeMailer struct {
	mu sync.Mutex

	failReceived bool

	received  []uuid.UUID
	confirmed []uuid.UUID
	denied    []sentDenial
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{}
}

func (m *fakeMailer) SendReceived(_ context.Context, rm *readmodel.ReservationRM) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failReceived {
		return infra.WrapRepoErr(infra.KindDBFailure, "smtp failed", nil)
	}
	m.received = append(m.received, rm.ID)
	return nil
}

func (m *fakeMailer) SendConfirmed(_ context.Context, rm *readmodel.ReservationRM) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.confirmed = append(m.confirmed, rm.ID)
	return nil
}

func (m *fakeMailer) SendDenied(_ context.Context, rm *readmodel.ReservationRM, reason, rebookURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.denied = append(m.denied, sentDenial{ReservationID: rm.ID, Reason: reason, RebookURL: rebookURL})
	return nil
}

func (m *fakeMailer) confirmedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.confirmed)
}

func (m *fakeMailer) deniedSent() []sentDenial {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]sentDenial, len(m.denied))
	copy(out, m.denied)
	return out
}
