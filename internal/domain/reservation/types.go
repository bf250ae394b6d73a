package reservation

import "errors"

var ErrInvalidStatus = errors.New("invalid reservation status")

// Status is the closed set of reservation lifecycle states. The only legal
// transitions are Pending -> Confirmed and Pending -> Denied; Confirmed and
// Denied are terminal.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusConfirmed Status = "Confirmed"
	StatusDenied    Status = "Denied"
)

var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusDenied},
	StatusConfirmed: {},
	StatusDenied:    {},
}

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusConfirmed, StatusDenied:
		return Status(s), nil
	default:
		return "", ErrInvalidStatus
	}
}

func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0 && s != ""
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s Status) String() string {
	return string(s)
}
