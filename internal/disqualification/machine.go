package disqualification

import (
	"fmt"
	"time"

	"proctor-service/internal/constants"
	"proctor-service/internal/integrity"
	"proctor-service/internal/models"
)

const (
	ReasonTabSwitch = "tab switching violation"
	ReasonDevTools  = "developer tools access"
	ReasonMultiFace = "multiple faces detected for extended period"
	ReasonNoFace    = "no face detected, student may have left"
)

// Policy holds the per-kind thresholds. Tab switching disqualifies on the
// first event; every other kind warns before it disqualifies.
type Policy struct {
	TabSwitchLimit   int
	DevToolsLimit    int
	MultiFaceSeconds int
	NoFaceSeconds    int
}

func DefaultPolicy() Policy {
	return Policy{
		TabSwitchLimit:   1,
		DevToolsLimit:    2,
		MultiFaceSeconds: 10,
		NoFaceSeconds:    15,
	}
}

type State string

const (
	StateClean        State = "clean"
	StateWarned       State = "warned"
	StateDisqualified State = "disqualified"
)

// Decision is what one input did to the machine.
type Decision struct {
	State State
	Kind  constants.ViolationKind
	// Count is the running count of Kind.
	Count int
	// Remaining is attempts (or seconds, for face anomalies) left before
	// disqualification; -1 when the kind never disqualifies.
	Remaining int
	// Violation is set when the input produced a new violation event.
	Violation *models.ViolationEvent
	// Warn asks for the one-time warning notice.
	Warn bool
	// Entered is true only on the call that moved the machine into Disqualified.
	Entered bool
	Reason  string
}

// Machine is not safe for concurrent use; the session serializes access.
type Machine struct {
	policy Policy
	now    func() time.Time

	state   State
	reason  string
	counts  map[constants.ViolationKind]int
	total   int
	history []models.ViolationEvent

	// anomaly counts every tick without exactly one face; streak counts only
	// the current kind and restarts when the kind changes.
	anomaly     int
	streak      int
	anomalyKind constants.ViolationKind
}

func NewMachine(p Policy) *Machine {
	return &Machine{
		policy: p,
		now:    time.Now,
		state:  StateClean,
		counts: make(map[constants.ViolationKind]int),
	}
}

func (m *Machine) State() State                        { return m.state }
func (m *Machine) Reason() string                      { return m.reason }
func (m *Machine) ViolationCount() int                 { return m.total }
func (m *Machine) AnomalySeconds() int                 { return m.anomaly }
func (m *Machine) Disqualified() bool                  { return m.state == StateDisqualified }
func (m *Machine) Count(k constants.ViolationKind) int { return m.counts[k] }

// Violations returns a copy of the events recorded so far, oldest first.
func (m *Machine) Violations() []models.ViolationEvent {
	out := make([]models.ViolationEvent, len(m.history))
	copy(out, m.history)
	return out
}

func (m *Machine) terminal(kind constants.ViolationKind) Decision {
	return Decision{
		State:     StateDisqualified,
		Kind:      kind,
		Count:     m.counts[kind],
		Remaining: 0,
		Reason:    m.reason,
	}
}

func (m *Machine) record(ev models.ViolationEvent) *models.ViolationEvent {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = m.now()
	}
	m.counts[ev.Kind]++
	m.total++
	m.history = append(m.history, ev)
	return &ev
}

func (m *Machine) disqualify(reason string) {
	m.state = StateDisqualified
	m.reason = reason
}

// Record applies a detector violation. Face kinds should go through
// ObserveFaces instead so the anomaly duration is tracked.
func (m *Machine) Record(ev models.ViolationEvent) Decision {
	if m.Disqualified() {
		return m.terminal(ev.Kind)
	}

	recorded := m.record(ev)
	count := m.counts[ev.Kind]
	d := Decision{Kind: ev.Kind, Count: count, Violation: recorded, Remaining: -1}

	var limit int
	var reason string
	switch ev.Kind {
	case constants.ViolationTabSwitch:
		limit, reason = m.policy.TabSwitchLimit, ReasonTabSwitch
	case constants.ViolationDevToolsAttempt:
		limit, reason = m.policy.DevToolsLimit, ReasonDevTools
	default:
		// Pointer exits and stray face events are display-only here.
		d.State = m.state
		return d
	}

	if count >= limit {
		m.disqualify(reason)
		d.State = StateDisqualified
		d.Remaining = 0
		d.Entered = true
		d.Reason = reason
		return d
	}

	m.state = StateWarned
	d.State = StateWarned
	d.Remaining = limit - count
	d.Warn = true
	return d
}

// ObserveFaces applies one per-second face sample. A count of exactly one
// resets the anomaly duration; anything else extends it.
func (m *Machine) ObserveFaces(count int) Decision {
	kind, anomalous := integrity.FaceViolation(count)
	if m.Disqualified() {
		return m.terminal(kind)
	}

	if !anomalous {
		m.anomaly = 0
		m.streak = 0
		m.anomalyKind = ""
		return Decision{State: m.state, Remaining: -1}
	}

	m.anomaly++
	d := Decision{Kind: kind, Remaining: -1}

	if kind != m.anomalyKind {
		m.anomalyKind = kind
		m.streak = 0
		d.Violation = m.record(models.ViolationEvent{
			Kind:   kind,
			Detail: fmt.Sprintf("%d face(s) detected", count),
		})
		d.Warn = true
	}
	m.streak++
	d.Count = m.counts[kind]

	limit, reason := m.policy.MultiFaceSeconds, ReasonMultiFace
	if kind == constants.ViolationNoFace {
		limit, reason = m.policy.NoFaceSeconds, ReasonNoFace
	}

	if m.streak >= limit {
		m.disqualify(reason)
		d.State = StateDisqualified
		d.Remaining = 0
		d.Entered = true
		d.Warn = false
		d.Reason = reason
		return d
	}

	m.state = StateWarned
	d.State = StateWarned
	d.Remaining = limit - m.streak
	return d
}
