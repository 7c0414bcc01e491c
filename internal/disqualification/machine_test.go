package disqualification

import (
	"strings"
	"testing"
	"time"

	"proctor-service/internal/constants"
	"proctor-service/internal/models"
)

func event(kind constants.ViolationKind) models.ViolationEvent {
	return models.ViolationEvent{Kind: kind, Timestamp: time.Unix(1700000000, 0)}
}

func TestRecord_TabSwitchDisqualifiesOnFirstEvent(t *testing.T) {
	m := NewMachine(DefaultPolicy())

	d := m.Record(event(constants.ViolationTabSwitch))
	if d.State != StateDisqualified || !d.Entered {
		t.Fatalf("decision = %+v, want entered disqualified", d)
	}
	if !strings.Contains(d.Reason, "tab switching") {
		t.Errorf("Reason = %q, want it to mention tab switching", d.Reason)
	}
	if d.Warn {
		t.Error("tab switch should not warn before disqualifying")
	}
}

func TestRecord_DevToolsWarnsThenDisqualifies(t *testing.T) {
	m := NewMachine(DefaultPolicy())

	d := m.Record(event(constants.ViolationDevToolsAttempt))
	if d.State != StateWarned || d.Entered {
		t.Fatalf("first attempt = %+v, want warned", d)
	}
	if !d.Warn || d.Remaining != 1 || d.Count != 1 {
		t.Errorf("first attempt warn=%v remaining=%d count=%d, want true 1 1", d.Warn, d.Remaining, d.Count)
	}

	d = m.Record(event(constants.ViolationDevToolsAttempt))
	if d.State != StateDisqualified || !d.Entered {
		t.Fatalf("second attempt = %+v, want entered disqualified", d)
	}
	if d.Reason != ReasonDevTools {
		t.Errorf("Reason = %q, want %q", d.Reason, ReasonDevTools)
	}
}

func TestRecord_DisqualifiedIsTerminalAndIdempotent(t *testing.T) {
	m := NewMachine(DefaultPolicy())
	m.Record(event(constants.ViolationTabSwitch))

	for _, k := range []constants.ViolationKind{
		constants.ViolationTabSwitch,
		constants.ViolationDevToolsAttempt,
		constants.ViolationMouseLeft,
	} {
		d := m.Record(event(k))
		if d.Entered {
			t.Errorf("%s after disqualification re-entered", k)
		}
		if d.State != StateDisqualified || d.Reason != ReasonTabSwitch {
			t.Errorf("%s after disqualification = %+v", k, d)
		}
		if d.Violation != nil {
			t.Errorf("%s after disqualification recorded a violation", k)
		}
	}
	if m.ViolationCount() != 1 {
		t.Errorf("ViolationCount = %d, want 1", m.ViolationCount())
	}

	d := m.ObserveFaces(0)
	if d.Entered || d.State != StateDisqualified {
		t.Errorf("face sample after disqualification = %+v", d)
	}
}

func TestRecord_MouseLeftNeverDisqualifies(t *testing.T) {
	m := NewMachine(DefaultPolicy())
	for i := 0; i < 50; i++ {
		d := m.Record(event(constants.ViolationMouseLeft))
		if d.State == StateDisqualified {
			t.Fatalf("pointer exit %d disqualified", i+1)
		}
		if d.Warn {
			t.Fatalf("pointer exit %d raised a warning", i+1)
		}
		if d.Remaining != -1 {
			t.Fatalf("Remaining = %d, want -1", d.Remaining)
		}
	}
	if m.ViolationCount() != 50 {
		t.Errorf("ViolationCount = %d, want 50", m.ViolationCount())
	}
	if m.State() != StateClean {
		t.Errorf("State = %q, want clean", m.State())
	}
}

func TestObserveFaces_NoFaceForFifteenSecondsDisqualifies(t *testing.T) {
	m := NewMachine(DefaultPolicy())

	var entered int
	for i := 1; i <= 16; i++ {
		d := m.ObserveFaces(0)
		if d.Entered {
			entered++
			if i != 15 {
				t.Errorf("disqualified on tick %d, want 15", i)
			}
			if !strings.Contains(d.Reason, "no face") {
				t.Errorf("Reason = %q, want it to mention no face", d.Reason)
			}
		}
	}
	if entered != 1 {
		t.Errorf("entered disqualification %d times, want 1", entered)
	}
}

func TestObserveFaces_ResetOnSingleFace(t *testing.T) {
	m := NewMachine(DefaultPolicy())

	for i := 0; i < 14; i++ {
		if d := m.ObserveFaces(0); d.State == StateDisqualified {
			t.Fatalf("disqualified after %d no-face ticks", i+1)
		}
	}
	if m.AnomalySeconds() != 14 {
		t.Fatalf("AnomalySeconds = %d, want 14", m.AnomalySeconds())
	}

	d := m.ObserveFaces(1)
	if d.State == StateDisqualified {
		t.Fatal("single face disqualified")
	}
	if m.AnomalySeconds() != 0 {
		t.Errorf("AnomalySeconds = %d, want 0 after a single-face tick", m.AnomalySeconds())
	}
}

func TestObserveFaces_OnlySingleFaceResets(t *testing.T) {
	m := NewMachine(DefaultPolicy())
	seq := []int{0, 2, 0, 3}
	for i, c := range seq {
		m.ObserveFaces(c)
		if m.AnomalySeconds() != i+1 {
			t.Errorf("after %v AnomalySeconds = %d, want %d", seq[:i+1], m.AnomalySeconds(), i+1)
		}
	}
}

func TestObserveFaces_MultiFaceAfterTenSeconds(t *testing.T) {
	m := NewMachine(DefaultPolicy())

	first := m.ObserveFaces(2)
	if !first.Warn || first.Violation == nil {
		t.Errorf("first multi-face tick = %+v, want a warning and a violation", first)
	}
	if first.Remaining != 9 {
		t.Errorf("Remaining = %d, want 9", first.Remaining)
	}

	for i := 2; i <= 9; i++ {
		d := m.ObserveFaces(2)
		if d.Warn || d.Violation != nil {
			t.Errorf("tick %d repeated the warning", i)
		}
		if d.State == StateDisqualified {
			t.Fatalf("disqualified on tick %d", i)
		}
	}

	d := m.ObserveFaces(2)
	if !d.Entered || d.Reason != ReasonMultiFace {
		t.Errorf("tick 10 = %+v, want multi-face disqualification", d)
	}
	if m.Count(constants.ViolationMultiFace) != 1 {
		t.Errorf("multi-face count = %d, want one event per streak", m.Count(constants.ViolationMultiFace))
	}
}

func TestObserveFaces_NewStreakWarnsAgain(t *testing.T) {
	m := NewMachine(DefaultPolicy())

	m.ObserveFaces(0)
	m.ObserveFaces(1)
	d := m.ObserveFaces(0)
	if !d.Warn || d.Violation == nil {
		t.Errorf("second streak = %+v, want a new warning", d)
	}
	if m.Count(constants.ViolationNoFace) != 2 {
		t.Errorf("no-face count = %d, want 2", m.Count(constants.ViolationNoFace))
	}
	if m.ViolationCount() != 2 {
		t.Errorf("ViolationCount = %d, want 2", m.ViolationCount())
	}
}

func TestObserveFaces_KindChangeRestartsStreak(t *testing.T) {
	m := NewMachine(DefaultPolicy())

	for i := 0; i < 14; i++ {
		m.ObserveFaces(0)
	}
	d := m.ObserveFaces(2)
	if d.State != StateWarned || d.Entered {
		t.Fatalf("first multi-face tick after 14 no-face ticks = %+v, want warned", d)
	}
	if !d.Warn || d.Remaining != 9 {
		t.Errorf("warn=%v remaining=%d, want true 9", d.Warn, d.Remaining)
	}
	if m.AnomalySeconds() != 15 {
		t.Errorf("AnomalySeconds = %d, want 15", m.AnomalySeconds())
	}

	for i := 2; i <= 9; i++ {
		if d := m.ObserveFaces(2); d.State == StateDisqualified {
			t.Fatalf("disqualified on multi-face tick %d", i)
		}
	}
	d = m.ObserveFaces(2)
	if !d.Entered || d.Reason != ReasonMultiFace {
		t.Errorf("multi-face tick 10 = %+v, want multi-face disqualification", d)
	}
}

func TestObserveFaces_ShortNoFaceDoesNotShortenMultiFace(t *testing.T) {
	m := NewMachine(DefaultPolicy())

	m.ObserveFaces(0)
	for i := 1; i <= 9; i++ {
		if d := m.ObserveFaces(2); d.State == StateDisqualified {
			t.Fatalf("disqualified on multi-face tick %d", i)
		}
	}
	if d := m.ObserveFaces(2); !d.Entered || d.Reason != ReasonMultiFace {
		t.Errorf("multi-face tick 10 = %+v, want multi-face disqualification", d)
	}
}

// Tab switches are strict; devtools and face anomalies warn first.
func TestPolicyAsymmetry(t *testing.T) {
	tab := NewMachine(DefaultPolicy())
	if d := tab.Record(event(constants.ViolationTabSwitch)); d.State != StateDisqualified {
		t.Errorf("tab switch first signal state = %q, want disqualified", d.State)
	}

	dev := NewMachine(DefaultPolicy())
	if d := dev.Record(event(constants.ViolationDevToolsAttempt)); d.State != StateWarned {
		t.Errorf("devtools first signal state = %q, want warned", d.State)
	}

	face := NewMachine(DefaultPolicy())
	if d := face.ObserveFaces(0); d.State != StateWarned {
		t.Errorf("no-face first signal state = %q, want warned", d.State)
	}
}

func TestViolations_ReturnsCopy(t *testing.T) {
	m := NewMachine(DefaultPolicy())
	m.Record(event(constants.ViolationMouseLeft))

	v := m.Violations()
	v[0].Kind = constants.ViolationTabSwitch
	if m.Violations()[0].Kind != constants.ViolationMouseLeft {
		t.Error("Violations exposed internal state")
	}
}
