package websocket

import (
	"time"

	"proctor-service/internal/catalog"
	"proctor-service/internal/integrity"
	"proctor-service/internal/models"
	"proctor-service/internal/session"
)

// clientPresenter renders session events as outgoing socket messages.
type clientPresenter struct {
	client *Client
}

func (p clientPresenter) PhaseChanged(snap session.Snapshot) {
	p.client.SendMessage(MessageTypePhase, PhasePayload{Session: snap})
}

func (p clientPresenter) Instructions(game catalog.Game) {
	p.client.SendMessage(MessageTypeInstructions, InstructionsPayload{Game: game})
}

func (p clientPresenter) Monitoring(active bool, listeners []integrity.SignalType) {
	p.client.SendMessage(MessageTypeMonitoring, MonitoringPayload{Active: active, Listeners: listeners})
}

func (p clientPresenter) GameStarted(snap session.Snapshot) {
	p.client.SendMessage(MessageTypeGameStarted, PhasePayload{Session: snap})
}

func (p clientPresenter) Tick(snap session.Snapshot) {
	p.client.SendMessage(MessageTypeTick, PhasePayload{Session: snap})
}

func (p clientPresenter) Violation(ev models.ViolationEvent, violationCount int) {
	p.client.SendMessage(MessageTypeViolation, ViolationPayload{Violation: ev, ViolationCount: violationCount})
}

func (p clientPresenter) Warning(w session.Warning) {
	p.client.SendMessage(MessageTypeWarning, w)
}

func (p clientPresenter) Disqualified(reason string, redirectIn time.Duration) {
	p.client.SendMessage(MessageTypeDisqualified, DisqualifiedPayload{
		Reason:     reason,
		RedirectIn: redirectIn.Milliseconds(),
	})
}

func (p clientPresenter) Completed(res session.CompletionResult) {
	p.client.SendMessage(MessageTypeCompleted, res)
}

func (p clientPresenter) Redirect(path, message string) {
	p.client.SendMessage(MessageTypeRedirect, RedirectPayload{Path: path, Message: message})
}
