package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"proctor-service/internal/camera"
	"proctor-service/internal/catalog"
	"proctor-service/internal/constants"
	"proctor-service/internal/disqualification"
	"proctor-service/internal/integrity"
	"proctor-service/internal/models"
	"proctor-service/internal/progress"
	"proctor-service/internal/timer"
)

var (
	ErrInvalidPhase  = errors.New("invalid phase transition")
	ErrSessionClosed = errors.New("session closed")
	ErrInvalidInput  = errors.New("invalid progress update")
)

const DefaultRedirectDelay = 8 * time.Second

type CameraAcquirer interface {
	Acquire(ctx context.Context) camera.Result
}

type ProgressRecorder interface {
	RecordCompletion(ctx context.Context, userID string, unlockIndex, score int) (models.ProgressRecord, bool, error)
}

// Recorder receives the summary of every session that reached an outcome.
type Recorder interface {
	Record(ctx context.Context, summary models.SessionSummary)
}

type Stopper interface {
	Stop() bool
}

type Deps struct {
	Camera    CameraAcquirer
	Engine    *integrity.Engine
	Policy    disqualification.Policy
	Progress  ProgressRecorder
	Recorder  Recorder
	Presenter Presenter
	Scheduler timer.Scheduler
	AfterFunc func(d time.Duration, f func()) Stopper

	RedirectDelay time.Duration
	HomePath      string
	Now           func() time.Time
}

func (d *Deps) defaults() {
	if d.Engine == nil {
		d.Engine = integrity.NewEngine(nil)
	}
	if d.Policy == (disqualification.Policy{}) {
		d.Policy = disqualification.DefaultPolicy()
	}
	if d.Scheduler == nil {
		d.Scheduler = timer.RealScheduler{}
	}
	if d.AfterFunc == nil {
		d.AfterFunc = func(delay time.Duration, f func()) Stopper {
			return time.AfterFunc(delay, f)
		}
	}
	if d.RedirectDelay <= 0 {
		d.RedirectDelay = DefaultRedirectDelay
	}
	if d.HomePath == "" {
		d.HomePath = "/"
	}
	if d.Now == nil {
		d.Now = time.Now
	}
}

// Session is one proctored play of one game.
type Session struct {
	id     string
	userID string
	game   catalog.Game
	deps   Deps

	machine *disqualification.Machine

	mu            sync.Mutex
	phase         constants.Phase
	closed        bool
	score         int
	timeRemaining int
	questionIndex int
	cameraStatus  constants.CameraStatus
	faceCount     int
	reason        string
	startedAt     time.Time
	finishedAt    time.Time

	clock      timer.Handle
	camera     *camera.Handle
	monitoring bool

	redirect     Stopper
	redirectOnce sync.Once
}

func New(id, userID string, game catalog.Game, deps Deps) (*Session, error) {
	if err := game.Validate(); err != nil {
		return nil, err
	}
	if deps.Camera == nil || deps.Presenter == nil || deps.Progress == nil {
		return nil, errors.New("session needs a camera, a presenter and a progress store")
	}
	deps.defaults()

	return &Session{
		id:            id,
		userID:        userID,
		game:          game,
		deps:          deps,
		machine:       disqualification.NewMachine(deps.Policy),
		phase:         constants.PhasePrivacyNotice,
		timeRemaining: game.TimeLimitSec,
		cameraStatus:  constants.CameraUnrequested,
	}, nil
}

func (s *Session) ID() string     { return s.id }
func (s *Session) UserID() string { return s.userID }
func (s *Session) Game() catalog.Game {
	return s.game
}

func (s *Session) Phase() constants.Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{
		ID:                     s.id,
		GameID:                 s.game.ID,
		Phase:                  s.phase,
		Score:                  s.score,
		TimeRemaining:          s.timeRemaining,
		QuestionIndex:          s.questionIndex,
		TotalQuestions:         s.game.TotalQuestions,
		CameraStatus:           s.cameraStatus,
		FaceCount:              s.faceCount,
		AnomalySeconds:         s.machine.AnomalySeconds(),
		IntegrityState:         s.machine.State(),
		ViolationCount:         s.machine.ViolationCount(),
		Violations:             s.machine.Violations(),
		DisqualificationReason: s.machine.Reason(),
	}
}

func (s *Session) summaryLocked(outcome string) models.SessionSummary {
	return models.SessionSummary{
		SessionID:      s.id,
		UserID:         s.userID,
		GameID:         s.game.ID,
		Outcome:        outcome,
		Score:          s.score,
		Reason:         s.reason,
		CameraStatus:   s.cameraStatus,
		ViolationCount: s.machine.ViolationCount(),
		Violations:     s.machine.Violations(),
		StartedAt:      s.startedAt,
		FinishedAt:     s.finishedAt,
	}
}

func (s *Session) record(summary *models.SessionSummary) {
	if summary == nil || s.deps.Recorder == nil {
		return
	}
	s.deps.Recorder.Record(context.Background(), *summary)
}

// Open shows the privacy notice. Call it once after New.
func (s *Session) Open() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deps.Presenter.PhaseChanged(s.snapshotLocked())
}

func (s *Session) AcknowledgePrivacy() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}
	if err := s.transitionLocked(constants.PhaseInstructions); err != nil {
		return err
	}
	s.deps.Presenter.PhaseChanged(s.snapshotLocked())
	s.deps.Presenter.Instructions(s.game)
	return nil
}

// AcknowledgeInstructions starts camera acquisition and blocks until it
// resolves. Any outcome other than an active camera blocks the session and
// routes the client away; monitoring is never optional.
func (s *Session) AcknowledgeInstructions(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if err := s.transitionLocked(constants.PhaseCameraSetup); err != nil {
		s.mu.Unlock()
		return err
	}
	s.cameraStatus = constants.CameraRequesting
	s.deps.Presenter.PhaseChanged(s.snapshotLocked())
	s.mu.Unlock()

	res := s.deps.Camera.Acquire(ctx)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		res.Handle.Release()
		return ErrSessionClosed
	}

	s.cameraStatus = res.Status
	if !res.Active() {
		res.Handle.Release()
		s.reason = res.Reason
		s.finishedAt = s.deps.Now()
		s.transitionLocked(constants.PhaseBlocked)
		s.deps.Presenter.PhaseChanged(s.snapshotLocked())
		s.deps.Presenter.Redirect(s.deps.HomePath, res.Reason)
		summary := s.summaryLocked(constants.OutcomeBlocked)
		s.mu.Unlock()

		log.Printf("Session blocked: id=%s, user=%s, camera=%s", s.id, s.userID, res.Status)
		s.record(&summary)
		return nil
	}

	s.camera = res.Handle
	s.transitionLocked(constants.PhaseActiveGame)
	s.startedAt = s.deps.Now()
	s.deps.Engine.Arm()
	s.monitoring = true
	s.clock = s.deps.Scheduler.Start(s.game.TimeLimitSec, s.onTick, s.onExpire)

	snap := s.snapshotLocked()
	s.deps.Presenter.PhaseChanged(snap)
	s.deps.Presenter.Monitoring(true, integrity.Listeners)
	s.deps.Presenter.GameStarted(snap)
	s.mu.Unlock()

	log.Printf("Session started: id=%s, user=%s, game=%s", s.id, s.userID, s.game.ID)
	return nil
}

// HandleSignal feeds one raw client signal to the detectors.
func (s *Session) HandleSignal(sig integrity.Signal) {
	s.mu.Lock()
	if s.phase != constants.PhaseActiveGame {
		s.mu.Unlock()
		return
	}
	ev, ok := s.deps.Engine.Inspect(sig)
	if !ok {
		s.mu.Unlock()
		return
	}
	summary := s.applyLocked(s.machine.Record(ev))
	s.mu.Unlock()

	s.record(summary)
}

// UpdateProgress stores the header values the game content reports.
func (s *Session) UpdateProgress(questionIndex, score int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != constants.PhaseActiveGame {
		return fmt.Errorf("%w: progress update in phase %s", ErrInvalidPhase, s.phase)
	}
	if questionIndex < 0 || questionIndex > s.game.TotalQuestions || score < 0 {
		return ErrInvalidInput
	}
	s.questionIndex = questionIndex
	s.score = score
	s.deps.Presenter.Tick(s.snapshotLocked())
	return nil
}

func (s *Session) onTick(remaining int) {
	s.mu.Lock()
	if s.phase != constants.PhaseActiveGame {
		s.mu.Unlock()
		return
	}
	s.timeRemaining = remaining

	var summary *models.SessionSummary
	if count, ok := s.deps.Engine.SampleFaces(); ok {
		s.faceCount = count
		summary = s.applyLocked(s.machine.ObserveFaces(count))
	}
	if s.phase == constants.PhaseActiveGame {
		s.deps.Presenter.Tick(s.snapshotLocked())
	}
	s.mu.Unlock()

	s.record(summary)
}

func (s *Session) onExpire() {
	s.mu.Lock()
	score := s.score
	s.mu.Unlock()

	if err := s.Complete(context.Background(), score); err != nil && !errors.Is(err, ErrInvalidPhase) && !errors.Is(err, ErrSessionClosed) {
		log.Printf("Failed to complete session %s on time-out: %v", s.id, err)
	}
}

func (s *Session) applyLocked(d disqualification.Decision) *models.SessionSummary {
	if d.Violation != nil {
		s.deps.Presenter.Violation(*d.Violation, s.machine.ViolationCount())
	}
	if d.Warn {
		s.deps.Presenter.Warning(Warning{
			Kind:      d.Kind,
			Count:     d.Count,
			Remaining: d.Remaining,
			Message:   warningMessage(d.Kind, d.Remaining),
		})
	}
	if !d.Entered {
		return nil
	}
	return s.disqualifyLocked(d.Reason)
}

func (s *Session) disqualifyLocked(reason string) *models.SessionSummary {
	if err := s.transitionLocked(constants.PhaseDisqualified); err != nil {
		log.Printf("Failed to disqualify session %s: %v", s.id, err)
		return nil
	}
	s.reason = reason
	s.finishedAt = s.deps.Now()
	s.teardownLocked()

	s.deps.Presenter.PhaseChanged(s.snapshotLocked())
	s.deps.Presenter.Disqualified(reason, s.deps.RedirectDelay)
	s.redirect = s.deps.AfterFunc(s.deps.RedirectDelay, func() {
		s.redirectHome("Your game ended because of an integrity violation: " + reason)
	})

	log.Printf("Session disqualified: id=%s, user=%s, reason=%s", s.id, s.userID, reason)
	summary := s.summaryLocked(constants.OutcomeDisqualified)
	return &summary
}

// Complete is the game content's onGameComplete. Progress is written only here.
func (s *Session) Complete(ctx context.Context, finalScore int) error {
	if finalScore < 0 {
		return progress.ErrInvalidScore
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if err := s.transitionLocked(constants.PhaseCompleted); err != nil {
		s.mu.Unlock()
		return err
	}
	s.score = finalScore
	s.finishedAt = s.deps.Now()
	s.teardownLocked()
	s.deps.Presenter.PhaseChanged(s.snapshotLocked())
	summary := s.summaryLocked(constants.OutcomeCompleted)
	s.mu.Unlock()

	result := CompletionResult{Score: finalScore}
	rec, advanced, err := s.deps.Progress.RecordCompletion(ctx, s.userID, s.game.UnlockIndex, finalScore)
	if err != nil {
		log.Printf("Failed to save progress for session %s: %v", s.id, err)
	} else {
		result.Progress = rec
		result.Advanced = advanced
		result.Saved = true
	}
	s.deps.Presenter.Completed(result)

	log.Printf("Session completed: id=%s, user=%s, score=%d", s.id, s.userID, finalScore)
	s.record(&summary)
	return nil
}

// Dismiss skips the redirect countdown on the disqualification panel.
func (s *Session) Dismiss() {
	s.mu.Lock()
	phase := s.phase
	reason := s.reason
	s.mu.Unlock()

	if phase != constants.PhaseDisqualified {
		return
	}
	s.redirectHome("Your game ended because of an integrity violation: " + reason)
}

func (s *Session) redirectHome(message string) {
	s.redirectOnce.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.redirect != nil {
			s.redirect.Stop()
		}
		s.deps.Presenter.Redirect(s.deps.HomePath, message)
	})
}

// Close tears the session down when the client navigates away. Progress is
// never written from here.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true

	var summary *models.SessionSummary
	if s.phase == constants.PhaseActiveGame {
		s.finishedAt = s.deps.Now()
		s.reason = "client disconnected"
		sum := s.summaryLocked(constants.OutcomeAbandoned)
		summary = &sum
	}
	s.teardownLocked()
	if s.redirect != nil {
		s.redirect.Stop()
	}
	s.mu.Unlock()

	s.record(summary)
}

func (s *Session) teardownLocked() {
	if s.clock != nil {
		s.clock.Stop()
	}
	s.deps.Engine.Disarm()
	s.camera.Release()
	if s.monitoring {
		s.monitoring = false
		s.deps.Presenter.Monitoring(false, nil)
	}
}

func warningMessage(kind constants.ViolationKind, remaining int) string {
	switch kind {
	case constants.ViolationTabSwitch:
		return fmt.Sprintf("Switching tabs is not allowed. %d more switch(es) will end your game.", remaining)
	case constants.ViolationDevToolsAttempt:
		return fmt.Sprintf("Right-click and developer tools are not allowed. %d more attempt(s) will end your game.", remaining)
	case constants.ViolationMultiFace:
		return fmt.Sprintf("More than one face is in view. Only you may be on camera; the game ends in %d seconds.", remaining)
	case constants.ViolationNoFace:
		return fmt.Sprintf("No face detected. Return to the camera within %d seconds.", remaining)
	default:
		return "Suspicious activity was recorded."
	}
}
