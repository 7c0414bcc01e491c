package integrity

import (
	"sync"
	"time"

	"proctor-service/internal/constants"
	"proctor-service/internal/models"
)

// Engine runs the detectors while a game is active. Signals that arrive
// while it is disarmed are dropped, as if no listener were registered.
type Engine struct {
	detectors []Detector
	faces     FaceCountProvider
	now       func() time.Time

	mu    sync.Mutex
	armed bool
}

func NewEngine(faces FaceCountProvider, detectors ...Detector) *Engine {
	if faces == nil {
		faces = NewRandomFaceProvider()
	}
	if len(detectors) == 0 {
		detectors = DefaultDetectors()
	}
	return &Engine{
		detectors: detectors,
		faces:     faces,
		now:       time.Now,
	}
}

// Arm registers the listeners. Arming twice has no extra effect.
func (e *Engine) Arm() {
	e.mu.Lock()
	e.armed = true
	e.mu.Unlock()
}

func (e *Engine) Disarm() {
	e.mu.Lock()
	e.armed = false
	e.mu.Unlock()
}

func (e *Engine) Armed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.armed
}

// Inspect runs the signal through every detector and returns the first violation.
func (e *Engine) Inspect(sig Signal) (models.ViolationEvent, bool) {
	if !e.Armed() {
		return models.ViolationEvent{}, false
	}
	for _, d := range e.detectors {
		if kind, detail, ok := d.Inspect(sig); ok {
			return models.ViolationEvent{Kind: kind, Timestamp: e.now(), Detail: detail}, true
		}
	}
	return models.ViolationEvent{}, false
}

// SampleFaces takes one face-count sample. It reports ok=false when disarmed.
func (e *Engine) SampleFaces() (count int, ok bool) {
	if !e.Armed() {
		return 0, false
	}
	count = e.faces.Sample()
	if count < 0 {
		count = 0
	}
	return count, true
}

// FaceViolation returns the kind a face count represents, if any.
func FaceViolation(count int) (constants.ViolationKind, bool) {
	switch {
	case count == 0:
		return constants.ViolationNoFace, true
	case count >= 2:
		return constants.ViolationMultiFace, true
	default:
		return "", false
	}
}
