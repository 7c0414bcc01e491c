package camera

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"proctor-service/internal/constants"
)

// Constraints are advisory: the device may deliver a different resolution.
type Constraints struct {
	Video      bool   `json:"video"`
	Audio      bool   `json:"audio"`
	Width      int    `json:"width,omitempty"`
	Height     int    `json:"height,omitempty"`
	FacingMode string `json:"facing_mode,omitempty"`
}

func DefaultConstraints(width, height int) Constraints {
	return Constraints{
		Video:      true,
		Audio:      false,
		Width:      width,
		Height:     height,
		FacingMode: "user",
	}
}

type Track interface {
	ID() string
	Kind() string
	Stop()
}

type Stream interface {
	Tracks() []Track
}

// Devices is the capture-device API of the client.
type Devices interface {
	Supported() bool
	GetUserMedia(ctx context.Context, c Constraints) (Stream, error)
}

// Preview attaches a stream to the live preview surface and returns once
// playback has actually started.
type Preview interface {
	Attach(ctx context.Context, s Stream) error
}

// DeviceError carries the name the capture API reported, e.g. NotAllowedError.
type DeviceError struct {
	Name    string
	Message string
}

func (e *DeviceError) Error() string {
	if e.Message == "" {
		return e.Name
	}
	return fmt.Sprintf("%s: %s", e.Name, e.Message)
}

var ErrPromptTimeout = errors.New("camera permission prompt timed out")

type Result struct {
	Status constants.CameraStatus
	Reason string
	Handle *Handle
}

func (r Result) Active() bool {
	return r.Status == constants.CameraActive
}

// Classify maps an acquisition error to a camera status and a remediation message.
func Classify(err error) (constants.CameraStatus, string) {
	if errors.Is(err, ErrPromptTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return constants.CameraFailed, "The camera permission prompt was not answered in time. Reload the page and allow camera access to continue."
	}

	var devErr *DeviceError
	if !errors.As(err, &devErr) {
		return constants.CameraFailed, fmt.Sprintf("Unable to start the camera: %v", err)
	}

	switch devErr.Name {
	case "NotAllowedError", "PermissionDeniedError", "SecurityError":
		return constants.CameraDenied, "Camera permission was denied. Allow camera access in your browser settings to take this quiz."
	case "NotFoundError", "DevicesNotFoundError", "OverconstrainedError":
		return constants.CameraNoDevice, "No camera was found. Connect a camera to take this quiz."
	case "NotReadableError", "TrackStartError", "AbortError":
		return constants.CameraDeviceBusy, "The camera is being used by another application. Close it and try again."
	default:
		return constants.CameraFailed, fmt.Sprintf("Unable to start the camera: %s", devErr.Error())
	}
}

const noPreviewReason = "The camera preview is unavailable. Reload the page and try again."

const unsupportedReason = "This browser does not support camera access. Use a browser with camera support to take this quiz."

type Acquirer struct {
	Devices     Devices
	Preview     Preview
	Constraints Constraints
	// Zero waits for the prompt indefinitely.
	Timeout time.Duration
}

func (a *Acquirer) Acquire(ctx context.Context) Result {
	if a.Devices == nil || !a.Devices.Supported() {
		return Result{Status: constants.CameraUnsupported, Reason: unsupportedReason}
	}
	// Active requires confirmed playback.
	if a.Preview == nil {
		return Result{Status: constants.CameraFailed, Reason: noPreviewReason}
	}

	if a.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.Timeout)
		defer cancel()
	}

	stream, err := a.Devices.GetUserMedia(ctx, a.Constraints)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = ErrPromptTimeout
		}
		status, reason := Classify(err)
		log.Printf("Camera acquisition failed: status=%s, err=%v", status, err)
		return Result{Status: status, Reason: reason}
	}

	handle := NewHandle(stream)

	if err := a.Preview.Attach(ctx, stream); err != nil {
		log.Printf("Camera preview failed to start: %v", err)
		handle.Release()
		return Result{
			Status: constants.CameraFailed,
			Reason: "The camera started but the preview could not be displayed. Reload the page and try again.",
		}
	}

	return Result{Status: constants.CameraActive, Handle: handle}
}

// Handle owns an acquired stream and stops its tracks exactly once.
type Handle struct {
	stream Stream
	once   sync.Once
}

func NewHandle(s Stream) *Handle {
	return &Handle{stream: s}
}

func (h *Handle) Release() {
	if h == nil {
		return
	}
	h.once.Do(func() {
		if h.stream == nil {
			return
		}
		for _, t := range h.stream.Tracks() {
			t.Stop()
		}
	})
}

func (h *Handle) Stream() Stream {
	if h == nil {
		return nil
	}
	return h.stream
}
