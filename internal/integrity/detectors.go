package integrity

import (
	"strings"

	"proctor-service/internal/constants"
)

// Detector turns one raw signal into a violation kind, if it qualifies.
type Detector interface {
	Name() string
	Inspect(sig Signal) (kind constants.ViolationKind, detail string, ok bool)
}

type VisibilityDetector struct{}

func (VisibilityDetector) Name() string { return "visibility" }

func (VisibilityDetector) Inspect(sig Signal) (constants.ViolationKind, string, bool) {
	if sig.Type != SignalVisibility || !sig.Hidden {
		return "", "", false
	}
	return constants.ViolationTabSwitch, "document became hidden", true
}

// DevToolsDetector catches the context menu and the shortcuts that open
// developer tools or view-source.
type DevToolsDetector struct{}

func (DevToolsDetector) Name() string { return "devtools" }

func (DevToolsDetector) Inspect(sig Signal) (constants.ViolationKind, string, bool) {
	switch sig.Type {
	case SignalContextMenu:
		return constants.ViolationDevToolsAttempt, "context menu", true
	case SignalKeyDown:
		if combo, ok := matchDevToolsShortcut(sig); ok {
			return constants.ViolationDevToolsAttempt, combo, true
		}
	}
	return "", "", false
}

func matchDevToolsShortcut(sig Signal) (string, bool) {
	key := strings.ToUpper(sig.Key)
	if key == "F12" {
		return "F12", true
	}
	if !sig.Ctrl && !sig.Meta {
		return "", false
	}
	mod := "Ctrl"
	if sig.Meta {
		mod = "Meta"
	}
	if sig.Shift {
		switch key {
		case "I", "J", "C":
			return mod + "+Shift+" + key, true
		}
		return "", false
	}
	if key == "U" {
		return mod + "+U", true
	}
	return "", false
}

// PointerExitDetector records the pointer leaving the viewport. Advisory only.
type PointerExitDetector struct{}

func (PointerExitDetector) Name() string { return "pointer_exit" }

func (PointerExitDetector) Inspect(sig Signal) (constants.ViolationKind, string, bool) {
	if sig.Type != SignalPointerLeave {
		return "", "", false
	}
	return constants.ViolationMouseLeft, "pointer left the game viewport", true
}

func DefaultDetectors() []Detector {
	return []Detector{
		VisibilityDetector{},
		DevToolsDetector{},
		PointerExitDetector{},
	}
}
