package websocket

import (
	"encoding/json"

	"proctor-service/internal/camera"
	"proctor-service/internal/catalog"
	"proctor-service/internal/integrity"
	"proctor-service/internal/models"
	"proctor-service/internal/session"
)

type MessageType string

const (
	// Client -> Server
	MessageTypeCapabilities            MessageType = "capabilities"
	MessageTypeAcknowledgePrivacy      MessageType = "acknowledge_privacy"
	MessageTypeAcknowledgeInstructions MessageType = "acknowledge_instructions"
	MessageTypeCameraResult            MessageType = "camera_result"
	MessageTypePreviewResult           MessageType = "preview_result"
	MessageTypeSignal                  MessageType = "signal"
	MessageTypeFaceReport              MessageType = "face_report"
	MessageTypeProgress                MessageType = "progress"
	MessageTypeComplete                MessageType = "complete"
	MessageTypeDismiss                 MessageType = "dismiss"
	MessageTypePing                    MessageType = "ping"

	// Server -> Client
	MessageTypeConnected     MessageType = "connected"
	MessageTypePhase         MessageType = "phase"
	MessageTypeInstructions  MessageType = "instructions"
	MessageTypeCameraRequest MessageType = "camera_request"
	MessageTypeCameraAttach  MessageType = "camera_attach"
	MessageTypeCameraRelease MessageType = "camera_release"
	MessageTypeMonitoring    MessageType = "monitoring"
	MessageTypeGameStarted   MessageType = "game_started"
	MessageTypeTick          MessageType = "tick"
	MessageTypeViolation     MessageType = "violation"
	MessageTypeWarning       MessageType = "warning"
	MessageTypeDisqualified  MessageType = "disqualified"
	MessageTypeCompleted     MessageType = "completed"
	MessageTypeRedirect      MessageType = "redirect"
	MessageTypeError         MessageType = "error"
	MessageTypePong          MessageType = "pong"
)

type Message struct {
	Type    MessageType `json:"type"`
	Payload any         `json:"payload,omitempty"`
}

// decodePayload converts the loosely typed payload of an incoming message.
func decodePayload(payload any, v any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

type CapabilitiesPayload struct {
	MediaDevices bool   `json:"media_devices"`
	UserAgent    string `json:"user_agent,omitempty"`
}

type CameraResultPayload struct {
	RequestID    string      `json:"request_id"`
	OK           bool        `json:"ok"`
	ErrorName    string      `json:"error_name,omitempty"`
	ErrorMessage string      `json:"error_message,omitempty"`
	Tracks       []TrackInfo `json:"tracks,omitempty"`
}

type TrackInfo struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`
}

type PreviewResultPayload struct {
	RequestID string `json:"request_id"`
	OK        bool   `json:"ok"`
	Error     string `json:"error,omitempty"`
}

type FaceReportPayload struct {
	Count int `json:"count"`
}

type ProgressPayload struct {
	QuestionIndex int `json:"question_index"`
	Score         int `json:"score"`
}

type CompletePayload struct {
	Score int `json:"score"`
}

type ConnectedPayload struct {
	SessionID string       `json:"session_id"`
	Game      catalog.Game `json:"game"`
}

type PhasePayload struct {
	Session session.Snapshot `json:"session"`
}

type InstructionsPayload struct {
	Game catalog.Game `json:"game"`
}

type CameraRequestPayload struct {
	RequestID   string             `json:"request_id"`
	Constraints camera.Constraints `json:"constraints"`
}

type CameraAttachPayload struct {
	RequestID string   `json:"request_id"`
	TrackIDs  []string `json:"track_ids"`
}

type CameraReleasePayload struct {
	TrackID string `json:"track_id"`
}

type MonitoringPayload struct {
	Active    bool                   `json:"active"`
	Listeners []integrity.SignalType `json:"listeners,omitempty"`
}

type ViolationPayload struct {
	Violation      models.ViolationEvent `json:"violation"`
	ViolationCount int                   `json:"violation_count"`
}

type DisqualifiedPayload struct {
	Reason     string `json:"reason"`
	RedirectIn int64  `json:"redirect_in_ms"`
}

type RedirectPayload struct {
	Path    string `json:"path"`
	Message string `json:"message,omitempty"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

func isReply(t MessageType) bool {
	return t == MessageTypeCameraResult || t == MessageTypePreviewResult
}
