package constants

type Phase string

const (
	PhasePrivacyNotice Phase = "privacy_notice"
	PhaseInstructions  Phase = "instructions"
	PhaseCameraSetup   Phase = "camera_setup"
	PhaseActiveGame    Phase = "active_game"
	PhaseCompleted     Phase = "completed"
	PhaseDisqualified  Phase = "disqualified"
	// Camera acquisition failed; the client is routed away.
	PhaseBlocked Phase = "blocked"
)

type CameraStatus string

const (
	CameraUnrequested CameraStatus = "unrequested"
	CameraRequesting  CameraStatus = "requesting"
	CameraActive      CameraStatus = "active"
	CameraDenied      CameraStatus = "denied"
	CameraUnsupported CameraStatus = "unsupported"
	CameraDeviceBusy  CameraStatus = "device_busy"
	CameraNoDevice    CameraStatus = "no_device"
	CameraFailed      CameraStatus = "failed"
)

type ViolationKind string

const (
	ViolationTabSwitch       ViolationKind = "tab_switch"
	ViolationDevToolsAttempt ViolationKind = "devtools_attempt"
	ViolationMultiFace       ViolationKind = "multi_face"
	ViolationNoFace          ViolationKind = "no_face"
	ViolationMouseLeft       ViolationKind = "mouse_left"
)

const (
	OutcomeCompleted    = "completed"
	OutcomeDisqualified = "disqualified"
	OutcomeBlocked      = "blocked"
	OutcomeAbandoned    = "abandoned"
)

const (
	QueueSessionCompleted    = "proctor.session_completed"
	QueueSessionDisqualified = "proctor.session_disqualified"
	QueueSessionBlocked      = "proctor.session_blocked"
)

const (
	FaceProviderSimulated = "simulated"
	FaceProviderReported  = "reported"
)

const ServiceName = "proctor.v1.ProctorService"
