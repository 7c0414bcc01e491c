package integrity

type SignalType string

const (
	SignalVisibility   SignalType = "visibility"
	SignalKeyDown      SignalType = "keydown"
	SignalContextMenu  SignalType = "contextmenu"
	SignalPointerLeave SignalType = "pointer_leave"
)

// Signal is a raw browser event forwarded by the client.
type Signal struct {
	Type   SignalType `json:"type"`
	Hidden bool       `json:"hidden,omitempty"`
	Key    string     `json:"key,omitempty"`
	Ctrl   bool       `json:"ctrl,omitempty"`
	Meta   bool       `json:"meta,omitempty"`
	Shift  bool       `json:"shift,omitempty"`
	Alt    bool       `json:"alt,omitempty"`
}

// Listeners names the DOM listeners the client must hold while monitoring.
var Listeners = []SignalType{
	SignalVisibility,
	SignalKeyDown,
	SignalContextMenu,
	SignalPointerLeave,
}
