package websocket

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"proctor-service/internal/camera"
	"proctor-service/internal/constants"
	"proctor-service/internal/disqualification"
	"proctor-service/internal/integrity"
	"proctor-service/internal/session"
	"proctor-service/internal/timer"

	"github.com/google/uuid"
)

type ClientMessage struct {
	Client  *Client
	Message Message
}

// Options carries what every new session is built from.
type Options struct {
	Policy        disqualification.Policy
	Constraints   camera.Constraints
	PromptTimeout time.Duration
	RedirectDelay time.Duration
	HomePath      string
	FaceProvider  string

	Progress  session.ProgressRecorder
	Recorder  session.Recorder
	Scheduler timer.Scheduler
}

type Hub struct {
	clients       map[string]map[*Client]bool
	Register      chan *Client
	Unregister    chan *Client
	HandleMessage chan *ClientMessage

	opts Options

	mu sync.RWMutex
}

func NewHub(opts Options) *Hub {
	if opts.Scheduler == nil {
		opts.Scheduler = timer.RealScheduler{}
	}
	return &Hub{
		clients:       make(map[string]map[*Client]bool),
		Register:      make(chan *Client),
		Unregister:    make(chan *Client),
		HandleMessage: make(chan *ClientMessage, 256),
		opts:          opts,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.registerClient(client)

		case client := <-h.Unregister:
			h.unregisterClient(client)

		case clientMsg := <-h.HandleMessage:
			h.handleClientMessage(clientMsg)
		}
	}
}

// ActiveSessions counts connected clients.
func (h *Hub) ActiveSessions() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, clients := range h.clients {
		n += len(clients)
	}
	return n
}

func (h *Hub) newSession(client *Client) (*session.Session, error) {
	var faces integrity.FaceCountProvider
	if h.opts.FaceProvider == constants.FaceProviderReported {
		client.faces = integrity.NewReportedFaceProvider()
		faces = client.faces
	} else {
		faces = integrity.NewRandomFaceProvider()
	}

	acquirer := &camera.Acquirer{
		Devices:     remoteDevices{client: client},
		Preview:     remotePreview{client: client},
		Constraints: h.opts.Constraints,
		Timeout:     h.opts.PromptTimeout,
	}

	return session.New(uuid.NewString(), client.UserID, client.Game, session.Deps{
		Camera:        acquirer,
		Engine:        integrity.NewEngine(faces),
		Policy:        h.opts.Policy,
		Progress:      h.opts.Progress,
		Recorder:      h.opts.Recorder,
		Presenter:     clientPresenter{client: client},
		Scheduler:     h.opts.Scheduler,
		RedirectDelay: h.opts.RedirectDelay,
		HomePath:      h.opts.HomePath,
	})
}

func (h *Hub) registerClient(client *Client) {
	sess, err := h.newSession(client)
	if err != nil {
		log.Printf("Failed to create session for user %s: %v", client.UserID, err)
		client.SendError("Failed to start session")
		client.shutdown()
		return
	}
	client.Session = sess

	h.mu.Lock()
	if h.clients[client.UserID] == nil {
		h.clients[client.UserID] = make(map[*Client]bool)
	}
	h.clients[client.UserID][client] = true
	h.mu.Unlock()

	log.Printf("Client registered: user=%s, game=%s, session=%s", client.UserID, client.Game.ID, sess.ID())

	client.SendMessage(MessageTypeConnected, ConnectedPayload{
		SessionID: sess.ID(),
		Game:      client.Game,
	})
	sess.Open()

	go client.runCommands()
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	clients, ok := h.clients[client.UserID]
	if ok {
		if _, ok = clients[client]; ok {
			delete(clients, client)
			if len(clients) == 0 {
				delete(h.clients, client.UserID)
			}
		}
	}
	h.mu.Unlock()

	if !ok {
		return
	}

	// Close the session before the socket so camera_release still goes out.
	if client.Session != nil {
		client.Session.Close()
	}
	client.shutdown()

	log.Printf("Client unregistered: user=%s, game=%s", client.UserID, client.Game.ID)
}

func (h *Hub) handleClientMessage(clientMsg *ClientMessage) {
	client := clientMsg.Client
	msg := clientMsg.Message

	switch {
	case isReply(msg.Type):
		h.handleReply(client, msg)

	case msg.Type == MessageTypePing:
		client.SendMessage(MessageTypePong, nil)

	case msg.Type == MessageTypeCapabilities:
		var caps CapabilitiesPayload
		if err := decodePayload(msg.Payload, &caps); err != nil {
			client.SendError("Invalid capabilities payload")
			return
		}
		client.mediaDevices.Store(caps.MediaDevices)

	case msg.Type == MessageTypeFaceReport:
		h.handleFaceReport(client, msg)

	default:
		client.enqueue(msg)
	}
}

func (h *Hub) handleReply(client *Client, msg Message) {
	var ref struct {
		RequestID string `json:"request_id"`
	}
	if err := decodePayload(msg.Payload, &ref); err != nil || ref.RequestID == "" {
		client.SendError("Reply is missing request_id")
		return
	}
	if !client.replies.resolve(ref.RequestID, msg.Payload) {
		log.Printf("Dropping stale %s for user %s: request=%s", msg.Type, client.UserID, ref.RequestID)
	}
}

func (h *Hub) handleFaceReport(client *Client, msg Message) {
	if client.faces == nil {
		return
	}
	var report FaceReportPayload
	if err := decodePayload(msg.Payload, &report); err != nil {
		client.SendError("Invalid face report")
		return
	}
	client.faces.Report(report.Count)
}

// applyCommand runs on the client's command goroutine.
func (h *Hub) applyCommand(client *Client, msg Message) {
	sess := client.Session
	var err error

	switch msg.Type {
	case MessageTypeAcknowledgePrivacy:
		err = sess.AcknowledgePrivacy()

	case MessageTypeAcknowledgeInstructions:
		err = sess.AcknowledgeInstructions(client.ctx)

	case MessageTypeSignal:
		var sig integrity.Signal
		if err := decodePayload(msg.Payload, &sig); err != nil {
			client.SendError("Invalid signal payload")
			return
		}
		sess.HandleSignal(sig)

	case MessageTypeProgress:
		var p ProgressPayload
		if err := decodePayload(msg.Payload, &p); err != nil {
			client.SendError("Invalid progress payload")
			return
		}
		err = sess.UpdateProgress(p.QuestionIndex, p.Score)

	case MessageTypeComplete:
		var p CompletePayload
		if err := decodePayload(msg.Payload, &p); err != nil {
			client.SendError("Invalid complete payload")
			return
		}
		err = sess.Complete(client.ctx, p.Score)

	case MessageTypeDismiss:
		sess.Dismiss()

	default:
		client.SendError(fmt.Sprintf("Unknown message type: %s", msg.Type))
		return
	}

	if err != nil && !errors.Is(err, session.ErrSessionClosed) {
		log.Printf("Failed to apply %s for user %s: %v", msg.Type, client.UserID, err)
		client.SendError(err.Error())
	}
}
