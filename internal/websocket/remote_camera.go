package websocket

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"proctor-service/internal/camera"

	"github.com/google/uuid"
)

var errClientGone = errors.New("client disconnected")

// pendingReplies matches camera_result and preview_result messages to the
// request waiting for them.
type pendingReplies struct {
	mu      sync.Mutex
	waiting map[string]chan any
}

func newPendingReplies() *pendingReplies {
	return &pendingReplies{waiting: make(map[string]chan any)}
}

func (p *pendingReplies) open() (string, <-chan any) {
	id := uuid.NewString()
	ch := make(chan any, 1)
	p.mu.Lock()
	p.waiting[id] = ch
	p.mu.Unlock()
	return id, ch
}

func (p *pendingReplies) cancel(id string) {
	p.mu.Lock()
	delete(p.waiting, id)
	p.mu.Unlock()
}

// resolve reports false for unknown or already answered requests.
func (p *pendingReplies) resolve(id string, payload any) bool {
	p.mu.Lock()
	ch, ok := p.waiting[id]
	delete(p.waiting, id)
	p.mu.Unlock()
	if !ok {
		return false
	}
	ch <- payload
	return true
}

func (c *Client) await(ctx context.Context, ch <-chan any) (any, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.ctx.Done():
		return nil, errClientGone
	case payload := <-ch:
		return payload, nil
	}
}

// remoteDevices drives the browser's getUserMedia over the socket.
type remoteDevices struct {
	client *Client
}

func (d remoteDevices) Supported() bool {
	return d.client.mediaDevices.Load()
}

func (d remoteDevices) GetUserMedia(ctx context.Context, constraints camera.Constraints) (camera.Stream, error) {
	id, reply := d.client.replies.open()
	defer d.client.replies.cancel(id)

	d.client.SendMessage(MessageTypeCameraRequest, CameraRequestPayload{
		RequestID:   id,
		Constraints: constraints,
	})

	payload, err := d.client.await(ctx, reply)
	if err != nil {
		return nil, err
	}

	var res CameraResultPayload
	if err := decodePayload(payload, &res); err != nil {
		return nil, fmt.Errorf("decode camera result: %w", err)
	}
	if !res.OK {
		return nil, &camera.DeviceError{Name: res.ErrorName, Message: res.ErrorMessage}
	}

	stream := &remoteStream{}
	for _, t := range res.Tracks {
		if t.Kind != "video" {
			continue
		}
		stream.tracks = append(stream.tracks, &remoteTrack{id: t.ID, kind: t.Kind, client: d.client})
	}
	if len(stream.tracks) == 0 {
		// A stream without video cannot be proctored.
		return nil, &camera.DeviceError{Name: "NotFoundError", Message: "no video track in stream"}
	}
	return stream, nil
}

type remotePreview struct {
	client *Client
}

func (p remotePreview) Attach(ctx context.Context, s camera.Stream) error {
	id, reply := p.client.replies.open()
	defer p.client.replies.cancel(id)

	var trackIDs []string
	for _, t := range s.Tracks() {
		trackIDs = append(trackIDs, t.ID())
	}
	p.client.SendMessage(MessageTypeCameraAttach, CameraAttachPayload{RequestID: id, TrackIDs: trackIDs})

	payload, err := p.client.await(ctx, reply)
	if err != nil {
		return err
	}

	var res PreviewResultPayload
	if err := decodePayload(payload, &res); err != nil {
		return fmt.Errorf("decode preview result: %w", err)
	}
	if !res.OK {
		return fmt.Errorf("preview playback failed: %s", res.Error)
	}
	return nil
}

type remoteStream struct {
	tracks []*remoteTrack
}

func (s *remoteStream) Tracks() []camera.Track {
	out := make([]camera.Track, len(s.tracks))
	for i, t := range s.tracks {
		out[i] = t
	}
	return out
}

type remoteTrack struct {
	id     string
	kind   string
	client *Client
}

func (t *remoteTrack) ID() string   { return t.id }
func (t *remoteTrack) Kind() string { return t.kind }

// Stop tells the client to stop the track. The camera handle calls it once.
func (t *remoteTrack) Stop() {
	t.client.SendMessage(MessageTypeCameraRelease, CameraReleasePayload{TrackID: t.id})
}
