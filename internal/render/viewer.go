package render

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/vk/congestsim/internal/ctxlog"
	"github.com/vk/congestsim/internal/graph"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

const (
	eventRun  = "run"
	eventTick = "tick"
	eventEnd  = "end"

	connectTimeout = 15 * time.Second
)

// ErrViewerDisconnected is returned by Render once the viewer connection is gone.
var ErrViewerDisconnected = errors.New("render: viewer disconnected")

// VertexFrame is a vertex as sent to the viewer.
type VertexFrame struct {
	ID int `json:"id"`
	X  int `json:"x"`
	Y  int `json:"y"`
}

// EdgeFrame is a loaded edge as sent to the viewer.
type EdgeFrame struct {
	Start    int    `json:"start"`
	End      int    `json:"end"`
	Load     int    `json:"load"`
	Capacity int    `json:"capacity"`
	Color    string `json:"color"`
}

// RunFrame introduces a run and carries the static layout.
type RunFrame struct {
	RunID    string        `json:"run_id"`
	Vertices []VertexFrame `json:"vertices"`
}

// TickFrame is the congestion state after one tick.
type TickFrame struct {
	RunID string      `json:"run_id"`
	Tick  int         `json:"tick"`
	Edges []EdgeFrame `json:"edges"`
}

// NewRunFrame builds the layout frame for s.
func NewRunFrame(runID string, s graph.Snapshot) RunFrame {
	f := RunFrame{RunID: runID, Vertices: make([]VertexFrame, len(s.Vertices))}
	for i, v := range s.Vertices {
		f.Vertices[i] = VertexFrame{ID: int(v.ID), X: v.X, Y: v.Y}
	}
	return f
}

// NewTickFrame builds the frame for one tick. Only loaded edges are included.
func NewTickFrame(runID string, tick int, s graph.Snapshot) TickFrame {
	loaded := s.Loaded()
	f := TickFrame{RunID: runID, Tick: tick, Edges: make([]EdgeFrame, len(loaded))}
	for i, e := range loaded {
		f.Edges[i] = EdgeFrame{
			Start:    int(e.Start),
			End:      int(e.End),
			Load:     e.Load,
			Capacity: e.Capacity,
			Color:    Color(e.Load, e.Capacity),
		}
	}
	return f
}

// Viewer streams frames to a socket.io viewer. The layout is sent with the
// first frame; every later frame carries loaded edges only.
type Viewer struct {
	io      *socket.Socket
	runID   string
	started bool
}

// DialViewer connects to the viewer at rawURL and namespace. It blocks until
// the connection is up, ctx is done, or the connect timeout passes.
func DialViewer(ctx context.Context, rawURL, namespace string) (*Viewer, error) {
	runID := uuid.NewString()
	logger := ctxlog.FromContext(ctx).With("renderer", "viewer", "url", rawURL, "run_id", runID)

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse viewer URL: %w", err)
	}

	opts := socket.DefaultOptions()
	opts.SetPath(parsedURL.Path)
	opts.SetTransports(types.NewSet(transports.WebSocket))

	connectChan := make(chan error, 1)

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(namespace, opts)

	io.Once(types.EventName("connect"), func(...any) {
		logger.Debug("Viewer connected.", "sid", io.Id())
		connectChan <- nil
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err, _ := errs[0].(error)
		if err == nil {
			err = fmt.Errorf("%v", errs[0])
		}
		connectChan <- err
	})

	io.Connect()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("viewer connection failed: %w", err)
		}
		logger.Info("Streaming congestion to viewer.")
		return &Viewer{io: io, runID: runID}, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for viewer connection: %w", ctx.Err())
	case <-time.After(connectTimeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for viewer connection", connectTimeout)
	}
}

// RunID identifies this run in every frame.
func (v *Viewer) RunID() string { return v.runID }

func (v *Viewer) Render(tick int, s graph.Snapshot) error {
	if !v.io.Connected() {
		return ErrViewerDisconnected
	}
	if !v.started {
		v.io.Emit(eventRun, NewRunFrame(v.runID, s))
		v.started = true
	}
	v.io.Emit(eventTick, NewTickFrame(v.runID, tick, s))
	return nil
}

// Close announces the end of the run and disconnects.
func (v *Viewer) Close() error {
	if v.io.Connected() {
		v.io.Emit(eventEnd, map[string]any{"run_id": v.runID})
	}
	v.io.Disconnect()
	return nil
}
