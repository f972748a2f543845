package server

import (
	"context"
	"net/http"
	"strconv"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/matzehuels/wrldbldr/pkg/config"
	wberrors "github.com/matzehuels/wrldbldr/pkg/errors"
	"github.com/matzehuels/wrldbldr/pkg/gen"
	"github.com/matzehuels/wrldbldr/pkg/layout"
	"github.com/matzehuels/wrldbldr/pkg/tiles"
)

// Stream message kinds beyond the lifecycle events of gen.Event.
const (
	KindLayout = "layout"
	KindError  = "error"
)

// ErrorMessage is sent when a streamed run fails. It is always the last
// message before the connection closes.
type ErrorMessage struct {
	Kind  string        `json:"kind"`
	RunID string        `json:"run_id,omitempty"`
	Code  wberrors.Code `json:"code,omitempty"`
	Error string        `json:"error"`
}

// LayoutMessage carries the autotiled result of a completed run.
type LayoutMessage struct {
	Kind   string        `json:"kind"`
	RunID  string        `json:"run_id"`
	Layout layout.Layout `json:"layout"`
}

// handleStream runs the server project and forwards every lifecycle event
// as a JSON text message. The run is stepped one slice at a time on the
// request goroutine; a failed write cancels it.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	p := s.cfg.Project
	if v := r.URL.Query().Get("seed"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			http.Error(w, "invalid seed", http.StatusBadRequest)
			return
		}
		p = p.WithSeed(seed)
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket accept failed", "error", err)
		return
	}
	defer conn.CloseNow()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	// Drain client frames so pings and close frames are handled.
	ctx = conn.CloseRead(ctx)

	send := func(v any) bool {
		wctx, wcancel := context.WithTimeout(ctx, s.cfg.WriteTimeout)
		defer wcancel()
		if err := wsjson.Write(wctx, conn, v); err != nil {
			s.logger.Debug("stream write failed", "error", err)
			cancel()
			return false
		}
		return true
	}

	runID, l, err := s.streamRun(ctx, p, func(ev gen.Event) { send(ev) })
	if err != nil {
		send(ErrorMessage{
			Kind:  KindError,
			RunID: runID,
			Code:  wberrors.GetCode(err),
			Error: wberrors.UserMessage(err),
		})
		conn.Close(websocket.StatusInternalError, "generation failed")
		return
	}
	if !send(LayoutMessage{Kind: KindLayout, RunID: runID, Layout: l}) {
		return
	}
	conn.Close(websocket.StatusNormalClosure, "")
}

func (s *Server) streamRun(ctx context.Context, p *config.Project, emit func(gen.Event)) (string, layout.Layout, error) {
	cfg, bp, ts, err := p.Build()
	if err != nil {
		return "", layout.Layout{}, err
	}

	eng := gen.New(cfg, gen.WithLogger(s.logger), gen.WithObserver(gen.EventFunc(emit)))
	run, err := eng.Start(ctx, bp)
	if err != nil {
		return "", layout.Layout{}, err
	}
	for {
		done, err := run.Step(ctx)
		if err != nil {
			return run.ID(), layout.Layout{}, err
		}
		if done {
			break
		}
	}

	placements, err := tiles.Assign(eng.World(), ts)
	if err != nil {
		return run.ID(), layout.Layout{}, err
	}
	return run.ID(), layout.Build(eng.World(), bp, placements, layout.Meta{
		RunID:   run.ID(),
		Seed:    cfg.Seed,
		TileSet: ts.Name,
	}), nil
}
