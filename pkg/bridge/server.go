package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/go-logr/logr"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"

	"go.minekube.com/scriptsdk/pkg/bridge/config"
	"go.minekube.com/scriptsdk/pkg/sdk"
	"go.minekube.com/scriptsdk/pkg/util/errs"
)

// readLimit is the max size of a request frame in bytes.
const readLimit = 1 << 20

// NewServer returns a new Server exposing h.
func NewServer(cfg config.Config, h *Handler) *Server {
	return &Server{
		cfg: cfg,
		h:   h,
	}
}

// Server serves a Handler over websocket connections.
// Every request frame is handled in its own goroutine and
// answered with a response frame carrying the request id.
type Server struct {
	cfg config.Config
	h   *Handler

	listening atomic.Bool
	sessions  atomic.Int64
}

// Listening reports whether the server accepts connections.
func (s *Server) Listening() bool { return s.listening.Load() }

// Sessions returns the number of connected sessions.
func (s *Server) Sessions() int64 { return s.sessions.Load() }

// Start listens on the configured bind address and serves
// until ctx is canceled.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Bind)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves connections accepted by ln until ctx is canceled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	log := logr.FromContextOrDiscard(ctx)
	log.Info("starting bridge", "bind", ln.Addr().String(), "path", s.cfg.Path)

	mux := http.NewServeMux()
	mux.Handle(s.cfg.Path, s)

	hs := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: time.Second * 5,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		<-ctx.Done()
		s.listening.Store(false)
		stopCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
		defer cancel()
		return hs.Shutdown(stopCtx)
	})
	eg.Go(func() error {
		s.listening.Store(true)
		return ignoreClosed(hs.Serve(ln))
	})

	return eg.Wait()
}

func ignoreClosed(err error) error {
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// ServeHTTP upgrades the request to a websocket session.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := logr.FromContextOrDiscard(r.Context()).WithValues("remote", r.RemoteAddr)
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.V(1).Info("websocket handshake failed", "error", err.Error())
		return
	}
	conn.SetReadLimit(readLimit)

	s.sessions.Inc()
	defer s.sessions.Dec()
	log.V(1).Info("session opened")

	err = s.serveConn(logr.NewContext(r.Context(), log), conn)
	if errs.IsConnClosedErr(err) {
		log.V(1).Info("session closed")
		_ = conn.Close(websocket.StatusNormalClosure, "")
		return
	}
	log.Error(err, "session failed")
	_ = conn.Close(websocket.StatusInternalError, "")
}

// serveConn reads request frames until the connection closes.
// It waits for pending requests before returning.
func (s *Server) serveConn(ctx context.Context, conn *websocket.Conn) error {
	log := logr.FromContextOrDiscard(ctx)
	var wg sync.WaitGroup
	defer wg.Wait()
	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			return err
		}
		if typ != websocket.MessageText {
			log.V(1).Info("dropping non-text frame", "type", typ.String())
			continue
		}
		var req sdk.Request
		if err = json.Unmarshal(data, &req); err != nil || req.ID == "" {
			if err == nil {
				err = errs.NewSilentErr("request without id")
			}
			log.V(1).Info("dropping malformed request frame", "error", err.Error())
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			res := s.h.Handle(ctx, req)
			if err := wsjson.Write(ctx, conn, res); err != nil && !errs.IsConnClosedErr(err) {
				log.Error(err, "error writing response", "id", req.ID, "action", req.Action)
			}
		}()
	}
}
