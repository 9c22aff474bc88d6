package adaptor

import (
	"net"
	"net/http"

	"github.com/benbjohnson/clock"
	"github.com/gorilla/websocket"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/ChrisX930/sync/server/domain"
)

// Router is the inbound side of the realtime surface: the adaptor decodes
// frames into domain requests and hands them over, and reports lifecycle
// transitions.
type Router interface {
	Dispatch(s *domain.Session, req domain.Request)
	HandleConnect(s *domain.Session)
	HandleDisconnect(s *domain.Session)
}

// Adaptor bridges websocket connections to sessions. Each connection gets a
// session with a buffered outbound event channel; a writer goroutine drains
// it while the handler goroutine runs the read loop.
type Adaptor struct {
	router   Router
	clk      clock.Clock
	log      *zap.Logger
	upgrader websocket.Upgrader
}

func NewAdaptor(router Router, clk clock.Clock, log *zap.Logger) *Adaptor {
	return &Adaptor{
		router: router,
		clk:    clk,
		log:    log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}
}

func (a *Adaptor) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := a.upgrader.Upgrade(w, r, nil)
	if err != nil {
		a.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	sessionID := ulid.Make().String()
	s := domain.NewSession(sessionID, remoteIP(r), a.clk)
	a.log.Info("client connected",
		zap.String("session", sessionID), zap.String("ip", s.IP))

	writeDone := make(chan struct{})
	go func() {
		defer close(writeDone)
		for event := range s.Events() {
			if err := conn.WriteJSON(event); err != nil {
				a.log.Debug("write failed",
					zap.String("session", sessionID), zap.Error(err))
				return
			}
		}
		// The session closed its stream (kick or teardown). Drop the
		// connection so the read loop unblocks instead of waiting for
		// the client to hang up.
		conn.Close()
	}()

	a.router.HandleConnect(s)

	for {
		var req domain.Request
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				a.log.Debug("client disconnected with error",
					zap.String("session", sessionID), zap.Error(err))
			} else {
				a.log.Info("client disconnected",
					zap.String("session", sessionID))
			}
			break
		}
		a.router.Dispatch(s, req)
	}

	a.router.HandleDisconnect(s)
	<-writeDone
	conn.Close()
}

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
