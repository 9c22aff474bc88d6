package adaptor

import (
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ChrisX930/sync/server/domain"
)

// routerStub echoes a pong event for every ping request and counts
// lifecycle callbacks.
type routerStub struct {
	mu          sync.Mutex
	connects    int
	disconnects int
	requests    []domain.Request
	lastSession *domain.Session
}

func (r *routerStub) Dispatch(s *domain.Session, req domain.Request) {
	r.mu.Lock()
	r.requests = append(r.requests, req)
	r.mu.Unlock()
	if req.Name == "ping" {
		s.Send(domain.NewEvent("pong", req.Data))
	}
	if req.Name == "misbehave" {
		s.Kick("go away")
	}
}

func (r *routerStub) HandleConnect(s *domain.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.connects++
	r.lastSession = s
}

func (r *routerStub) HandleDisconnect(s *domain.Session) {
	r.mu.Lock()
	r.disconnects++
	r.mu.Unlock()
	s.Close()
}

func (r *routerStub) counts() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.connects, r.disconnects
}

func TestAdaptorRoundTrip(t *testing.T) {
	stub := &routerStub{}
	srv := httptest.NewServer(NewAdaptor(stub, clock.New(), zap.NewNop()))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(domain.Request{Name: "ping", Data: "hello"}))

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var event domain.Event
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, "pong", event.Name)
	assert.Equal(t, "hello", event.Data)

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))

	require.Eventually(t, func() bool {
		connects, disconnects := stub.counts()
		return connects == 1 && disconnects == 1
	}, 5*time.Second, 10*time.Millisecond)

	stub.mu.Lock()
	defer stub.mu.Unlock()
	require.Len(t, stub.requests, 1)
	assert.Equal(t, "ping", stub.requests[0].Name)
	assert.NotEmpty(t, stub.lastSession.ID)
	assert.NotEmpty(t, stub.lastSession.IP)
}

// A kick must drop the connection server-side, not just stop sending; the
// read loop may not linger until the client hangs up.
func TestKickClosesConnection(t *testing.T) {
	stub := &routerStub{}
	srv := httptest.NewServer(NewAdaptor(stub, clock.New(), zap.NewNop()))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(domain.Request{Name: "misbehave"}))

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var event domain.Event
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, "kick", event.Name)

	// The server hangs up; the next read fails without the client closing.
	var next domain.Event
	assert.Error(t, conn.ReadJSON(&next))

	require.Eventually(t, func() bool {
		_, disconnects := stub.counts()
		return disconnects == 1
	}, 5*time.Second, 10*time.Millisecond)
}

func TestAdaptorRejectsPlainHTTP(t *testing.T) {
	stub := &routerStub{}
	srv := httptest.NewServer(NewAdaptor(stub, clock.New(), zap.NewNop()))
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, 400, resp.StatusCode)

	connects, _ := stub.counts()
	assert.Zero(t, connects)
}
