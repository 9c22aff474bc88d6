package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ChrisX930/sync/server/adaptor"
	"github.com/ChrisX930/sync/server/domain"
)

type behaviorSpy struct {
	chats    int
	queues   int
	lastData map[string]any
}

func (b *behaviorSpy) HandleChat(s *domain.Session, data map[string]any) {
	b.chats++
	b.lastData = data
}

func (b *behaviorSpy) HandlePM(s *domain.Session, data map[string]any) {}

func (b *behaviorSpy) HandleQueue(s *domain.Session, data map[string]any) {
	b.queues++
	b.lastData = data
}

func (b *behaviorSpy) HandleSetRank(s *domain.Session, data map[string]any) {}
func (b *behaviorSpy) HandleUnban(s *domain.Session, data map[string]any)   {}
func (b *behaviorSpy) HandleVoteskip(s *domain.Session)                     {}
func (b *behaviorSpy) SendBanlist(s *domain.Session)                        {}
func (b *behaviorSpy) SendChannelRanks(s *domain.Session)                   {}

type routerFixture struct {
	*authFixture
	spy    *behaviorSpy
	router adaptor.Router
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()
	af := newAuthFixture(t)
	spy := &behaviorSpy{}
	return &routerFixture{
		authFixture: af,
		spy:         spy,
		router:      NewRouter(af.channels, af.auth, af.manager, spy, zap.NewNop()),
	}
}

func (f *routerFixture) joinedSession(t *testing.T, id, ip, channel string) *domain.Session {
	t.Helper()
	s := f.newSession(id, ip)
	f.router.Dispatch(s, domain.Request{Name: "joinChannel", Data: map[string]any{"name": channel}})
	require.True(t, s.InChannel())
	drainEvents(s)
	return s
}

func TestDispatchUnknownEventIgnored(t *testing.T) {
	f := newRouterFixture(t)
	s := f.newSession("s1", "10.0.0.1")

	f.router.Dispatch(s, domain.Request{Name: "nonsense", Data: "whatever"})
	assert.Empty(t, drainEvents(s))
}

func TestDispatchRequiresChannelMembership(t *testing.T) {
	f := newRouterFixture(t)
	s := f.newSession("s1", "10.0.0.1")

	f.router.Dispatch(s, domain.Request{Name: "chatMsg", Data: map[string]any{"msg": "hi"}})
	assert.Zero(t, f.spy.chats, "channel-scoped requests are dropped outside a channel")
	assert.Empty(t, drainEvents(s), "the drop is silent")
}

func TestDispatchReplacesMalformedPayload(t *testing.T) {
	f := newRouterFixture(t)
	s := f.joinedSession(t, "s1", "10.0.0.1", "testchan")

	f.router.Dispatch(s, domain.Request{Name: "queue", Data: "not-an-object"})
	require.Equal(t, 1, f.spy.queues)
	assert.Equal(t, map[string]any{}, f.spy.lastData)
}

func TestJoinChannelOnlyOnce(t *testing.T) {
	f := newRouterFixture(t)
	s := f.joinedSession(t, "s1", "10.0.0.1", "first")

	f.router.Dispatch(s, domain.Request{Name: "joinChannel", Data: map[string]any{"name": "second"}})
	assert.Equal(t, "first", s.Channel().UniqueName())
	assert.Equal(t, 1, f.manager.Count())
}

func TestJoinChannelInvalidNameKicks(t *testing.T) {
	f := newRouterFixture(t)
	s := f.newSession("s1", "10.0.0.1")

	f.router.Dispatch(s, domain.Request{Name: "joinChannel", Data: map[string]any{"name": "bad name!"}})

	assert.False(t, s.InChannel())
	events := drainEvents(s)
	require.Len(t, events, 2)
	assert.Equal(t, "errorMsg", events[0].Name)
	assert.Equal(t, "kick", events[1].Name)
	assert.False(t, s.Send(domain.NewEvent("chatMsg", nil)), "the session is closed after the kick")
}

func TestJoinChannelBannedIPKicked(t *testing.T) {
	f := newRouterFixture(t)
	f.repo.addUser("owner", "hunter2", 1)
	_, err := f.channels.Register("testchan", "owner")
	require.NoError(t, err)
	require.NoError(t, f.channels.Ban("testchan", "10.0.0.*", "troll", "", "mod"))

	s := f.newSession("s1", "10.0.0.77")
	f.router.Dispatch(s, domain.Request{Name: "joinChannel", Data: map[string]any{"name": "testchan"}})

	assert.False(t, s.InChannel())
	events := drainEvents(s)
	require.Len(t, events, 1)
	assert.Equal(t, "kick", events[0].Name)
}

func TestJoinChannelBannedNameKicked(t *testing.T) {
	f := newRouterFixture(t)
	f.repo.addUser("owner", "hunter2", 1)
	f.repo.addUser("Troll", "hunter2", 1)
	_, err := f.channels.Register("testchan", "owner")
	require.NoError(t, err)
	require.NoError(t, f.channels.Ban("testchan", "*", "troll", "", "mod"))

	s := f.newSession("s1", "10.0.0.1")
	f.auth.Login(s, "troll", "hunter2")
	drainEvents(s)

	f.router.Dispatch(s, domain.Request{Name: "joinChannel", Data: map[string]any{"name": "testchan"}})
	assert.False(t, s.InChannel())
}

func TestJoinRegisteredChannelSendsRank(t *testing.T) {
	f := newRouterFixture(t)
	f.repo.addUser("owner", "hunter2", 1)
	f.repo.addUser("Alice", "hunter2", 1)
	_, err := f.channels.Register("testchan", "owner")
	require.NoError(t, err)
	require.NoError(t, f.channels.SetRank("testchan", "alice", 4))

	s := f.newSession("s1", "10.0.0.1")
	f.auth.Login(s, "alice", "hunter2")
	drainEvents(s)

	f.router.Dispatch(s, domain.Request{Name: "joinChannel", Data: map[string]any{"name": "testchan"}})
	require.True(t, s.InChannel())

	acct := s.Account()
	assert.Equal(t, 4, acct.ChannelRank)
	assert.Equal(t, 4, acct.EffectiveRank)

	events := drainEvents(s)
	require.Len(t, events, 1)
	assert.Equal(t, "rank", events[0].Name)
	assert.Equal(t, 4, events[0].Data)
}

func TestLoginWithEmptyPasswordIsGuest(t *testing.T) {
	f := newRouterFixture(t)
	s := f.newSession("s1", "10.0.0.1")

	f.router.Dispatch(s, domain.Request{Name: "login", Data: map[string]any{"name": "Visitor", "pw": ""}})

	require.True(t, s.Is(domain.FlagLoggedIn))
	assert.True(t, s.Account().Guest)
}

func TestChatWakesSessionFromAFK(t *testing.T) {
	f := newRouterFixture(t)
	s := f.joinedSession(t, "s1", "10.0.0.1", "testchan")
	f.auth.GuestLogin(s, "Visitor")
	drainEvents(s)

	s.SetAFK(true)
	require.True(t, s.Is(domain.FlagAFK))
	drainEvents(s)

	f.router.Dispatch(s, domain.Request{Name: "chatMsg", Data: map[string]any{"msg": "hello"}})
	assert.False(t, s.Is(domain.FlagAFK))
	assert.Equal(t, 1, f.spy.chats)
}

func TestAFKCommandDoesNotWakeSession(t *testing.T) {
	f := newRouterFixture(t)
	s := f.joinedSession(t, "s1", "10.0.0.1", "testchan")
	f.auth.GuestLogin(s, "Visitor")
	drainEvents(s)

	s.SetAFK(true)
	require.True(t, s.Is(domain.FlagAFK))
	drainEvents(s)

	f.router.Dispatch(s, domain.Request{Name: "chatMsg", Data: map[string]any{"msg": "/afk"}})
	assert.True(t, s.Is(domain.FlagAFK))
	assert.Equal(t, 1, f.spy.chats)
}

func TestBorrowRankRequiresSiteAdmin(t *testing.T) {
	f := newRouterFixture(t)
	f.repo.addUser("Alice", "hunter2", 2)

	s := f.joinedSession(t, "s1", "10.0.0.1", "testchan")
	f.auth.Login(s, "alice", "hunter2")
	drainEvents(s)

	f.router.Dispatch(s, domain.Request{Name: "borrow-rank", Data: float64(1)})
	assert.Equal(t, 2, s.Account().EffectiveRank)
	assert.Empty(t, drainEvents(s))
}

func TestBorrowRankLowersEffectiveRank(t *testing.T) {
	f := newRouterFixture(t)
	f.repo.addUser("Admin", "hunter2", domain.RankSiteAdmin)

	s := f.joinedSession(t, "s1", "10.0.0.1", "testchan")
	f.auth.Login(s, "admin", "hunter2")
	drainEvents(s)

	f.router.Dispatch(s, domain.Request{Name: "borrow-rank", Data: float64(3)})

	acct := s.Account()
	assert.Equal(t, 3, acct.EffectiveRank)
	assert.Equal(t, domain.RankSiteAdmin, acct.GlobalRank, "the stored global rank is untouched")

	events := drainEvents(s)
	require.Len(t, events, 2)
	assert.Equal(t, "rank", events[0].Name)
	assert.Equal(t, "setUserRank", events[1].Name)
}

func TestDisconnectReleasesChannel(t *testing.T) {
	f := newRouterFixture(t)
	s := f.joinedSession(t, "s1", "10.0.0.1", "testchan")

	f.router.HandleDisconnect(s)
	assert.False(t, s.InChannel())
	assert.Equal(t, 0, f.manager.Count())
	assert.False(t, s.Send(domain.NewEvent("chatMsg", nil)))
}

func TestHandleConnectMarksReady(t *testing.T) {
	f := newRouterFixture(t)
	s := f.newSession("s1", "10.0.0.1")

	f.router.HandleConnect(s)
	assert.True(t, s.Is(domain.FlagReady))
}
