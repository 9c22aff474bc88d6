package usecase

import (
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/ChrisX930/sync/server/adaptor"
	"github.com/ChrisX930/sync/server/domain"
)

// ChannelBehavior is the channel-behavior collaborator requests are
// forwarded to once they pass the router's gate. Privilege-level
// authorization (rank thresholds) happens behind this interface.
type ChannelBehavior interface {
	HandleChat(s *domain.Session, data map[string]any)
	HandlePM(s *domain.Session, data map[string]any)
	HandleQueue(s *domain.Session, data map[string]any)
	HandleSetRank(s *domain.Session, data map[string]any)
	HandleUnban(s *domain.Session, data map[string]any)
	HandleVoteskip(s *domain.Session)
	SendBanlist(s *domain.Session)
	SendChannelRanks(s *domain.Session)
}

// Router gates inbound realtime requests before forwarding them. The gate
// is purely structural: requests that require channel membership are
// silently dropped for sessions outside a channel, and payloads that fail a
// handler's object-shape expectation are replaced by an empty object rather
// than rejected.
type Router struct {
	channels *ChannelService
	auth     *AuthService
	manager  *domain.ChannelManager
	behavior ChannelBehavior
	log      *zap.Logger
	handlers map[string]handler
}

type handler struct {
	needsChannel bool
	wantsObject  bool
	fn           func(*domain.Session, any)
}

func NewRouter(channels *ChannelService, auth *AuthService, manager *domain.ChannelManager, behavior ChannelBehavior, log *zap.Logger) adaptor.Router {
	r := &Router{
		channels: channels,
		auth:     auth,
		manager:  manager,
		behavior: behavior,
		log:      log,
	}

	object := func(fn func(*domain.Session, map[string]any)) func(*domain.Session, any) {
		return func(s *domain.Session, data any) {
			fn(s, data.(map[string]any))
		}
	}
	bare := func(fn func(*domain.Session)) func(*domain.Session, any) {
		return func(s *domain.Session, _ any) {
			fn(s)
		}
	}

	r.handlers = map[string]handler{
		"login":       {wantsObject: true, fn: object(r.handleLogin)},
		"joinChannel": {wantsObject: true, fn: object(r.handleJoinChannel)},

		"chatMsg":        {needsChannel: true, wantsObject: true, fn: object(r.handleChat)},
		"pm":             {needsChannel: true, wantsObject: true, fn: object(r.behavior.HandlePM)},
		"queue":          {needsChannel: true, wantsObject: true, fn: object(r.behavior.HandleQueue)},
		"setChannelRank": {needsChannel: true, wantsObject: true, fn: object(r.behavior.HandleSetRank)},
		"unban":          {needsChannel: true, wantsObject: true, fn: object(r.behavior.HandleUnban)},

		"voteskip":            {needsChannel: true, fn: bare(r.behavior.HandleVoteskip)},
		"requestBanlist":      {needsChannel: true, fn: bare(r.behavior.SendBanlist)},
		"requestChannelRanks": {needsChannel: true, fn: bare(r.behavior.SendChannelRanks)},

		"borrow-rank": {needsChannel: true, fn: r.handleBorrowRank},
	}
	return r
}

// Dispatch routes one inbound request through the membership and shape
// gates to its handler. Unknown request names are dropped.
func (r *Router) Dispatch(s *domain.Session, req domain.Request) {
	h, ok := r.handlers[req.Name]
	if !ok {
		r.log.Debug("unhandled event", zap.String("event", req.Name), zap.String("session", s.ID))
		return
	}
	if h.needsChannel && !s.InChannel() {
		return
	}
	data := req.Data
	if h.wantsObject {
		if _, isObject := data.(map[string]any); !isObject {
			data = map[string]any{}
		}
	}
	h.fn(s, data)
}

// HandleConnect completes the initial handshake for a fresh session.
func (r *Router) HandleConnect(s *domain.Session) {
	s.Flags().Set(domain.FlagReady)
}

// HandleDisconnect runs the teardown path: the AFK timer is cancelled and
// channel membership released. An in-flight login is left to finish; its
// completion binds into a session whose stream is already closed.
func (r *Router) HandleDisconnect(s *domain.Session) {
	s.Teardown()
	r.manager.Part(s)
}

func (r *Router) handleLogin(s *domain.Session, data map[string]any) {
	name, ok := data["name"].(string)
	if !ok {
		return
	}
	pw, _ := data["pw"].(string)

	if s.Is(domain.FlagLoggingIn) || s.Is(domain.FlagLoggedIn) {
		return
	}

	if pw == "" {
		r.auth.GuestLogin(s, name)
	} else {
		r.auth.Login(s, name, pw)
	}
}

func (r *Router) handleJoinChannel(s *domain.Session, data map[string]any) {
	if !s.MarkJoinAttempt() {
		return
	}
	if s.InChannel() {
		return
	}
	name, ok := data["name"].(string)
	if !ok {
		return
	}
	if !domain.IsValidChannelName(name) {
		s.Send(domain.NewErrorMsgEvent(
			"Invalid channel name. Channel names may consist of 1-30 characters in the set a-z, A-Z, 0-9, -, and _"))
		s.Kick("Invalid channel name")
		return
	}

	ch := r.manager.GetOrCreate(strings.ToLower(name))
	if err := r.channels.Load(ch); err != nil {
		switch {
		case errors.Is(err, ErrNotRegistered):
			// Unregistered channels are joinable; they just have no stores.
		case errors.Is(err, ErrDeadChannel):
			s.Kick("This channel is closed")
			return
		default:
			r.log.Error("channel load failed", zap.String("channel", name), zap.Error(err))
		}
	}

	if ch.Registered() {
		if banned, err := r.channels.IsIPBanned(ch.UniqueName(), s.IP); err == nil && banned {
			s.Kick("You are banned from this channel.")
			return
		}
		if s.Is(domain.FlagLoggedIn) {
			if banned, err := r.channels.IsNameBanned(ch.UniqueName(), s.Name()); err == nil && banned {
				s.Kick("You are banned from this channel.")
				return
			}
		}
	}

	r.manager.Join(ch, s)

	acct := s.Account()
	if s.Is(domain.FlagLoggedIn) && !acct.Guest && ch.Registered() {
		rank, err := r.channels.GetRank(ch.UniqueName(), acct.Name)
		if err != nil {
			r.log.Warn("rank lookup failed on join",
				zap.String("channel", ch.UniqueName()), zap.String("name", acct.Name), zap.Error(err))
		}
		s.Send(domain.NewRankEvent(s.SetChannelRank(rank)))
	}

	s.AutoAFK()
}

func (r *Router) handleChat(s *domain.Session, data map[string]any) {
	msg, ok := data["msg"].(string)
	if !ok {
		return
	}
	// Any chat activity other than the /afk command wakes the session up.
	if !strings.HasPrefix(msg, "/afk") {
		s.SetAFK(false)
		s.AutoAFK()
	}
	r.behavior.HandleChat(s, data)
}

// handleBorrowRank lets a site admin assume a lower channel rank. The
// payload is a bare number, not an object.
func (r *Router) handleBorrowRank(s *domain.Session, data any) {
	f, ok := data.(float64)
	if !ok {
		return
	}
	rank := int(f)

	acct := s.Account()
	if acct.GlobalRank < domain.RankSiteAdmin {
		return
	}
	if rank > acct.GlobalRank {
		return
	}
	if rank == domain.RankSiteAdmin && acct.GlobalRank > domain.RankSiteAdmin {
		rank = acct.GlobalRank
	}

	s.BorrowRank(rank)
	s.Send(domain.NewRankEvent(rank))
	s.Channel().SendAll(domain.NewSetUserRankEvent(acct.Name, rank))
}
