package domain

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

const sendBuffer = 32

// Session is the server-side state machine for one connection. It owns the
// bound account, the flag set, the outbound event channel the transport
// drains, and the per-session rate limiters. All persistence work happens in
// the usecase layer; the session only tracks connection state.
type Session struct {
	ID string
	IP string

	ChatLimiter  *ActionLimiter
	QueueLimiter *ActionLimiter

	flags *FlagSet
	clk   clock.Clock

	mu            sync.Mutex
	account       *Account
	channel       *Channel
	send          chan Event
	closed        bool
	joinAttempted bool
	awayTimer     *clock.Timer
}

func NewSession(id, ip string, clk clock.Clock) *Session {
	return &Session{
		ID:           id,
		IP:           ip,
		ChatLimiter:  NewActionLimiter(clk, chatBurst, chatCooldown),
		QueueLimiter: NewActionLimiter(clk, queueBurst, queueCooldown),
		flags:        NewFlagSet(),
		clk:          clk,
		account:      NewAnonymousAccount(ip),
		send:         make(chan Event, sendBuffer),
	}
}

func (s *Session) Flags() *FlagSet { return s.flags }

func (s *Session) Is(flag SessionFlag) bool { return s.flags.Has(flag) }

func (s *Session) Account() *Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.account
}

func (s *Session) BindAccount(account *Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.account = account
}

// SetChannelRank rebinds the account with rank as its channel rank; the
// effective rank becomes the higher of rank and the global rank. The bound
// Account value is replaced, never mutated in place, so goroutines holding
// an earlier snapshot keep reading consistent state. Returns the new
// effective rank.
func (s *Session) SetChannelRank(rank int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct := *s.account
	acct.ChannelRank = rank
	acct.EffectiveRank = acct.GlobalRank
	if rank > acct.EffectiveRank {
		acct.EffectiveRank = rank
	}
	s.account = &acct
	return acct.EffectiveRank
}

// BorrowRank pins both the channel and effective rank, letting a site admin
// assume a lower level. Replaces the account like SetChannelRank does.
func (s *Session) BorrowRank(rank int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct := *s.account
	acct.ChannelRank = rank
	acct.EffectiveRank = rank
	s.account = &acct
}

func (s *Session) Name() string {
	return s.Account().Name
}

func (s *Session) LowerName() string {
	return s.Account().LowerName
}

func (s *Session) Channel() *Channel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.channel
}

func (s *Session) bindChannel(ch *Channel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.channel = ch
}

// MarkJoinAttempt consumes the session's single joinChannel attempt. Only
// the first call reports true; later join requests are ignored.
func (s *Session) MarkJoinAttempt() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.joinAttempted {
		return false
	}
	s.joinAttempted = true
	return true
}

// InChannel reports whether the session is bound to a live channel.
func (s *Session) InChannel() bool {
	ch := s.Channel()
	return ch != nil && !ch.Dead()
}

// Send queues event for delivery. It reports false when the session is gone
// or its buffer is full; either way the caller never blocks.
func (s *Session) Send(event Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	select {
	case s.send <- event:
		return true
	default:
		return false
	}
}

// Events is the outbound stream the transport writer drains.
func (s *Session) Events() <-chan Event { return s.send }

// Close shuts the outbound stream. Safe to call more than once.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.send)
}

// Kick notifies the client and shuts the session down.
func (s *Session) Kick(reason string) {
	s.Send(NewKickEvent(reason))
	s.Close()
}

// SetAFK flips the session's away state. It is a no-op outside a channel or
// when the state already matches. Going away retracts the session's voteskip
// vote; coming back re-arms the inactivity timer. Either way the channel's
// voteskip pass condition is re-checked and members are notified.
func (s *Session) SetAFK(afk bool) {
	ch := s.Channel()
	if !s.InChannel() {
		return
	}
	if s.Is(FlagAFK) == afk {
		return
	}

	if afk {
		s.flags.Set(FlagAFK)
		if ch.Voteskip != nil {
			ch.Voteskip.Unvote(s.IP)
		}
	} else {
		s.flags.Clear(FlagAFK)
		s.AutoAFK()
	}

	if ch.Voteskip != nil {
		ch.Voteskip.CheckPass()
	}
	ch.SendAll(NewSetAFKEvent(s.Name(), afk))
}

// AutoAFK (re)arms the inactivity timer using the channel's configured
// timeout. A non-positive timeout disables auto-away.
func (s *Session) AutoAFK() {
	s.stopAwayTimer()
	if !s.InChannel() {
		return
	}
	timeout := s.Channel().Options().AFKTimeout
	if timeout <= 0 {
		return
	}
	s.mu.Lock()
	s.awayTimer = s.clk.AfterFunc(timeout, func() {
		s.SetAFK(true)
	})
	s.mu.Unlock()
}

func (s *Session) stopAwayTimer() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.awayTimer != nil {
		s.awayTimer.Stop()
		s.awayTimer = nil
	}
}

// Teardown runs the disconnect path: the away timer is cancelled
// deterministically. An in-flight login is not cancelled; its completion is
// harmless because the session's outbound stream is already closed.
func (s *Session) Teardown() {
	s.stopAwayTimer()
	s.Close()
}

// Session action limits. The chat limiter also covers PMs.
const (
	chatBurst     = 10
	chatCooldown  = 2 * time.Second
	queueBurst    = 5
	queueCooldown = 10 * time.Second
)
