package domain

import (
	"strings"
	"sync"
	"time"
)

// VoteskipTally is the external poll collaborator. AFK transitions retract
// the session's vote and retrigger the pass check.
type VoteskipTally interface {
	Unvote(ip string)
	CheckPass()
}

// ChannelOptions holds the channel-configured knobs the session layer needs.
type ChannelOptions struct {
	AFKTimeout time.Duration
}

// Channel is the in-process representation of one joined channel. It exists
// while at least one session is inside; the persistent directory record is a
// separate concern. The canonical name is rebound when the channel is loaded
// from the directory; identity is always the lower-cased name.
type Channel struct {
	mu         sync.RWMutex
	name       string
	uniqueName string
	registered bool
	dead       bool
	opts       ChannelOptions
	users      map[string]*Session

	Voteskip VoteskipTally
}

func newChannel(name string, opts ChannelOptions) *Channel {
	return &Channel{
		name:       name,
		uniqueName: strings.ToLower(name),
		opts:       opts,
		users:      make(map[string]*Session),
	}
}

func (c *Channel) Name() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.name
}

func (c *Channel) UniqueName() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.uniqueName
}

// BindRecord updates the live channel with the capitalization stored in the
// directory and marks it registered.
func (c *Channel) BindRecord(rec ChannelRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.name = rec.Name
	c.uniqueName = strings.ToLower(rec.Name)
	c.registered = true
}

func (c *Channel) Registered() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.registered
}

func (c *Channel) Dead() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.dead
}

func (c *Channel) Options() ChannelOptions {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.opts
}

func (c *Channel) SetOptions(opts ChannelOptions) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.opts = opts
}

func (c *Channel) join(s *Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.users[s.ID] = s
}

func (c *Channel) part(s *Session) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.users, s.ID)
	return len(c.users)
}

func (c *Channel) markDead() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dead = true
}

// Users snapshots the sessions currently in the channel.
func (c *Channel) Users() []*Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	users := make([]*Session, 0, len(c.users))
	for _, s := range c.users {
		users = append(users, s)
	}
	return users
}

// UserByLowerName finds a member by lower-cased login name, if any.
func (c *Channel) UserByLowerName(lower string) (*Session, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, s := range c.users {
		if s.LowerName() == lower {
			return s, true
		}
	}
	return nil, false
}

func (c *Channel) UserCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.users)
}

// SendAll delivers event to every member. Sends are non-blocking; a session
// whose outbound buffer is full misses the event rather than stalling the
// channel.
func (c *Channel) SendAll(event Event) {
	for _, s := range c.Users() {
		s.Send(event)
	}
}

// ChannelManager is the registry of live channels, keyed by lower-cased
// name. A channel is created on first join and torn down (marked dead and
// dropped from the registry) when its last member parts.
type ChannelManager struct {
	mu          sync.RWMutex
	channels    map[string]*Channel
	defaultOpts ChannelOptions
}

func NewChannelManager(defaultOpts ChannelOptions) *ChannelManager {
	return &ChannelManager{
		channels:    make(map[string]*Channel),
		defaultOpts: defaultOpts,
	}
}

// GetOrCreate returns the live channel for name, creating it if absent.
func (m *ChannelManager) GetOrCreate(name string) *Channel {
	key := strings.ToLower(name)
	m.mu.Lock()
	defer m.mu.Unlock()
	if ch, ok := m.channels[key]; ok {
		return ch
	}
	ch := newChannel(name, m.defaultOpts)
	m.channels[key] = ch
	return ch
}

func (m *ChannelManager) Get(name string) (*Channel, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ch, ok := m.channels[strings.ToLower(name)]
	return ch, ok
}

// Join binds s into ch and flags the membership.
func (m *ChannelManager) Join(ch *Channel, s *Session) {
	ch.join(s)
	s.bindChannel(ch)
	s.Flags().Set(FlagInChannel)
}

// Part releases s from its channel. The last part kills the live channel.
func (m *ChannelManager) Part(s *Session) {
	ch := s.Channel()
	if ch == nil {
		return
	}
	remaining := ch.part(s)
	s.bindChannel(nil)
	s.Flags().Clear(FlagInChannel)
	if remaining == 0 {
		ch.markDead()
		m.mu.Lock()
		delete(m.channels, ch.UniqueName())
		m.mu.Unlock()
	}
}

func (m *ChannelManager) ActiveChannels() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.channels))
	for key := range m.channels {
		names = append(names, key)
	}
	return names
}

func (m *ChannelManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.channels)
}
