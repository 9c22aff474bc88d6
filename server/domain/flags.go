package domain

import "sync"

// SessionFlag is one named capability or state bit of a session.
type SessionFlag int

const (
	FlagReady SessionFlag = iota
	FlagLoggingIn
	FlagLoggedIn
	FlagAFK
	FlagMuted
	FlagShadowMuted
	FlagInChannel
)

func (f SessionFlag) String() string {
	switch f {
	case FlagReady:
		return "ready"
	case FlagLoggingIn:
		return "logging_in"
	case FlagLoggedIn:
		return "logged_in"
	case FlagAFK:
		return "afk"
	case FlagMuted:
		return "muted"
	case FlagShadowMuted:
		return "smuted"
	case FlagInChannel:
		return "in_channel"
	default:
		return "unknown"
	}
}

// FlagSet holds a session's flags. Set is a union: flags already present
// stay present. At most one of FlagLoggingIn and FlagLoggedIn is held at any
// instant; login code moves between them through BeginLogin and FinishLogin
// rather than raw Set/Clear.
type FlagSet struct {
	mu      sync.Mutex
	present map[SessionFlag]struct{}
	waiters map[SessionFlag][]chan struct{}
}

func NewFlagSet() *FlagSet {
	return &FlagSet{
		present: make(map[SessionFlag]struct{}),
		waiters: make(map[SessionFlag][]chan struct{}),
	}
}

func (fs *FlagSet) Has(flag SessionFlag) bool {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	_, ok := fs.present[flag]
	return ok
}

// Set adds flag to the set and releases any waiters registered for it.
func (fs *FlagSet) Set(flag SessionFlag) {
	fs.mu.Lock()
	fs.present[flag] = struct{}{}
	pending := fs.waiters[flag]
	delete(fs.waiters, flag)
	fs.mu.Unlock()

	for _, ch := range pending {
		close(ch)
	}
}

func (fs *FlagSet) Clear(flag SessionFlag) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	delete(fs.present, flag)
}

// BeginLogin marks the session as logging in. It reports false, changing
// nothing, if a login is already in flight or completed; a second concurrent
// login attempt is ignored, not queued.
func (fs *FlagSet) BeginLogin() bool {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if _, ok := fs.present[FlagLoggingIn]; ok {
		return false
	}
	if _, ok := fs.present[FlagLoggedIn]; ok {
		return false
	}
	fs.present[FlagLoggingIn] = struct{}{}
	return true
}

// FinishLogin clears FlagLoggingIn and, on success, sets FlagLoggedIn.
// FlagLoggingIn is always gone before any login outcome is observable.
func (fs *FlagSet) FinishLogin(success bool) {
	fs.mu.Lock()
	delete(fs.present, FlagLoggingIn)
	fs.mu.Unlock()
	if success {
		fs.Set(FlagLoggedIn)
	}
}

// Wait returns a channel closed the first time flag becomes set. If the
// flag is already set the channel is closed immediately. The wait is
// satisfied by notification from Set, never by polling.
func (fs *FlagSet) Wait(flag SessionFlag) <-chan struct{} {
	ch := make(chan struct{})
	fs.mu.Lock()
	if _, ok := fs.present[flag]; ok {
		fs.mu.Unlock()
		close(ch)
		return ch
	}
	fs.waiters[flag] = append(fs.waiters[flag], ch)
	fs.mu.Unlock()
	return ch
}
