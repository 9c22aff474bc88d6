package domain

import "strings"

// Account is the identity bound to a session by a login. A bound Account is
// never mutated: rank changes go through the session, which rebinds a fresh
// copy. EffectiveRank is resolved when the account is bound and may later be
// lowered by borrow-rank.
type Account struct {
	Name          string
	LowerName     string
	GlobalRank    int
	ChannelRank   int
	EffectiveRank int
	IP            string
	Guest         bool
}

// NewAnonymousAccount is the account a session holds before any login.
func NewAnonymousAccount(ip string) *Account {
	return &Account{
		Name:          "",
		LowerName:     "",
		GlobalRank:    -1,
		EffectiveRank: -1,
		IP:            ip,
	}
}

// NewGuestAccount binds a display name with no backing user row.
func NewGuestAccount(name, ip string) *Account {
	return &Account{
		Name:          name,
		LowerName:     strings.ToLower(name),
		GlobalRank:    RankGuest,
		ChannelRank:   RankGuest,
		EffectiveRank: RankGuest,
		IP:            ip,
		Guest:         true,
	}
}

// NewAccount resolves a registered user's account. When the account is
// bound inside a channel, channelRank is that channel's stored rank and the
// effective rank is the higher of the two.
func NewAccount(name string, globalRank, channelRank int, ip string) *Account {
	effective := globalRank
	if channelRank > effective {
		effective = channelRank
	}
	return &Account{
		Name:          name,
		LowerName:     strings.ToLower(name),
		GlobalRank:    globalRank,
		ChannelRank:   channelRank,
		EffectiveRank: effective,
		IP:            ip,
	}
}
