package domain

import "time"

// Rank levels. A user with no rank row in a channel is RankDefault; guests
// are RankGuest. RankModerator is the floor given to a channel's owner at
// registration time. RankSiteAdmin is the global-admin level.
const (
	RankGuest     = 0
	RankDefault   = 1
	RankModerator = 5
	RankSiteAdmin = 255
)

// ChannelRecord is a row in the channel directory. Name carries the
// capitalization used at registration; identity is the lower-cased name.
type ChannelRecord struct {
	Name      string
	Owner     string
	CreatedAt time.Time
}

// RankEntry is a sparse rank override for one user in one channel. Ranks
// below 2 are never stored; their absence implies RankDefault.
type RankEntry struct {
	Name string
	Rank int
}

// BanEntry is one row in a channel's ban list. IP may be a full address, a
// /24 range form with the last octet replaced by "*", or "*" for name-only
// bans.
type BanEntry struct {
	ID       int64
	IP       string
	Name     string
	Reason   string
	BannedBy string
}

// LibraryItem is one cached media entry in a channel's library.
type LibraryItem struct {
	ID      string
	Title   string
	Seconds int
	Type    string
}

func NewLibraryItem(id, title string, seconds int, mediaType string) LibraryItem {
	return LibraryItem{
		ID:      id,
		Title:   title,
		Seconds: seconds,
		Type:    mediaType,
	}
}
