package usecase

import (
	"time"

	"github.com/ChrisX930/sync/server/domain"
)

// Repository is the persistence backend. The sqlite implementation lives in
// server/repository; tests substitute an in-memory fake.
type Repository interface {
	// Channel directory
	IsChannelTaken(name string) (bool, error)
	LookupChannel(name string) (domain.ChannelRecord, error)
	SearchChannels(substring string) ([]domain.ChannelRecord, error)
	SearchChannelsByOwner(substring string) ([]domain.ChannelRecord, error)
	ListChannelsByOwner(owner string) ([]domain.ChannelRecord, error)
	InsertChannel(name, owner string, createdAt time.Time) error
	DeleteChannel(name string) error

	// Per-channel auxiliary stores. Creation and teardown are DDL and
	// cannot share a transaction with directory writes.
	CreateRankTable(channel string) error
	CreateBanTable(channel string) error
	CreateLibraryTable(channel string) error
	DropRankTable(channel string) error
	DropBanTable(channel string) error
	DropLibraryTable(channel string) error

	// Ranks
	GetRank(channel, name string) (int, error)
	GetRanks(channel string, names []string) ([]domain.RankEntry, error)
	AllRanks(channel string) ([]domain.RankEntry, error)
	UpsertRank(channel, name string, rank int) error
	InsertRankIfAbsent(channel, name string, rank int) error
	DeleteRank(channel, name string) error

	// Bans
	InsertBan(channel, ip, name, reason, bannedBy string) error
	IsIPBanned(channel, ip string) (bool, error)
	IsNameBanned(channel, name string) (bool, error)
	ListBans(channel string) ([]domain.BanEntry, error)
	DeleteBanByName(channel, name string) error
	DeleteBanByIP(channel, ip string) error
	DeleteBanByID(channel string, id int64) error

	// Library
	InsertLibraryItem(channel string, item domain.LibraryItem) error
	GetLibraryItem(channel, id string) (domain.LibraryItem, error)
	SearchLibrary(channel, title string) ([]domain.LibraryItem, error)
	DeleteLibraryItem(channel, id string) error

	// Users
	GetGlobalRank(name string) (int, error)
	VerifyLogin(name, password string) (string, int, error)
	IsUsernameTaken(name string) (bool, error)
	CreateUser(name, password string, globalRank int) error
}
