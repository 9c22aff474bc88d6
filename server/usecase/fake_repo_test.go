package usecase

import (
	"fmt"
	"strings"
	"time"

	"github.com/ChrisX930/sync/server/domain"
)

// fakeRepo is the in-memory Repository used across the usecase tests. Error
// injection goes through the fail* fields; store existence is modeled by the
// presence of the per-channel maps.
type fakeRepo struct {
	channels map[string]domain.ChannelRecord
	users    map[string]fakeUser
	ranks    map[string]map[string]int
	bans     map[string][]domain.BanEntry
	library  map[string]map[string]domain.LibraryItem
	nextBan  int64

	failCreateRank    error
	failCreateBan     error
	failCreateLibrary error
	failDropRank      error
	failDropBan       error
	failDropLibrary   error
	failDeleteChannel error
	failGetGlobalRank error
	failGetRank       error
	failUpsertRank    error
}

type fakeUser struct {
	name     string
	password string
	rank     int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		channels: make(map[string]domain.ChannelRecord),
		users:    make(map[string]fakeUser),
		ranks:    make(map[string]map[string]int),
		bans:     make(map[string][]domain.BanEntry),
		library:  make(map[string]map[string]domain.LibraryItem),
	}
}

func (f *fakeRepo) addUser(name, password string, rank int) {
	f.users[strings.ToLower(name)] = fakeUser{name: name, password: password, rank: rank}
}

func (f *fakeRepo) IsChannelTaken(name string) (bool, error) {
	_, ok := f.channels[strings.ToLower(name)]
	return ok, nil
}

func (f *fakeRepo) LookupChannel(name string) (domain.ChannelRecord, error) {
	rec, ok := f.channels[strings.ToLower(name)]
	if !ok {
		return domain.ChannelRecord{}, fmt.Errorf("channel %q: %w", name, ErrNotFound)
	}
	return rec, nil
}

func (f *fakeRepo) SearchChannels(substring string) ([]domain.ChannelRecord, error) {
	var recs []domain.ChannelRecord
	for _, rec := range f.channels {
		if strings.Contains(strings.ToLower(rec.Name), strings.ToLower(substring)) {
			recs = append(recs, rec)
		}
	}
	return recs, nil
}

func (f *fakeRepo) SearchChannelsByOwner(substring string) ([]domain.ChannelRecord, error) {
	var recs []domain.ChannelRecord
	for _, rec := range f.channels {
		if strings.Contains(strings.ToLower(rec.Owner), strings.ToLower(substring)) {
			recs = append(recs, rec)
		}
	}
	return recs, nil
}

func (f *fakeRepo) ListChannelsByOwner(owner string) ([]domain.ChannelRecord, error) {
	var recs []domain.ChannelRecord
	for _, rec := range f.channels {
		if rec.Owner == owner {
			recs = append(recs, rec)
		}
	}
	return recs, nil
}

func (f *fakeRepo) InsertChannel(name, owner string, createdAt time.Time) error {
	f.channels[strings.ToLower(name)] = domain.ChannelRecord{Name: name, Owner: owner, CreatedAt: createdAt}
	return nil
}

func (f *fakeRepo) DeleteChannel(name string) error {
	if f.failDeleteChannel != nil {
		return f.failDeleteChannel
	}
	delete(f.channels, strings.ToLower(name))
	return nil
}

func (f *fakeRepo) CreateRankTable(channel string) error {
	if f.failCreateRank != nil {
		return f.failCreateRank
	}
	f.ranks[channel] = make(map[string]int)
	return nil
}

func (f *fakeRepo) CreateBanTable(channel string) error {
	if f.failCreateBan != nil {
		return f.failCreateBan
	}
	f.bans[channel] = []domain.BanEntry{}
	return nil
}

func (f *fakeRepo) CreateLibraryTable(channel string) error {
	if f.failCreateLibrary != nil {
		return f.failCreateLibrary
	}
	f.library[channel] = make(map[string]domain.LibraryItem)
	return nil
}

func (f *fakeRepo) DropRankTable(channel string) error {
	if f.failDropRank != nil {
		return f.failDropRank
	}
	delete(f.ranks, channel)
	return nil
}

func (f *fakeRepo) DropBanTable(channel string) error {
	if f.failDropBan != nil {
		return f.failDropBan
	}
	delete(f.bans, channel)
	return nil
}

func (f *fakeRepo) DropLibraryTable(channel string) error {
	if f.failDropLibrary != nil {
		return f.failDropLibrary
	}
	delete(f.library, channel)
	return nil
}

func (f *fakeRepo) GetRank(channel, name string) (int, error) {
	if f.failGetRank != nil {
		return domain.RankDefault, f.failGetRank
	}
	rank, ok := f.ranks[channel][name]
	if !ok {
		return domain.RankDefault, nil
	}
	return rank, nil
}

func (f *fakeRepo) GetRanks(channel string, names []string) ([]domain.RankEntry, error) {
	var entries []domain.RankEntry
	for _, n := range names {
		if rank, ok := f.ranks[channel][n]; ok {
			entries = append(entries, domain.RankEntry{Name: n, Rank: rank})
		}
	}
	return entries, nil
}

func (f *fakeRepo) AllRanks(channel string) ([]domain.RankEntry, error) {
	var entries []domain.RankEntry
	for name, rank := range f.ranks[channel] {
		entries = append(entries, domain.RankEntry{Name: name, Rank: rank})
	}
	return entries, nil
}

func (f *fakeRepo) UpsertRank(channel, name string, rank int) error {
	if f.failUpsertRank != nil {
		return f.failUpsertRank
	}
	if f.ranks[channel] == nil {
		return fmt.Errorf("no rank store for %q", channel)
	}
	f.ranks[channel][name] = rank
	return nil
}

func (f *fakeRepo) InsertRankIfAbsent(channel, name string, rank int) error {
	if f.ranks[channel] == nil {
		return fmt.Errorf("no rank store for %q", channel)
	}
	if _, ok := f.ranks[channel][name]; ok {
		return nil
	}
	f.ranks[channel][name] = rank
	return nil
}

func (f *fakeRepo) DeleteRank(channel, name string) error {
	delete(f.ranks[channel], name)
	return nil
}

func (f *fakeRepo) InsertBan(channel, ip, name, reason, bannedBy string) error {
	f.nextBan++
	f.bans[channel] = append(f.bans[channel], domain.BanEntry{
		ID: f.nextBan, IP: ip, Name: name, Reason: reason, BannedBy: bannedBy,
	})
	return nil
}

func (f *fakeRepo) IsIPBanned(channel, ip string) (bool, error) {
	for _, b := range f.bans[channel] {
		if b.IP == ip || b.IP == domain.IPRange(ip) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) IsNameBanned(channel, name string) (bool, error) {
	for _, b := range f.bans[channel] {
		if b.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) ListBans(channel string) ([]domain.BanEntry, error) {
	return f.bans[channel], nil
}

func (f *fakeRepo) DeleteBanByName(channel, name string) error {
	kept := f.bans[channel][:0]
	for _, b := range f.bans[channel] {
		if b.IP == "*" && b.Name == name {
			continue
		}
		kept = append(kept, b)
	}
	f.bans[channel] = kept
	return nil
}

func (f *fakeRepo) DeleteBanByIP(channel, ip string) error {
	kept := f.bans[channel][:0]
	for _, b := range f.bans[channel] {
		if b.IP == ip {
			continue
		}
		kept = append(kept, b)
	}
	f.bans[channel] = kept
	return nil
}

func (f *fakeRepo) DeleteBanByID(channel string, id int64) error {
	kept := f.bans[channel][:0]
	for _, b := range f.bans[channel] {
		if b.ID == id {
			continue
		}
		kept = append(kept, b)
	}
	f.bans[channel] = kept
	return nil
}

func (f *fakeRepo) InsertLibraryItem(channel string, item domain.LibraryItem) error {
	store := f.library[channel]
	if store == nil {
		return fmt.Errorf("no library store for %q", channel)
	}
	if _, ok := store[item.ID]; ok {
		return nil
	}
	store[item.ID] = item
	return nil
}

func (f *fakeRepo) GetLibraryItem(channel, id string) (domain.LibraryItem, error) {
	item, ok := f.library[channel][id]
	if !ok {
		return domain.LibraryItem{}, fmt.Errorf("library item %q: %w", id, ErrNotFound)
	}
	return item, nil
}

func (f *fakeRepo) SearchLibrary(channel, title string) ([]domain.LibraryItem, error) {
	var items []domain.LibraryItem
	for _, item := range f.library[channel] {
		if strings.Contains(strings.ToLower(item.Title), strings.ToLower(title)) {
			items = append(items, item)
		}
	}
	return items, nil
}

func (f *fakeRepo) DeleteLibraryItem(channel, id string) error {
	delete(f.library[channel], id)
	return nil
}

func (f *fakeRepo) GetGlobalRank(name string) (int, error) {
	if f.failGetGlobalRank != nil {
		return 0, f.failGetGlobalRank
	}
	u, ok := f.users[strings.ToLower(name)]
	if !ok {
		return 0, fmt.Errorf("user %q: %w", name, ErrNotFound)
	}
	return u.rank, nil
}

func (f *fakeRepo) VerifyLogin(name, password string) (string, int, error) {
	u, ok := f.users[strings.ToLower(name)]
	if !ok || u.password != password {
		return "", 0, ErrInvalidCredentials
	}
	return u.name, u.rank, nil
}

func (f *fakeRepo) IsUsernameTaken(name string) (bool, error) {
	_, ok := f.users[strings.ToLower(name)]
	return ok, nil
}

func (f *fakeRepo) CreateUser(name, password string, globalRank int) error {
	if _, ok := f.users[strings.ToLower(name)]; ok {
		return fmt.Errorf("user %q already exists", name)
	}
	f.users[strings.ToLower(name)] = fakeUser{name: name, password: password, rank: globalRank}
	return nil
}
