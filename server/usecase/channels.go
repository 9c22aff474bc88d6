package usecase

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/benbjohnson/clock"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/ChrisX930/sync/server/domain"
)

// ChannelService owns the channel directory, the per-channel rank, ban and
// library stores, and the provisioning saga that ties them together.
type ChannelService struct {
	repo    Repository
	clk     clock.Clock
	log     *zap.Logger
	dumpDir string
}

func NewChannelService(repo Repository, clk clock.Clock, log *zap.Logger, dumpDir string) *ChannelService {
	return &ChannelService{
		repo:    repo,
		clk:     clk,
		log:     log,
		dumpDir: dumpDir,
	}
}

// IsTaken reports whether name is registered, case-insensitively.
func (s *ChannelService) IsTaken(name string) (bool, error) {
	if !domain.IsValidChannelName(name) {
		return false, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	taken, err := s.repo.IsChannelTaken(name)
	if err != nil {
		return false, fmt.Errorf("checking channel name: %w", err)
	}
	return taken, nil
}

func (s *ChannelService) Lookup(name string) (domain.ChannelRecord, error) {
	if !domain.IsValidChannelName(name) {
		return domain.ChannelRecord{}, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	rec, err := s.repo.LookupChannel(name)
	if err != nil {
		return domain.ChannelRecord{}, fmt.Errorf("looking up channel %s: %w", name, err)
	}
	return rec, nil
}

func (s *ChannelService) Search(substring string) ([]domain.ChannelRecord, error) {
	return s.repo.SearchChannels(substring)
}

func (s *ChannelService) SearchByOwner(substring string) ([]domain.ChannelRecord, error) {
	return s.repo.SearchChannelsByOwner(substring)
}

func (s *ChannelService) ListByOwner(owner string) ([]domain.ChannelRecord, error) {
	return s.repo.ListChannelsByOwner(owner)
}

// Load re-resolves ch against the directory and rebinds the stored
// capitalization. A missing record is ErrNotRegistered; a record for a
// channel already torn down in memory is ErrDeadChannel.
func (s *ChannelService) Load(ch *domain.Channel) error {
	name := ch.UniqueName()
	if !domain.IsValidChannelName(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	rec, err := s.repo.LookupChannel(name)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotRegistered
		}
		return fmt.Errorf("loading channel %s: %w", name, err)
	}
	if ch.Dead() {
		return ErrDeadChannel
	}
	ch.BindRecord(rec)
	return nil
}

// Register provisions a new channel: the directory record, then the rank,
// ban and library stores, then the owner's initial rank. The steps cannot
// share a transaction (store creation is DDL), so a failure after the
// directory insert triggers compensating deletes. Compensations are
// best-effort: the rank and library stores are dropped, the ban store is
// not, and compensation failures are logged, never surfaced.
func (s *ChannelService) Register(name, owner string) (domain.ChannelRecord, error) {
	if !domain.IsValidChannelName(name) {
		return domain.ChannelRecord{}, fmt.Errorf("%w: channel names may consist of 1-30 characters a-z, A-Z, 0-9, -, and _", ErrInvalidName)
	}
	if !domain.IsValidUserName(owner) {
		return domain.ChannelRecord{}, fmt.Errorf("%w: owner %q", ErrInvalidName, owner)
	}

	taken, err := s.repo.IsChannelTaken(name)
	if err != nil {
		return domain.ChannelRecord{}, fmt.Errorf("checking channel name: %w", err)
	}
	if taken {
		return domain.ChannelRecord{}, fmt.Errorf("%w: %s", ErrChannelTaken, name)
	}

	if err := s.repo.InsertChannel(name, owner, s.clk.Now()); err != nil {
		return domain.ChannelRecord{}, fmt.Errorf("inserting directory record: %w", err)
	}

	if err := s.initStores(name, owner); err != nil {
		if derr := s.repo.DeleteChannel(name); derr != nil {
			s.log.Error("compensating directory delete failed",
				zap.String("channel", name), zap.Error(derr))
		}
		return domain.ChannelRecord{}, err
	}

	return domain.ChannelRecord{Name: name}, nil
}

func (s *ChannelService) initStores(name, owner string) error {
	type storeStep struct {
		step   string
		create func(string) error
		drop   func(string) error // nil: never compensated
	}
	steps := []storeStep{
		{"create rank store", s.repo.CreateRankTable, s.repo.DropRankTable},
		{"create ban store", s.repo.CreateBanTable, nil},
		{"create library store", s.repo.CreateLibraryTable, s.repo.DropLibraryTable},
	}

	compensate := func(done []storeStep) {
		for _, st := range done {
			if st.drop == nil {
				continue
			}
			if err := st.drop(name); err != nil {
				s.log.Error("compensating store delete failed",
					zap.String("channel", name), zap.String("step", st.step), zap.Error(err))
			}
		}
	}

	var done []storeStep
	for _, st := range steps {
		if err := st.create(name); err != nil {
			compensate(done)
			return &ProvisionError{Step: st.step, Err: err}
		}
		done = append(done, st)
	}

	globalRank, err := s.repo.GetGlobalRank(owner)
	if err != nil {
		compensate(done)
		return &ProvisionError{Step: "resolve owner rank", Err: err}
	}
	rank := globalRank
	if rank < domain.RankModerator {
		rank = domain.RankModerator
	}
	if err := s.SetRank(name, owner, rank); err != nil {
		compensate(done)
		return &ProvisionError{Step: "set owner rank", Err: err}
	}
	return nil
}

// Drop unregisters a channel. Every deletion step runs even when earlier
// ones fail; their errors are aggregated and the returned flag is true only
// when all of them succeeded. The persisted channel dump, if any, is removed
// best-effort with failures logged only.
func (s *ChannelService) Drop(name string) (bool, error) {
	if !domain.IsValidChannelName(name) {
		return false, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	var err error
	err = multierr.Append(err, s.repo.DropRankTable(name))
	err = multierr.Append(err, s.repo.DropBanTable(name))
	err = multierr.Append(err, s.repo.DropLibraryTable(name))
	err = multierr.Append(err, s.repo.DeleteChannel(name))

	if s.dumpDir != "" {
		if rmErr := os.Remove(filepath.Join(s.dumpDir, name)); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			s.log.Error("deleting channel dump failed",
				zap.String("channel", name), zap.Error(rmErr))
		}
	}

	return err == nil, err
}

// GetRank looks up a user's rank in a channel. Missing entries and lookup
// failures both resolve to domain.RankDefault so authorization callers are
// never blocked by a store error; the error is still returned for logging.
func (s *ChannelService) GetRank(channel, name string) (int, error) {
	if !domain.IsValidChannelName(channel) {
		return domain.RankDefault, fmt.Errorf("%w: %q", ErrInvalidName, channel)
	}
	rank, err := s.repo.GetRank(channel, strings.ToLower(name))
	if err != nil {
		return domain.RankDefault, fmt.Errorf("looking up rank: %w", err)
	}
	return rank, nil
}

// GetRanks is the batched lookup. Unlike GetRank it returns only entries
// that exist, with no default substitution for missing names.
func (s *ChannelService) GetRanks(channel string, names []string) ([]domain.RankEntry, error) {
	if !domain.IsValidChannelName(channel) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, channel)
	}
	lowered := make([]string, len(names))
	for i, n := range names {
		lowered[i] = strings.ToLower(n)
	}
	return s.repo.GetRanks(channel, lowered)
}

func (s *ChannelService) AllRanks(channel string) ([]domain.RankEntry, error) {
	if !domain.IsValidChannelName(channel) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, channel)
	}
	return s.repo.AllRanks(channel)
}

// SetRank stores a rank override. Ranks below 2 are the implicit default,
// so they delete the entry instead of storing it.
func (s *ChannelService) SetRank(channel, name string, rank int) error {
	if rank < 2 {
		return s.DeleteRank(channel, name)
	}
	if !domain.IsValidChannelName(channel) {
		return fmt.Errorf("%w: %q", ErrInvalidName, channel)
	}
	return s.repo.UpsertRank(channel, strings.ToLower(name), rank)
}

// NewRank inserts a rank entry only if none exists; an existing entry is
// never overwritten.
func (s *ChannelService) NewRank(channel, name string, rank int) error {
	if !domain.IsValidChannelName(channel) {
		return fmt.Errorf("%w: %q", ErrInvalidName, channel)
	}
	return s.repo.InsertRankIfAbsent(channel, strings.ToLower(name), rank)
}

func (s *ChannelService) DeleteRank(channel, name string) error {
	if !domain.IsValidChannelName(channel) {
		return fmt.Errorf("%w: %q", ErrInvalidName, channel)
	}
	return s.repo.DeleteRank(channel, strings.ToLower(name))
}

// Ban inserts a ban row unconditionally; repeat bans stack rather than
// conflict.
func (s *ChannelService) Ban(channel, ip, name, reason, bannedBy string) error {
	if !domain.IsValidChannelName(channel) {
		return fmt.Errorf("%w: %q", ErrInvalidName, channel)
	}
	return s.repo.InsertBan(channel, ip, strings.ToLower(name), reason, bannedBy)
}

// IsIPBanned matches either the exact address or its /24 wildcard form.
func (s *ChannelService) IsIPBanned(channel, ip string) (bool, error) {
	if !domain.IsValidChannelName(channel) {
		return false, fmt.Errorf("%w: %q", ErrInvalidName, channel)
	}
	return s.repo.IsIPBanned(channel, ip)
}

func (s *ChannelService) IsNameBanned(channel, name string) (bool, error) {
	if !domain.IsValidChannelName(channel) {
		return false, fmt.Errorf("%w: %q", ErrInvalidName, channel)
	}
	return s.repo.IsNameBanned(channel, strings.ToLower(name))
}

func (s *ChannelService) Banlist(channel string) ([]domain.BanEntry, error) {
	if !domain.IsValidChannelName(channel) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, channel)
	}
	return s.repo.ListBans(channel)
}

func (s *ChannelService) UnbanName(channel, name string) error {
	if !domain.IsValidChannelName(channel) {
		return fmt.Errorf("%w: %q", ErrInvalidName, channel)
	}
	return s.repo.DeleteBanByName(channel, strings.ToLower(name))
}

func (s *ChannelService) UnbanIP(channel, ip string) error {
	if !domain.IsValidChannelName(channel) {
		return fmt.Errorf("%w: %q", ErrInvalidName, channel)
	}
	return s.repo.DeleteBanByIP(channel, ip)
}

func (s *ChannelService) UnbanID(channel string, id int64) error {
	if !domain.IsValidChannelName(channel) {
		return fmt.Errorf("%w: %q", ErrInvalidName, channel)
	}
	return s.repo.DeleteBanByID(channel, id)
}

// AddToLibrary caches a media item; inserting an id that already exists is
// a silent no-op.
func (s *ChannelService) AddToLibrary(channel string, item domain.LibraryItem) error {
	if !domain.IsValidChannelName(channel) {
		return fmt.Errorf("%w: %q", ErrInvalidName, channel)
	}
	return s.repo.InsertLibraryItem(channel, item)
}

func (s *ChannelService) GetLibraryItem(channel, id string) (domain.LibraryItem, error) {
	if !domain.IsValidChannelName(channel) {
		return domain.LibraryItem{}, fmt.Errorf("%w: %q", ErrInvalidName, channel)
	}
	return s.repo.GetLibraryItem(channel, id)
}

func (s *ChannelService) SearchLibrary(channel, title string) ([]domain.LibraryItem, error) {
	if !domain.IsValidChannelName(channel) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, channel)
	}
	return s.repo.SearchLibrary(channel, title)
}

func (s *ChannelService) RemoveFromLibrary(channel, id string) error {
	if !domain.IsValidChannelName(channel) {
		return fmt.Errorf("%w: %q", ErrInvalidName, channel)
	}
	return s.repo.DeleteLibraryItem(channel, id)
}
