package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/ChrisX930/sync/server/domain"
	"github.com/ChrisX930/sync/server/usecase"
)

// Per-channel table names are interpolated into SQL, so every entry point
// re-checks the channel name even though the usecase layer validates first.
func guardChannel(channel string) error {
	if !domain.IsValidChannelName(channel) {
		return fmt.Errorf("%w: channel %q", usecase.ErrInvalidName, channel)
	}
	return nil
}

func rankTable(channel string) string    { return "chan_" + channel + "_ranks" }
func banTable(channel string) string     { return "chan_" + channel + "_bans" }
func libraryTable(channel string) string { return "chan_" + channel + "_library" }

func (r *Repository) CreateRankTable(channel string) error {
	if err := guardChannel(channel); err != nil {
		return err
	}
	ddl := fmt.Sprintf("CREATE TABLE `%s` (name TEXT NOT NULL PRIMARY KEY, rank INTEGER NOT NULL)",
		rankTable(channel))
	if _, err := r.db.Exec(ddl); err != nil {
		return fmt.Errorf("failed to create rank table for %q: %w", channel, err)
	}
	return nil
}

func (r *Repository) CreateBanTable(channel string) error {
	if err := guardChannel(channel); err != nil {
		return err
	}
	ddl := fmt.Sprintf("CREATE TABLE `%s` (id INTEGER PRIMARY KEY AUTOINCREMENT, ip TEXT NOT NULL, name TEXT NOT NULL, reason TEXT NOT NULL DEFAULT '', bannedby TEXT NOT NULL DEFAULT '')",
		banTable(channel))
	if _, err := r.db.Exec(ddl); err != nil {
		return fmt.Errorf("failed to create ban table for %q: %w", channel, err)
	}
	return nil
}

func (r *Repository) CreateLibraryTable(channel string) error {
	if err := guardChannel(channel); err != nil {
		return err
	}
	ddl := fmt.Sprintf("CREATE TABLE `%s` (id TEXT NOT NULL PRIMARY KEY, title TEXT NOT NULL, seconds INTEGER NOT NULL, type TEXT NOT NULL)",
		libraryTable(channel))
	if _, err := r.db.Exec(ddl); err != nil {
		return fmt.Errorf("failed to create library table for %q: %w", channel, err)
	}
	return nil
}

func (r *Repository) dropTable(channel, table string) error {
	if err := guardChannel(channel); err != nil {
		return err
	}
	if _, err := r.db.Exec(fmt.Sprintf("DROP TABLE `%s`", table)); err != nil {
		return fmt.Errorf("failed to drop table %s: %w", table, err)
	}
	return nil
}

func (r *Repository) DropRankTable(channel string) error {
	return r.dropTable(channel, rankTable(channel))
}

func (r *Repository) DropBanTable(channel string) error {
	return r.dropTable(channel, banTable(channel))
}

func (r *Repository) DropLibraryTable(channel string) error {
	return r.dropTable(channel, libraryTable(channel))
}

// GetRank resolves a user's rank override. Missing entries resolve to the
// default rank; so do lookup failures, alongside the error, keeping the
// value usable for fail-open authorization.
func (r *Repository) GetRank(channel, name string) (int, error) {
	if err := guardChannel(channel); err != nil {
		return domain.RankDefault, err
	}
	var rank int
	err := r.db.QueryRow(
		fmt.Sprintf("SELECT rank FROM `%s` WHERE name = ?", rankTable(channel)), name).Scan(&rank)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.RankDefault, nil
		}
		return domain.RankDefault, fmt.Errorf("failed to query rank in %q: %w", channel, err)
	}
	return rank, nil
}

// GetRanks returns only the entries that exist; missing names get no
// default substitution.
func (r *Repository) GetRanks(channel string, names []string) ([]domain.RankEntry, error) {
	if err := guardChannel(channel); err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(names)), ",")
	args := make([]any, len(names))
	for i, n := range names {
		args[i] = n
	}
	query := fmt.Sprintf("SELECT name, rank FROM `%s` WHERE name IN (%s)", rankTable(channel), placeholders)
	return r.queryRanks(query, args...)
}

func (r *Repository) AllRanks(channel string) ([]domain.RankEntry, error) {
	if err := guardChannel(channel); err != nil {
		return nil, err
	}
	return r.queryRanks(fmt.Sprintf("SELECT name, rank FROM `%s`", rankTable(channel)))
}

func (r *Repository) queryRanks(query string, args ...any) ([]domain.RankEntry, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query ranks: %w", err)
	}
	defer rows.Close()

	var entries []domain.RankEntry
	for rows.Next() {
		var e domain.RankEntry
		if err := rows.Scan(&e.Name, &e.Rank); err != nil {
			return nil, fmt.Errorf("failed to scan rank row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over ranks: %w", err)
	}
	return entries, nil
}

func (r *Repository) UpsertRank(channel, name string, rank int) error {
	if err := guardChannel(channel); err != nil {
		return err
	}
	query := fmt.Sprintf(
		"INSERT INTO `%s` (name, rank) VALUES (?, ?) ON CONFLICT(name) DO UPDATE SET rank = excluded.rank",
		rankTable(channel))
	if _, err := r.db.Exec(query, name, rank); err != nil {
		return fmt.Errorf("failed to upsert rank in %q: %w", channel, err)
	}
	return nil
}

func (r *Repository) InsertRankIfAbsent(channel, name string, rank int) error {
	if err := guardChannel(channel); err != nil {
		return err
	}
	query := fmt.Sprintf(
		"INSERT INTO `%s` (name, rank) VALUES (?, ?) ON CONFLICT(name) DO NOTHING",
		rankTable(channel))
	if _, err := r.db.Exec(query, name, rank); err != nil {
		return fmt.Errorf("failed to insert rank in %q: %w", channel, err)
	}
	return nil
}

func (r *Repository) DeleteRank(channel, name string) error {
	if err := guardChannel(channel); err != nil {
		return err
	}
	query := fmt.Sprintf("DELETE FROM `%s` WHERE name = ?", rankTable(channel))
	if _, err := r.db.Exec(query, name); err != nil {
		return fmt.Errorf("failed to delete rank in %q: %w", channel, err)
	}
	return nil
}

// InsertBan appends a ban row unconditionally; duplicates are allowed.
func (r *Repository) InsertBan(channel, ip, name, reason, bannedBy string) error {
	if err := guardChannel(channel); err != nil {
		return err
	}
	query := fmt.Sprintf("INSERT INTO `%s` (ip, name, reason, bannedby) VALUES (?, ?, ?, ?)",
		banTable(channel))
	if _, err := r.db.Exec(query, ip, name, reason, bannedBy); err != nil {
		return fmt.Errorf("failed to insert ban in %q: %w", channel, err)
	}
	return nil
}

// IsIPBanned matches the exact address or its /24 wildcard form.
func (r *Repository) IsIPBanned(channel, ip string) (bool, error) {
	if err := guardChannel(channel); err != nil {
		return false, err
	}
	var count int
	query := fmt.Sprintf("SELECT COUNT(*) FROM `%s` WHERE ip = ? OR ip = ?", banTable(channel))
	if err := r.db.QueryRow(query, ip, domain.IPRange(ip)).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to query IP bans in %q: %w", channel, err)
	}
	return count > 0, nil
}

func (r *Repository) IsNameBanned(channel, name string) (bool, error) {
	if err := guardChannel(channel); err != nil {
		return false, err
	}
	var count int
	query := fmt.Sprintf("SELECT COUNT(*) FROM `%s` WHERE name = ?", banTable(channel))
	if err := r.db.QueryRow(query, name).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to query name bans in %q: %w", channel, err)
	}
	return count > 0, nil
}

func (r *Repository) ListBans(channel string) ([]domain.BanEntry, error) {
	if err := guardChannel(channel); err != nil {
		return nil, err
	}
	query := fmt.Sprintf("SELECT id, ip, name, reason, bannedby FROM `%s`", banTable(channel))
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query bans in %q: %w", channel, err)
	}
	defer rows.Close()

	var bans []domain.BanEntry
	for rows.Next() {
		var b domain.BanEntry
		if err := rows.Scan(&b.ID, &b.IP, &b.Name, &b.Reason, &b.BannedBy); err != nil {
			return nil, fmt.Errorf("failed to scan ban row: %w", err)
		}
		bans = append(bans, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over bans: %w", err)
	}
	return bans, nil
}

// DeleteBanByName removes name-only bans; rows carrying a real address are
// left for DeleteBanByIP.
func (r *Repository) DeleteBanByName(channel, name string) error {
	if err := guardChannel(channel); err != nil {
		return err
	}
	query := fmt.Sprintf("DELETE FROM `%s` WHERE ip = '*' AND name = ?", banTable(channel))
	if _, err := r.db.Exec(query, name); err != nil {
		return fmt.Errorf("failed to delete name ban in %q: %w", channel, err)
	}
	return nil
}

func (r *Repository) DeleteBanByIP(channel, ip string) error {
	if err := guardChannel(channel); err != nil {
		return err
	}
	query := fmt.Sprintf("DELETE FROM `%s` WHERE ip = ?", banTable(channel))
	if _, err := r.db.Exec(query, ip); err != nil {
		return fmt.Errorf("failed to delete IP ban in %q: %w", channel, err)
	}
	return nil
}

func (r *Repository) DeleteBanByID(channel string, id int64) error {
	if err := guardChannel(channel); err != nil {
		return err
	}
	query := fmt.Sprintf("DELETE FROM `%s` WHERE id = ?", banTable(channel))
	if _, err := r.db.Exec(query, id); err != nil {
		return fmt.Errorf("failed to delete ban %d in %q: %w", id, channel, err)
	}
	return nil
}

// InsertLibraryItem caches a media item; inserting an existing id is a
// silent no-op.
func (r *Repository) InsertLibraryItem(channel string, item domain.LibraryItem) error {
	if err := guardChannel(channel); err != nil {
		return err
	}
	query := fmt.Sprintf(
		"INSERT INTO `%s` (id, title, seconds, type) VALUES (?, ?, ?, ?) ON CONFLICT(id) DO NOTHING",
		libraryTable(channel))
	if _, err := r.db.Exec(query, item.ID, item.Title, item.Seconds, item.Type); err != nil {
		return fmt.Errorf("failed to insert library item in %q: %w", channel, err)
	}
	return nil
}

func (r *Repository) GetLibraryItem(channel, id string) (domain.LibraryItem, error) {
	if err := guardChannel(channel); err != nil {
		return domain.LibraryItem{}, err
	}
	var item domain.LibraryItem
	query := fmt.Sprintf("SELECT id, title, seconds, type FROM `%s` WHERE id = ?", libraryTable(channel))
	err := r.db.QueryRow(query, id).Scan(&item.ID, &item.Title, &item.Seconds, &item.Type)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.LibraryItem{}, fmt.Errorf("library item %q: %w", id, usecase.ErrNotFound)
		}
		return domain.LibraryItem{}, fmt.Errorf("failed to query library item in %q: %w", channel, err)
	}
	return item, nil
}

func (r *Repository) SearchLibrary(channel, title string) ([]domain.LibraryItem, error) {
	if err := guardChannel(channel); err != nil {
		return nil, err
	}
	query := fmt.Sprintf("SELECT id, title, seconds, type FROM `%s` WHERE title LIKE ?", libraryTable(channel))
	rows, err := r.db.Query(query, "%"+title+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to search library in %q: %w", channel, err)
	}
	defer rows.Close()

	var items []domain.LibraryItem
	for rows.Next() {
		var item domain.LibraryItem
		if err := rows.Scan(&item.ID, &item.Title, &item.Seconds, &item.Type); err != nil {
			return nil, fmt.Errorf("failed to scan library row: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over library items: %w", err)
	}
	return items, nil
}

func (r *Repository) DeleteLibraryItem(channel, id string) error {
	if err := guardChannel(channel); err != nil {
		return err
	}
	query := fmt.Sprintf("DELETE FROM `%s` WHERE id = ?", libraryTable(channel))
	if _, err := r.db.Exec(query, id); err != nil {
		return fmt.Errorf("failed to delete library item in %q: %w", channel, err)
	}
	return nil
}
