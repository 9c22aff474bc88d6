package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/ChrisX930/sync/server/domain"
	"github.com/ChrisX930/sync/server/usecase"
)

// Repository implements usecase.Repository over sqlite. The channel
// directory and users live in fixed tables; each registered channel gets
// its own rank, ban and library tables created at provisioning time.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) usecase.Repository {
	return &Repository{db: db}
}

const schema = `
CREATE TABLE IF NOT EXISTS channels (
	id    INTEGER PRIMARY KEY AUTOINCREMENT,
	name  TEXT NOT NULL UNIQUE COLLATE NOCASE,
	owner TEXT NOT NULL,
	time  TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS users (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	name        TEXT NOT NULL UNIQUE COLLATE NOCASE,
	password    TEXT NOT NULL,
	global_rank INTEGER NOT NULL DEFAULT 1
);
`

// InitSchema creates the fixed tables. Per-channel tables are created by
// the provisioning saga, not here.
func InitSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}

func (r *Repository) IsChannelTaken(name string) (bool, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM channels WHERE name = ?", name).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to query channel name %q: %w", name, err)
	}
	return count > 0, nil
}

func (r *Repository) LookupChannel(name string) (domain.ChannelRecord, error) {
	var rec domain.ChannelRecord
	err := r.db.QueryRow("SELECT name, owner, time FROM channels WHERE name = ?", name).
		Scan(&rec.Name, &rec.Owner, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ChannelRecord{}, fmt.Errorf("channel %q: %w", name, usecase.ErrNotFound)
		}
		return domain.ChannelRecord{}, fmt.Errorf("failed to query channel %q: %w", name, err)
	}
	return rec, nil
}

func (r *Repository) SearchChannels(substring string) ([]domain.ChannelRecord, error) {
	return r.queryChannels("SELECT name, owner, time FROM channels WHERE name LIKE ?", "%"+substring+"%")
}

func (r *Repository) SearchChannelsByOwner(substring string) ([]domain.ChannelRecord, error) {
	return r.queryChannels("SELECT name, owner, time FROM channels WHERE owner LIKE ?", "%"+substring+"%")
}

func (r *Repository) ListChannelsByOwner(owner string) ([]domain.ChannelRecord, error) {
	return r.queryChannels("SELECT name, owner, time FROM channels WHERE owner = ?", owner)
}

func (r *Repository) queryChannels(query string, args ...any) ([]domain.ChannelRecord, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query channels: %w", err)
	}
	defer rows.Close()

	var records []domain.ChannelRecord
	for rows.Next() {
		var rec domain.ChannelRecord
		if err := rows.Scan(&rec.Name, &rec.Owner, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan channel row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over channels: %w", err)
	}
	return records, nil
}

func (r *Repository) InsertChannel(name, owner string, createdAt time.Time) error {
	if _, err := r.db.Exec("INSERT INTO channels (name, owner, time) VALUES (?, ?, ?)",
		name, owner, createdAt); err != nil {
		return fmt.Errorf("failed to insert channel %q: %w", name, err)
	}
	return nil
}

func (r *Repository) DeleteChannel(name string) error {
	if _, err := r.db.Exec("DELETE FROM channels WHERE name = ?", name); err != nil {
		return fmt.Errorf("failed to delete channel %q: %w", name, err)
	}
	return nil
}

func (r *Repository) GetGlobalRank(name string) (int, error) {
	var rank int
	err := r.db.QueryRow("SELECT global_rank FROM users WHERE name = ?", name).Scan(&rank)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("user %q: %w", name, usecase.ErrNotFound)
		}
		return 0, fmt.Errorf("failed to query global rank for %q: %w", name, err)
	}
	return rank, nil
}

// VerifyLogin checks credentials and returns the canonical stored name and
// global rank. A missing user and a wrong password both come back as
// ErrInvalidCredentials.
func (r *Repository) VerifyLogin(name, password string) (string, int, error) {
	var canonical, hash string
	var rank int
	err := r.db.QueryRow("SELECT name, password, global_rank FROM users WHERE name = ?", name).
		Scan(&canonical, &hash, &rank)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", 0, usecase.ErrInvalidCredentials
		}
		return "", 0, fmt.Errorf("failed to query user %q: %w", name, err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return "", 0, usecase.ErrInvalidCredentials
	}
	return canonical, rank, nil
}

func (r *Repository) IsUsernameTaken(name string) (bool, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM users WHERE name = ?", name).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to query username %q: %w", name, err)
	}
	return count > 0, nil
}

func (r *Repository) CreateUser(name, password string, globalRank int) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if _, err := r.db.Exec("INSERT INTO users (name, password, global_rank) VALUES (?, ?, ?)",
		name, string(hash), globalRank); err != nil {
		return fmt.Errorf("failed to insert user %q: %w", name, err)
	}
	return nil
}
