package usecase

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidName rejects a syntactically illegal channel or user name
	// before persistence is touched.
	ErrInvalidName = errors.New("invalid name")
	// ErrChannelTaken rejects registration of a name that already exists,
	// compared case-insensitively.
	ErrChannelTaken = errors.New("channel name is already taken")
	ErrNotFound     = errors.New("not found")
	// ErrDeadChannel: a directory record exists but the in-memory channel
	// has already been torn down.
	ErrDeadChannel   = errors.New("channel is dead")
	ErrNotRegistered = errors.New("channel is not registered")

	ErrGuestCooldown      = errors.New("guest logins are restricted to one per IP address per cooldown window")
	ErrNameRegistered     = errors.New("that username is registered")
	ErrNameInUse          = errors.New("that name is already in use on this channel")
	ErrInvalidCredentials = errors.New("invalid username/password combination")
)

// ProvisionError reports a channel registration that failed partway through
// the saga. Step names the stage that failed; compensation has been
// attempted but is best-effort only.
type ProvisionError struct {
	Step string
	Err  error
}

func (e *ProvisionError) Error() string {
	return fmt.Sprintf("channel provisioning failed at %s: %v", e.Step, e.Err)
}

func (e *ProvisionError) Unwrap() error { return e.Err }
