package usecase

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ChrisX930/sync/server/domain"
)

// AuthService resolves identities and binds them to sessions. Both login
// paths are silent no-ops when the session is already logging in or logged
// in; outcomes are reported through the session's event stream.
type AuthService struct {
	repo     Repository
	channels *ChannelService
	throttle *domain.GuestLoginThrottle
	log      *zap.Logger
}

func NewAuthService(repo Repository, channels *ChannelService, throttle *domain.GuestLoginThrottle, log *zap.Logger) *AuthService {
	return &AuthService{
		repo:     repo,
		channels: channels,
		throttle: throttle,
		log:      log,
	}
}

// Login verifies credentials and binds the resolved account. A concurrent
// attempt while a login is in flight or completed is ignored.
func (a *AuthService) Login(s *domain.Session, name, password string) {
	if !s.Flags().BeginLogin() {
		return
	}

	canonical, globalRank, err := a.repo.VerifyLogin(name, password)
	if err != nil {
		s.Flags().FinishLogin(false)
		if errors.Is(err, ErrInvalidCredentials) {
			a.log.Info("login failed: bad password",
				zap.String("name", name), zap.String("ip", s.IP))
		}
		s.Send(domain.NewLoginFailure(loginErrorMessage(err)))
		return
	}

	account := a.resolveAccount(s, canonical, globalRank)
	s.BindAccount(account)
	s.Flags().FinishLogin(true)
	s.Send(domain.NewLoginSuccess(canonical, false))
	s.Send(domain.NewRankEvent(account.EffectiveRank))
	a.log.Info("logged in",
		zap.String("name", canonical), zap.String("ip", s.IP))
}

// GuestLogin binds a display-name-only identity with rank 0. The source
// address is limited to one guest login per cooldown window.
func (a *AuthService) GuestLogin(s *domain.Session, name string) {
	if !s.Flags().BeginLogin() {
		return
	}

	if err := a.checkGuestName(s, name); err != nil {
		s.Flags().FinishLogin(false)
		s.Send(domain.NewLoginFailure(a.guestErrorMessage(err)))
		return
	}

	a.throttle.Record(s.IP)

	s.BindAccount(domain.NewGuestAccount(name, s.IP))
	s.Flags().FinishLogin(true)
	s.Send(domain.NewLoginSuccess(name, true))
	s.Send(domain.NewRankEvent(domain.RankGuest))
	a.log.Info("guest signed in",
		zap.String("name", name), zap.String("ip", s.IP))
}

// resolveAccount builds the account with channel context: if the session is
// already inside a channel, the stored channel rank participates in the
// effective rank. Rank lookup failures fall back to the default rank.
func (a *AuthService) resolveAccount(s *domain.Session, name string, globalRank int) *domain.Account {
	channelRank := 0
	if ch := s.Channel(); s.InChannel() && ch.Registered() {
		rank, err := a.channels.GetRank(ch.UniqueName(), name)
		if err != nil {
			a.log.Warn("channel rank lookup failed during login",
				zap.String("channel", ch.UniqueName()), zap.String("name", name), zap.Error(err))
		}
		channelRank = rank
	}
	return domain.NewAccount(name, globalRank, channelRank, s.IP)
}

// checkGuestName runs the guest-login admission checks in order and reports
// the first rejection as a sentinel error.
func (a *AuthService) checkGuestName(s *domain.Session, name string) error {
	if !a.throttle.Allow(s.IP) {
		return ErrGuestCooldown
	}
	if !domain.IsValidUserName(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	taken, err := a.repo.IsUsernameTaken(name)
	if err != nil {
		return err
	}
	if taken {
		return ErrNameRegistered
	}
	if ch := s.Channel(); s.InChannel() {
		if _, inUse := ch.UserByLowerName(strings.ToLower(name)); inUse {
			return ErrNameInUse
		}
	}
	return nil
}

// guestErrorMessage translates a guest-login sentinel into the client-facing
// rejection text.
func (a *AuthService) guestErrorMessage(err error) string {
	switch {
	case errors.Is(err, ErrGuestCooldown):
		return fmt.Sprintf("Guest logins are restricted to one per IP address per %.0f seconds.",
			a.throttle.Window().Seconds())
	case errors.Is(err, ErrInvalidName):
		return "Invalid username. Usernames must be 1-20 characters long and consist only of characters a-z, A-Z, 0-9, -, and _."
	case errors.Is(err, ErrNameRegistered):
		return "That username is registered."
	case errors.Is(err, ErrNameInUse):
		return "That name is already in use on this channel."
	default:
		return err.Error()
	}
}

func loginErrorMessage(err error) string {
	if errors.Is(err, ErrInvalidCredentials) {
		return "Invalid username/password combination"
	}
	return err.Error()
}
