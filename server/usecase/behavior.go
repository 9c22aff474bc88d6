package usecase

import (
	"strings"

	"go.uber.org/zap"

	"github.com/ChrisX930/sync/server/domain"
)

// Rank thresholds for moderation actions.
const (
	rankToViewBans = 2
	rankToUnban    = 2
	rankToSetRank  = 3
	rankToViewRank = 3
)

// StandardBehavior is the built-in channel-behavior collaborator. It
// consults the rank store for privilege checks; the router has already
// verified membership and payload shape by the time it forwards here.
type StandardBehavior struct {
	channels *ChannelService
	log      *zap.Logger
}

func NewStandardBehavior(channels *ChannelService, log *zap.Logger) *StandardBehavior {
	return &StandardBehavior{channels: channels, log: log}
}

func (b *StandardBehavior) HandleChat(s *domain.Session, data map[string]any) {
	msg, ok := data["msg"].(string)
	if !ok || msg == "" {
		return
	}
	if !s.Is(domain.FlagLoggedIn) {
		return
	}
	if s.ChatLimiter.Throttle() {
		return
	}
	if s.Is(domain.FlagMuted) {
		return
	}

	event := domain.NewEvent("chatMsg", map[string]any{
		"username": s.Name(),
		"msg":      msg,
	})
	// Shadow-muted users only hear themselves.
	if s.Is(domain.FlagShadowMuted) {
		s.Send(event)
		return
	}
	s.Channel().SendAll(event)
}

func (b *StandardBehavior) HandlePM(s *domain.Session, data map[string]any) {
	msg, ok := data["msg"].(string)
	to, ok2 := data["to"].(string)
	if !ok || !ok2 {
		return
	}
	if !s.Is(domain.FlagLoggedIn) {
		return
	}
	if s.ChatLimiter.Throttle() {
		return
	}

	target, found := s.Channel().UserByLowerName(strings.ToLower(to))
	if !found {
		s.Send(domain.NewErrorMsgEvent("User " + to + " is not on this channel."))
		return
	}

	event := domain.NewEvent("pm", map[string]any{
		"username": s.Name(),
		"to":       target.Name(),
		"msg":      msg,
	})
	target.Send(event)
	s.Send(event)
}

// HandleQueue caches the queued media in the channel library and announces
// it. Playlist ordering itself is the media-sync collaborator's job.
func (b *StandardBehavior) HandleQueue(s *domain.Session, data map[string]any) {
	if s.QueueLimiter.Throttle() {
		return
	}
	id, ok := data["id"].(string)
	title, ok2 := data["title"].(string)
	if !ok || !ok2 {
		return
	}
	seconds := 0
	if f, isNum := data["seconds"].(float64); isNum {
		seconds = int(f)
	}
	mediaType, _ := data["type"].(string)

	ch := s.Channel()
	if ch.Registered() {
		item := domain.NewLibraryItem(id, title, seconds, mediaType)
		if err := b.channels.AddToLibrary(ch.UniqueName(), item); err != nil {
			b.log.Error("library insert failed",
				zap.String("channel", ch.UniqueName()), zap.String("id", id), zap.Error(err))
		}
	}

	ch.SendAll(domain.NewEvent("queue", map[string]any{
		"item": map[string]any{
			"id":      id,
			"title":   title,
			"seconds": seconds,
			"type":    mediaType,
		},
		"after": data["after"],
	}))
}

func (b *StandardBehavior) HandleSetRank(s *domain.Session, data map[string]any) {
	name, ok := data["name"].(string)
	f, ok2 := data["rank"].(float64)
	if !ok || !ok2 {
		return
	}
	rank := int(f)

	ch := s.Channel()
	if !ch.Registered() {
		return
	}
	actor := s.Account()
	if actor.EffectiveRank < rankToSetRank || rank >= actor.EffectiveRank {
		return
	}

	if err := b.channels.SetRank(ch.UniqueName(), name, rank); err != nil {
		b.log.Error("set rank failed",
			zap.String("channel", ch.UniqueName()), zap.String("name", name), zap.Error(err))
		s.Send(domain.NewErrorMsgEvent("Failed to update rank for " + name))
		return
	}

	if target, found := ch.UserByLowerName(strings.ToLower(name)); found {
		target.Send(domain.NewRankEvent(target.SetChannelRank(rank)))
	}
	ch.SendAll(domain.NewSetUserRankEvent(name, rank))
}

func (b *StandardBehavior) HandleUnban(s *domain.Session, data map[string]any) {
	ch := s.Channel()
	if !ch.Registered() {
		return
	}
	if s.Account().EffectiveRank < rankToUnban {
		return
	}

	if f, ok := data["id"].(float64); ok {
		if err := b.channels.UnbanID(ch.UniqueName(), int64(f)); err != nil {
			b.log.Error("unban by id failed", zap.String("channel", ch.UniqueName()), zap.Error(err))
		}
		return
	}
	if name, ok := data["name"].(string); ok {
		if err := b.channels.UnbanName(ch.UniqueName(), name); err != nil {
			b.log.Error("unban by name failed", zap.String("channel", ch.UniqueName()), zap.Error(err))
		}
	}
}

// HandleVoteskip forwards to the poll collaborator when one is attached.
func (b *StandardBehavior) HandleVoteskip(s *domain.Session) {
	ch := s.Channel()
	if ch.Voteskip == nil {
		return
	}
	ch.Voteskip.CheckPass()
}

func (b *StandardBehavior) SendBanlist(s *domain.Session) {
	ch := s.Channel()
	if !ch.Registered() {
		return
	}
	if s.Account().EffectiveRank < rankToViewBans {
		return
	}
	bans, err := b.channels.Banlist(ch.UniqueName())
	if err != nil {
		b.log.Error("banlist fetch failed", zap.String("channel", ch.UniqueName()), zap.Error(err))
		return
	}
	s.Send(domain.NewEvent("banlist", bans))
}

func (b *StandardBehavior) SendChannelRanks(s *domain.Session) {
	ch := s.Channel()
	if !ch.Registered() {
		return
	}
	if s.Account().EffectiveRank < rankToViewRank {
		return
	}
	ranks, err := b.channels.AllRanks(ch.UniqueName())
	if err != nil {
		b.log.Error("rank list fetch failed", zap.String("channel", ch.UniqueName()), zap.Error(err))
		return
	}
	s.Send(domain.NewEvent("channelRanks", ranks))
}
