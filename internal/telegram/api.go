package telegram

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/codeGROOVE-dev/retry"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/ykvlv/report-bot/internal/report"
)

// API is the part of *tgbotapi.BotAPI the handlers use.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetChatAdministrators(config tgbotapi.ChatAdministratorsConfig) ([]tgbotapi.ChatMember, error)
	GetChatMember(config tgbotapi.GetChatMemberConfig) (tgbotapi.ChatMember, error)
}

// Roster reads chat membership through the Bot API. It satisfies report.Roster.
type Roster struct {
	api API
}

// NewRoster wraps api.
func NewRoster(api API) *Roster {
	return &Roster{api: api}
}

// Administrators lists the chat's moderators in the order Telegram returns them.
func (r *Roster) Administrators(_ context.Context, chatID int64) ([]report.Moderator, error) {
	members, err := r.api.GetChatAdministrators(tgbotapi.ChatAdministratorsConfig{
		ChatConfig: tgbotapi.ChatConfig{ChatID: chatID},
	})
	if err != nil {
		return nil, err
	}
	out := make([]report.Moderator, 0, len(members))
	for _, m := range members {
		if m.User == nil {
			continue
		}
		out = append(out, report.Moderator{
			ID:        m.User.ID,
			FirstName: m.User.FirstName,
			Username:  m.User.UserName,
			Anonymous: m.IsAnonymous,
			Bot:       m.User.IsBot,
			Role:      report.Role(m.Status),
		})
	}
	return out, nil
}

// Role returns the member's status in the chat.
func (r *Roster) Role(_ context.Context, chatID, userID int64) (report.Role, error) {
	m, err := r.api.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{ChatID: chatID, UserID: userID},
	})
	if err != nil {
		return "", err
	}
	return report.Role(m.Status), nil
}

// sendWithRetry delivers c, retrying transient failures. Client errors other
// than flood control are not retried.
func (r *Router) sendWithRetry(ctx context.Context, c tgbotapi.Chattable) (tgbotapi.Message, error) {
	var sent tgbotapi.Message
	err := retry.Do(
		func() error {
			m, err := r.api.Send(c)
			if err != nil {
				return err
			}
			sent = m
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(r.attempts),
		retry.Delay(500*time.Millisecond),
		retry.MaxDelay(10*time.Second),
		retry.DelayType(retry.FullJitterBackoffDelay),
		retry.RetryIf(retryable),
		retry.OnRetry(func(n uint, err error) {
			r.log.Warn("send failed, retrying", zap.Uint("attempt", n+1), zap.Error(err))
		}),
		retry.LastErrorOnly(true),
	)
	return sent, err
}

func retryable(err error) bool {
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= http.StatusInternalServerError
	}
	return true
}
