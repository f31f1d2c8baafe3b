package telegram

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"
	"unicode/utf16"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/ykvlv/report-bot/internal/report"
)

// author is whoever a message is attributed to: a user or a chat posting on its own behalf.
type author struct {
	ID       int64
	Name     string
	Username string
	IsUser   bool
}

func messageAuthor(m *tgbotapi.Message) (author, bool) {
	if c := m.SenderChat; c != nil {
		return author{ID: c.ID, Name: c.Title, Username: c.UserName}, true
	}
	if m.From == nil {
		return author{}, false
	}
	return author{
		ID:       m.From.ID,
		Name:     m.From.FirstName,
		Username: m.From.UserName,
		IsUser:   !m.From.IsBot,
	}, true
}

// buildReport describes the message cmd replies to.
func buildReport(cmd *tgbotapi.Message) (report.Report, author) {
	rep := report.Report{ChatID: cmd.Chat.ID}
	target := cmd.ReplyToMessage
	if target == nil {
		return rep, author{}
	}
	a, ok := messageAuthor(target)
	if !ok {
		return rep, author{}
	}
	rep.Target = &report.Target{ID: a.ID, SenderChat: target.SenderChat != nil}
	rep.AutomaticForward = target.IsAutomaticForward
	return rep, a
}

func (r *Router) handleReport(ctx context.Context, msg *tgbotapi.Message) {
	if r.fromModerator(ctx, msg) {
		return
	}

	rep, target := buildReport(msg)
	res, err := r.svc.Reports.Route(ctx, rep, time.Now())
	if err != nil {
		r.log.Error("route report failed", zap.Error(err), zap.Int64("chatID", rep.ChatID))
		r.send(ctx, replyTo(msg, reportRetryText))
		return
	}
	r.log.Info("report routed",
		zap.Int64("chatID", rep.ChatID),
		zap.String("outcome", res.Outcome.String()),
		zap.Int("notified", len(res.Notify)),
		zap.Bool("fallback", res.FallbackApplied),
	)

	switch res.Outcome {
	case report.NoTarget:
		r.send(ctx, replyTo(msg, reportNoTargetText))
	case report.SelfReportDeflected:
		r.send(ctx, replyTo(msg, selfReportReplies[rand.IntN(len(selfReportReplies))]))
	case report.Routed:
		r.deleteMessage(msg.Chat.ID, msg.MessageID)
		out := htmlMessage(msg.Chat.ID, reportText(target, res.Notify))
		out.ReplyToMessageID = msg.ReplyToMessage.MessageID
		out.AllowSendingWithoutReply = true
		out.ReplyMarkup = handledKeyboard()
		if _, err := r.sendWithRetry(ctx, out); err != nil {
			r.log.Error("deliver report failed", zap.Error(err), zap.Int64("chatID", rep.ChatID))
		}
	default:
		// Ignored and Suppressed reports get no answer
	}
}

// fromModerator reports whether msg was sent by a moderator of its chat.
// A message sent as the group itself comes from an anonymous administrator.
func (r *Router) fromModerator(ctx context.Context, msg *tgbotapi.Message) bool {
	if msg.SenderChat != nil {
		return msg.SenderChat.ID == msg.Chat.ID
	}
	if msg.From == nil {
		return false
	}
	return r.isModerator(ctx, msg.Chat.ID, msg.From.ID)
}

func (r *Router) isModerator(ctx context.Context, chatID, userID int64) bool {
	role, err := r.svc.Roster.Role(ctx, chatID, userID)
	if err != nil {
		r.log.Warn("get chat member failed", zap.Error(err), zap.Int64("chatID", chatID), zap.Int64("userID", userID))
		return false
	}
	return role.IsModerator()
}

func (r *Router) handleHandled(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	chatID := cb.Message.Chat.ID
	if !r.isModerator(ctx, chatID, cb.From.ID) {
		r.answer(cb.ID, reportAdminsOnly)
		return
	}
	r.alert(cb.ID, reportHandledAlert)
	r.deleteMessage(chatID, cb.Message.MessageID)
}

// reportText renders the HTML report: who was reported, then the mentions.
func reportText(target author, notify []report.Moderator) string {
	var b strings.Builder
	name := escapeHTML(target.Name)
	switch {
	case target.IsUser:
		fmt.Fprintf(&b, `Reported <a href="tg://user?id=%d">%s</a>`, target.ID, name)
	case target.Username != "":
		fmt.Fprintf(&b, `Reported <a href="https://t.me/%s">%s</a>`, target.Username, name)
	default:
		fmt.Fprintf(&b, "Reported %s", name)
	}
	fmt.Fprintf(&b, " [<code>%d</code>]\n", target.ID)

	for _, m := range notify {
		b.WriteString(mention(m))
		b.WriteByte(' ')
	}
	return b.String()
}

func mention(m report.Moderator) string {
	if m.Username != "" {
		return "@" + escapeHTML(m.Username)
	}
	return fmt.Sprintf(`<a href="tg://user?id=%d">%s</a>`, m.ID, escapeHTML(m.FirstName))
}

func escapeHTML(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeHTML, s)
}

// containsAdminMention reports whether the text or caption mentions @admin or @admins.
func containsAdminMention(msg *tgbotapi.Message) bool {
	text, entities := msg.Text, msg.Entities
	if text == "" {
		text, entities = msg.Caption, msg.CaptionEntities
	}
	for _, e := range entities {
		if !e.IsMention() {
			continue
		}
		if t := entityText(text, e); t == "@admin" || t == "@admins" {
			return true
		}
	}
	return false
}

// entityText cuts an entity out of text. Offsets are in UTF-16 code units.
func entityText(text string, e tgbotapi.MessageEntity) string {
	units := utf16.Encode([]rune(text))
	if e.Offset < 0 || e.Length < 0 || e.Offset+e.Length > len(units) {
		return ""
	}
	return string(utf16.Decode(units[e.Offset : e.Offset+e.Length]))
}
