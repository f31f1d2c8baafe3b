package telegram

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/ykvlv/report-bot/internal/report"
	"github.com/ykvlv/report-bot/internal/settings"
	"github.com/ykvlv/report-bot/internal/wizard"
)

// Services are the domain components the router dispatches to.
type Services struct {
	Settings *settings.Service
	Wizard   *wizard.Wizard
	Reports  *report.Router
	Roster   report.Roster
}

// Router wires Telegram updates to handlers. It keeps no per-chat state:
// wizard progress travels in callback data.
type Router struct {
	api      API
	log      *zap.Logger
	svc      Services
	username string // the bot's own username, for /cmd@username addressing
	attempts uint
}

// NewRouter creates a new Telegram router. attempts bounds delivery retries.
func NewRouter(api API, log *zap.Logger, svc Services, username string, attempts uint) *Router {
	if attempts == 0 {
		attempts = 1
	}
	return &Router{api: api, log: log, svc: svc, username: username, attempts: attempts}
}

// RegisterCommands publishes the command list shown in private chats.
func (r *Router) RegisterCommands() error {
	_, err := r.api.Request(tgbotapi.NewSetMyCommandsWithScope(
		tgbotapi.NewBotCommandScopeAllPrivateChats(), privateCommands...))
	return err
}

// HandleUpdate routes a single update to appropriate handler.
func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	if upd.Message != nil {
		r.handleMessage(ctx, upd.Message)
		return
	}
	if upd.CallbackQuery != nil {
		r.handleCallback(ctx, upd.CallbackQuery)
	}
}

func (r *Router) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.Chat == nil {
		return
	}
	private := msg.Chat.IsPrivate()
	group := msg.Chat.IsGroup() || msg.Chat.IsSuperGroup()
	cmd, ok := r.command(msg)
	if !ok {
		return
	}

	switch {
	case cmd == "report" || cmd == "admin":
		if private {
			r.send(ctx, replyTo(msg, reportOnlyGroupsText))
		} else if group {
			r.handleReport(ctx, msg)
		}
	case cmd == "" && group:
		if containsAdminMention(msg) {
			r.handleReport(ctx, msg)
		}
	case cmd == "start":
		r.handleStart(ctx, msg)
	case cmd == "help":
		r.handleHelp(ctx, msg)
	case private:
		r.handlePrivateCommand(ctx, msg, cmd)
	}
}

func (r *Router) handlePrivateCommand(ctx context.Context, msg *tgbotapi.Message, cmd string) {
	switch cmd {
	case "tz", "timezone":
		r.handleTZ(ctx, msg)
	case "clear_tz":
		r.handleClearTZ(ctx, msg)
	case "dnd":
		r.handleDND(ctx, msg)
	case "unavail":
		r.handleUnavail(ctx, msg)
	case "disable_unavail":
		r.handleDisableUnavail(ctx, msg)
	case "am_i_available":
		r.handleAmIAvailable(ctx, msg)
	default:
		// Unknown command or free text: ignore
	}
}

func (r *Router) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil || cb.Message.Chat == nil || cb.From == nil {
		r.answer(cb.ID, "")
		return
	}
	data := cb.Data
	private := cb.Message.Chat.IsPrivate()

	switch {
	case data == handledCallbackData || data == legacyHandledData:
		if !private {
			r.handleHandled(ctx, cb)
			return
		}
	case private && strings.HasPrefix(data, tzCallbackPrefix):
		r.handleTZSelect(ctx, cb)
		return
	case private && wizard.IsCallback(data):
		r.handleWizard(ctx, cb)
		return
	}
	// Unknown callback: acknowledge so the client stops spinning
	r.answer(cb.ID, "")
}

// command returns the command name of msg. ok is false when the command is
// addressed to another bot with /cmd@otherbot.
func (r *Router) command(msg *tgbotapi.Message) (string, bool) {
	cmd := msg.CommandWithAt()
	i := strings.Index(cmd, "@")
	if i < 0 {
		return cmd, true
	}
	if !strings.EqualFold(cmd[i+1:], r.username) {
		return "", false
	}
	return cmd[:i], true
}

// --- Generic helpers ---

func (r *Router) send(ctx context.Context, c tgbotapi.Chattable) {
	if _, err := r.sendWithRetry(ctx, c); err != nil {
		r.log.Warn("send failed", zap.Error(err))
	}
}

func (r *Router) answer(id, text string) {
	if _, err := r.api.Request(tgbotapi.NewCallback(id, text)); err != nil {
		r.log.Debug("answer callback failed", zap.Error(err))
	}
}

func (r *Router) alert(id, text string) {
	if _, err := r.api.Request(tgbotapi.NewCallbackWithAlert(id, text)); err != nil {
		r.log.Debug("answer callback failed", zap.Error(err))
	}
}

func (r *Router) edit(ctx context.Context, cb *tgbotapi.CallbackQuery, text string, kb *tgbotapi.InlineKeyboardMarkup) {
	e := tgbotapi.NewEditMessageText(cb.Message.Chat.ID, cb.Message.MessageID, text)
	e.ParseMode = tgbotapi.ModeHTML
	e.DisableWebPagePreview = true
	e.ReplyMarkup = kb
	r.send(ctx, e)
}

func (r *Router) deleteMessage(chatID int64, messageID int) {
	// The message may already be gone or the bot may lack the right to delete it.
	if _, err := r.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		r.log.Debug("delete message failed", zap.Error(err), zap.Int64("chatID", chatID))
	}
}

// htmlMessage builds an HTML message with link previews off.
func htmlMessage(chatID int64, text string) tgbotapi.MessageConfig {
	m := tgbotapi.NewMessage(chatID, text)
	m.ParseMode = tgbotapi.ModeHTML
	m.DisableWebPagePreview = true
	return m
}

// replyTo answers msg in its chat, still sending if msg was deleted.
func replyTo(msg *tgbotapi.Message, text string) tgbotapi.MessageConfig {
	m := htmlMessage(msg.Chat.ID, text)
	m.ReplyToMessageID = msg.MessageID
	m.AllowSendingWithoutReply = true
	return m
}

func userID(msg *tgbotapi.Message) int64 {
	if msg.From != nil {
		return msg.From.ID
	}
	return msg.Chat.ID
}
