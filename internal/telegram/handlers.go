package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/ykvlv/report-bot/internal/domain"
	"github.com/ykvlv/report-bot/internal/wizard"
)

// --- Core commands ---

func (r *Router) handleStart(ctx context.Context, msg *tgbotapi.Message) {
	if !msg.Chat.IsPrivate() {
		r.send(ctx, htmlMessage(msg.Chat.ID, startGroupText))
		return
	}
	text := startPrivateText
	p, err := r.svc.Settings.Preferences(ctx, userID(msg))
	if err != nil || !p.HasTZ() {
		text += startNeedsTZText
	}
	r.send(ctx, htmlMessage(msg.Chat.ID, text+startFooterText))
}

func (r *Router) handleHelp(ctx context.Context, msg *tgbotapi.Message) {
	text := helpGroupText
	if msg.Chat.IsPrivate() {
		text = helpPrivateText
	}
	r.send(ctx, htmlMessage(msg.Chat.ID, text))
}

// settingsErrorText maps settings failures to what the user sees.
func settingsErrorText(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidQuery):
		return tzTooShortText
	case errors.Is(err, domain.ErrNoMatch):
		return tzNoMatchText
	case errors.Is(err, domain.ErrResolutionInconsistency):
		return tzNotFoundText
	case errors.Is(err, domain.ErrTimezoneRequired):
		return unavailNeedsTZText
	case errors.Is(err, domain.ErrPreferenceWriteFailed):
		return writeFailedText
	case errors.Is(err, domain.ErrPreferenceReadFailed):
		return readFailedText
	case errors.Is(err, wizard.ErrMalformedCallback), errors.Is(err, domain.ErrInvalidHour):
		return invalidRequestText
	default:
		return genericErrorText
	}
}

func (r *Router) fail(ctx context.Context, chatID int64, op string, err error) {
	r.log.Warn(op+" failed", zap.Error(err), zap.Int64("chatID", chatID))
	r.send(ctx, htmlMessage(chatID, settingsErrorText(err)))
}

// --- Timezone ---

func (r *Router) handleTZ(ctx context.Context, msg *tgbotapi.Message) {
	chatID, uid := msg.Chat.ID, userID(msg)
	query := strings.TrimSpace(msg.CommandArguments())

	if query == "" {
		p, err := r.svc.Settings.Preferences(ctx, uid)
		if err != nil {
			r.fail(ctx, chatID, "read preferences", err)
			return
		}
		r.send(ctx, htmlMessage(chatID, fmt.Sprintf(tzUsageText, tzStatusText(p))))
		return
	}

	res, err := r.svc.Settings.SetTimezone(ctx, uid, query)
	if err != nil {
		r.fail(ctx, chatID, "set timezone", err)
		return
	}
	if res.Zone != nil {
		r.send(ctx, htmlMessage(chatID, fmt.Sprintf(tzSetFmt,
			escapeHTML(res.Zone.Name), domain.FormatClock(res.LocalTime))))
		return
	}
	out := htmlMessage(chatID, tzCandidatesText)
	out.ReplyMarkup = candidatesKeyboard(res.Candidates)
	r.send(ctx, out)
}

func (r *Router) handleTZSelect(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	token := strings.TrimPrefix(cb.Data, tzCallbackPrefix)
	res, err := r.svc.Settings.SelectTimezone(ctx, cb.From.ID, token)
	if err != nil {
		r.log.Warn("select timezone failed", zap.Error(err), zap.String("token", token))
		text := settingsErrorText(err)
		if errors.Is(err, domain.ErrNoMatch) {
			text = tzNotFoundText
		}
		r.answer(cb.ID, text)
		return
	}
	r.answer(cb.ID, "")
	r.edit(ctx, cb, fmt.Sprintf(tzSetFmt, escapeHTML(res.Zone.Name), domain.FormatClock(res.LocalTime)), nil)
}

func (r *Router) handleClearTZ(ctx context.Context, msg *tgbotapi.Message) {
	if err := r.svc.Settings.ClearTimezone(ctx, userID(msg)); err != nil {
		r.fail(ctx, msg.Chat.ID, "clear timezone", err)
		return
	}
	r.send(ctx, htmlMessage(msg.Chat.ID, tzClearedText))
}

// --- Do not disturb ---

func (r *Router) handleDND(ctx context.Context, msg *tgbotapi.Message) {
	on, err := r.svc.Settings.ToggleDND(ctx, userID(msg))
	if err != nil {
		r.fail(ctx, msg.Chat.ID, "toggle dnd", err)
		return
	}
	text := dndOffText
	if on {
		text = dndOnText
	}
	r.send(ctx, htmlMessage(msg.Chat.ID, text))
}

// --- Unavailability window ---

func (r *Router) handleUnavail(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	p, err := r.svc.Settings.Preferences(ctx, userID(msg))
	if err != nil {
		r.fail(ctx, chatID, "read preferences", err)
		return
	}
	if !p.HasTZ() {
		r.send(ctx, htmlMessage(chatID, unavailNeedsTZText))
		return
	}

	status, button := unavailOffText, unavailEnableButton
	if p.Interval != nil {
		from, to := windowText(*p.Interval)
		status, button = fmt.Sprintf(unavailCurrentFmt, from, to), unavailChangeButton
	}
	out := htmlMessage(chatID, status+"\n\n"+unavailAboutText)
	out.ReplyMarkup = singleButtonKeyboard(button, wizard.CallbackChange)
	r.send(ctx, out)
}

func (r *Router) handleWizard(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	step, err := r.svc.Wizard.Handle(ctx, cb.From.ID, cb.Data)
	if err != nil {
		r.log.Debug("wizard step rejected", zap.Error(err), zap.String("data", cb.Data))
		if errors.Is(err, domain.ErrTimezoneRequired) || errors.Is(err, domain.ErrPreferenceWriteFailed) {
			r.alert(cb.ID, settingsErrorText(err))
			return
		}
		r.answer(cb.ID, settingsErrorText(err))
		return
	}

	if iv := step.Committed; iv != nil {
		r.answer(cb.ID, "")
		from, to := windowText(*iv)
		r.edit(ctx, cb, fmt.Sprintf(unavailSavedFmt, from, to), nil)
		return
	}

	kb := hoursKeyboard(step.Choices)
	switch st := step.State.(type) {
	case wizard.AwaitingStart:
		r.answer(cb.ID, "")
		r.edit(ctx, cb, unavailAskStartText, &kb)
	case wizard.AwaitingEnd:
		r.answer(cb.ID, fmt.Sprintf(unavailStartAckFmt, domain.FormatHour(st.Start)))
		r.edit(ctx, cb, unavailAskEndText, &kb)
	default:
		r.answer(cb.ID, "")
	}
}

func (r *Router) handleDisableUnavail(ctx context.Context, msg *tgbotapi.Message) {
	changed, err := r.svc.Settings.DisableInterval(ctx, userID(msg))
	if err != nil {
		r.fail(ctx, msg.Chat.ID, "disable window", err)
		return
	}
	if !changed {
		r.send(ctx, htmlMessage(msg.Chat.ID, unavailAlreadyOff))
		return
	}
	out := htmlMessage(msg.Chat.ID, unavailDisabledText)
	out.ReplyMarkup = singleButtonKeyboard(unavailReenableBtn, wizard.CallbackChange)
	r.send(ctx, out)
}

func (r *Router) handleAmIAvailable(ctx context.Context, msg *tgbotapi.Message) {
	st, err := r.svc.Settings.Status(ctx, userID(msg))
	if err != nil {
		r.fail(ctx, msg.Chat.ID, "read status", err)
		return
	}
	r.send(ctx, htmlMessage(msg.Chat.ID, availabilityText(st.Preferences, st.Available)))
}

// availabilityText explains the window verdict, then how DND changes it.
func availabilityText(p domain.Preferences, available bool) string {
	var text string
	switch {
	case !p.HasTZ():
		text = availUnknownText
	case p.Interval == nil:
		text = availNoWindowText
	case available:
		text = availYesText
	default:
		text = availNoText
	}
	if p.DND {
		if p.HasTZ() && p.Interval != nil && !available {
			text += availAlsoDNDText
		} else {
			text += availButDNDText
		}
	}
	return text
}
