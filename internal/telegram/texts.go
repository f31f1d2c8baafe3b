package telegram

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ykvlv/report-bot/internal/domain"
	"github.com/ykvlv/report-bot/internal/timezone"
	"github.com/ykvlv/report-bot/internal/wizard"
)

// UI texts in English
const (
	startPrivateText = "👋 I can mention the admins of a group chat when someone reports something. " +
		"Unlike other bots that do the same, I only tag you when you are available.\n"
	startNeedsTZText = "\nTo do that I need your /tz. With a timezone set I can check your unavailability window " +
		"before mentioning you. You can also turn on /dnd to be completely unavailable until you turn it off.\n"
	startFooterText = "\nSee /help for more."
	startGroupText  = "Hi! Send me /help in private for details."

	helpGroupText   = "Reply /report to a message to report it to the admins."
	helpPrivateText = "Add me to your group so members can /report others (spammers and so on) to the admins. " +
		"I am different from other bots that do the same: I am time-aware.\n\n" +
		"<b>How am I time-aware?</b>\n" +
		"Set your timezone with /tz. Setting one also sets an unavailability window, which you can customise with /unavail. " +
		"From then on, whenever someone uses /report in a group you administrate, I check your local time " +
		"and skip the mention while you are unavailable.\n\n" +
		"<b>Note:</b> however busy you are, you will be mentioned if you are the chat creator and no other admin is available.\n\n" +
		"<b>Do not disturb</b>\n" +
		"Toggle <i>Do not disturb</i> with /dnd. While it is on I will not mention you at all."

	reportOnlyGroupsText = "This only works in groups."
	reportNoTargetText   = "Reply /report to a message."
	reportHandledAlert   = "Marked as handled."
	reportAdminsOnly     = "Only admins can do that."
	reportRetryText      = "I could not reach the admin list right now. Please try again in a minute."

	tzUsageText = "Pass your timezone as an argument.\n" +
		"Examples\n" +
		"- <code>/tz Europe/Berlin</code>\n" +
		"- <code>/tz berlin</code>\n" +
		"- <code>/tz berl</code> (search)\n\n" +
		"%s\n\n" +
		"<b>Timezone</b>\n" +
		"Set a <a href=\"https://en.wikipedia.org/wiki/List_of_tz_database_time_zones\">timezone</a> and I will not tag you " +
		"for reports while you are unavailable. By default you count as unavailable at night in your location " +
		"(12 AM to 06 AM); change the window with /unavail."
	tzStatusSetFmt    = "Your timezone is <b>%s</b>. Use /clear_tz to remove it."
	tzStatusUnsetText = "You have not set a timezone yet."
	tzTooShortText    = "What is that? Be a bit more specific, at least two characters."
	tzNoMatchText     = "Could not find any timezones related to that. Please enter something valid."
	tzNotFoundText    = "Could not find the timezone."
	tzCandidatesText  = "Did you mean...?"
	tzSetFmt          = "Timezone set to <b>%s</b>. I guess it is %s at your place."
	tzClearedText     = "Timezone cleared. Set a new one with /tz."

	dndOnText  = "Do not disturb is on. You will not be mentioned until you turn it off with /dnd again."
	dndOffText = "Do not disturb is off. You will get reports while you are available."

	unavailNeedsTZText = "You need to set a timezone with /tz to use this feature."
	unavailCurrentFmt  = "Your current unavailability window is <b>from %s to %s</b>. Change it with the button below."
	unavailOffText     = "You have turned this feature off. Turn it on with the button below."
	unavailAboutText   = "You are probably not available around the clock: you sleep, you may work. " +
		"Being tagged for reports then is a disruption. Set a window when you are expected to be unavailable " +
		"and I will check it before tagging you.\n\n" +
		"<b>Note:</b> this does not apply if you are the chat creator and no other admin is available.\n\n" +
		"- Turn the feature off with /disable_unavail to get mentions all the time.\n" +
		"- Run /am_i_available to check whether you are available right now."
	unavailChangeButton = "Change"
	unavailEnableButton = "Enable"
	unavailReenableBtn  = "Re-enable"
	unavailAskStartText = "So you are unavailable, starting from?"
	unavailAskEndText   = "When do you become available again?"
	unavailStartAckFmt  = "From %s, until..."
	unavailSavedFmt     = "So you will be unavailable from %s to %s. I will remember that and not tag you then unless I have to."
	unavailDisabledText = "The unavailability window has been disabled."
	unavailAlreadyOff   = "Already disabled."
	invalidRequestText  = "Invalid request :("

	availUnknownText    = "No idea. You have not set a timezone yet, so I cannot really tell."
	availNoWindowText   = "Not sure, since you have turned the /unavail feature off."
	availYesText        = "Looks like you are available right now."
	availNoText         = "Looks like you are unavailable right now."
	availAlsoDNDText    = " And you also have /dnd on."
	availButDNDText     = " But you have /dnd on right now, so I guess you are not available."
	genericErrorText    = "Something went wrong. Please try again."
	writeFailedText     = "Could not save your settings. Please try again."
	readFailedText      = "Could not read your settings. Please try again later."
	handledButtonText   = "Handled"
	handledCallbackData = "handled"
	legacyHandledData   = "mark-as-handled"
	tzCallbackPrefix    = "tz:"
)

// Random answers when someone reports the bot itself.
var selfReportReplies = []string{
	"You can't report me.",
	"Nice try",
	"Oh.",
	"What?",
	"Hmm",
	"Lol",
}

// privateCommands is registered for private chats at startup.
var privateCommands = []tgbotapi.BotCommand{
	{Command: "tz", Description: "Set timezone"},
	{Command: "clear_tz", Description: "Clear timezone"},
	{Command: "unavail", Description: "Set unavailability window"},
	{Command: "dnd", Description: "Toggle do not disturb"},
	{Command: "am_i_available", Description: "Am I available?"},
	{Command: "help", Description: "Help"},
}

func handledKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(handledButtonText, handledCallbackData),
		),
	)
}

func singleButtonKeyboard(text, data string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(text, data)),
	)
}

// hoursKeyboard lays out wizard choices four per row.
func hoursKeyboard(choices []wizard.Choice) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, c := range choices {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(c.Label, c.Data))
		if len(row) == 4 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// candidatesKeyboard lays out timezone candidates two per row.
func candidatesKeyboard(cands []timezone.Candidate) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, c := range cands {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(c.Token, tzCallbackPrefix+c.Token))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func windowText(iv domain.Interval) (string, string) {
	return domain.FormatHour(iv.Start), domain.FormatHour(iv.End)
}

func tzStatusText(p *domain.Preferences) string {
	if p.HasTZ() {
		return fmt.Sprintf(tzStatusSetFmt, p.TZ)
	}
	return tzStatusUnsetText
}
