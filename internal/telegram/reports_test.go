package telegram

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/ykvlv/report-bot/internal/domain"
	"github.com/ykvlv/report-bot/internal/report"
)

func mentionEntity(offset, length int) tgbotapi.MessageEntity {
	return tgbotapi.MessageEntity{Type: "mention", Offset: offset, Length: length}
}

func TestContainsAdminMention(t *testing.T) {
	tests := []struct {
		name string
		msg  tgbotapi.Message
		want bool
	}{
		{"plain", tgbotapi.Message{Text: "@admin spam here", Entities: []tgbotapi.MessageEntity{mentionEntity(0, 6)}}, true},
		{"plural", tgbotapi.Message{Text: "hey @admins", Entities: []tgbotapi.MessageEntity{mentionEntity(4, 7)}}, true},
		// the emoji is two UTF-16 code units
		{"after emoji", tgbotapi.Message{Text: "😡 @admins", Entities: []tgbotapi.MessageEntity{mentionEntity(3, 7)}}, true},
		{"other user", tgbotapi.Message{Text: "@administrator", Entities: []tgbotapi.MessageEntity{mentionEntity(0, 14)}}, false},
		{"not an entity", tgbotapi.Message{Text: "@admin"}, false},
		{"caption", tgbotapi.Message{Caption: "look @admin", CaptionEntities: []tgbotapi.MessageEntity{mentionEntity(5, 6)}}, true},
		{"out of range", tgbotapi.Message{Text: "@adm", Entities: []tgbotapi.MessageEntity{mentionEntity(0, 6)}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := containsAdminMention(&tt.msg); got != tt.want {
				t.Fatalf("containsAdminMention(%q) = %v, want %v", tt.msg.Text+tt.msg.Caption, got, tt.want)
			}
		})
	}
}

func TestBuildReport(t *testing.T) {
	chat := &tgbotapi.Chat{ID: -100, Type: "supergroup"}

	rep, _ := buildReport(&tgbotapi.Message{Chat: chat})
	if rep.Target != nil {
		t.Fatalf("expected no target, got %+v", rep.Target)
	}

	rep, a := buildReport(&tgbotapi.Message{Chat: chat, ReplyToMessage: &tgbotapi.Message{
		SenderChat:         &tgbotapi.Chat{ID: -200, Title: "News", UserName: "news", Type: "channel"},
		From:               &tgbotapi.User{ID: 136817688, IsBot: true},
		IsAutomaticForward: true,
	}})
	if rep.Target == nil || rep.Target.ID != -200 || !rep.Target.SenderChat || !rep.AutomaticForward {
		t.Fatalf("unexpected report %+v target %+v", rep, rep.Target)
	}
	if a.IsUser || a.Username != "news" || a.Name != "News" {
		t.Fatalf("unexpected author %+v", a)
	}

	rep, a = buildReport(&tgbotapi.Message{Chat: chat, ReplyToMessage: &tgbotapi.Message{
		From: &tgbotapi.User{ID: 42, FirstName: "Eve"},
	}})
	if rep.Target == nil || rep.Target.ID != 42 || rep.Target.SenderChat || rep.AutomaticForward {
		t.Fatalf("unexpected report %+v", rep)
	}
	if !a.IsUser {
		t.Fatalf("expected a user author")
	}
}

func TestReportText(t *testing.T) {
	got := reportText(author{ID: -200, Name: "Spam & Eggs", Username: "spam_eggs"}, []report.Moderator{{ID: 5, FirstName: "A<b>"}})
	want := `Reported <a href="https://t.me/spam_eggs">Spam &amp; Eggs</a> [<code>-200</code>]` + "\n" +
		`<a href="tg://user?id=5">A&lt;b&gt;</a> `
	if got != want {
		t.Fatalf("reportText:\n got %q\nwant %q", got, want)
	}

	got = reportText(author{ID: -300, Name: "Private group"}, nil)
	want = "Reported Private group [<code>-300</code>]\n"
	if got != want {
		t.Fatalf("reportText:\n got %q\nwant %q", got, want)
	}
}

func TestAvailabilityText(t *testing.T) {
	night := &domain.Interval{Start: 0, End: 6}
	tests := []struct {
		name      string
		p         domain.Preferences
		available bool
		want      string
	}{
		{"no tz", domain.Preferences{}, true, availUnknownText},
		{"no tz, dnd", domain.Preferences{DND: true}, true, availUnknownText + availButDNDText},
		{"window off", domain.Preferences{TZ: "UTC"}, true, availNoWindowText},
		{"available", domain.Preferences{TZ: "UTC", Interval: night}, true, availYesText},
		{"available, dnd", domain.Preferences{TZ: "UTC", Interval: night, DND: true}, true, availYesText + availButDNDText},
		{"unavailable", domain.Preferences{TZ: "UTC", Interval: night}, false, availNoText},
		{"unavailable, dnd", domain.Preferences{TZ: "UTC", Interval: night, DND: true}, false, availNoText + availAlsoDNDText},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := availabilityText(tt.p, tt.available); got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}
