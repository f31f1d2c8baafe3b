// Package wizard walks a user through choosing a daily unavailability window.
// The conversation state is carried in callback data, so any handler can resume it.
package wizard

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ykvlv/report-bot/internal/domain"
)

// State is the stage a wizard message is in.
type State interface {
	isState()
}

// AwaitingStart asks for the first unavailable hour.
type AwaitingStart struct{}

// AwaitingEnd asks for the hour the user becomes available again.
type AwaitingEnd struct {
	Start int
}

func (AwaitingStart) isState() {}
func (AwaitingEnd) isState()   {}

// Callback data layout.
const (
	prefix         = "unavail:"
	CallbackChange = prefix + "change"
	startPrefix    = prefix + "start:"
	endPrefix      = prefix + "end:"
)

// ErrMalformedCallback is returned for callback data that is not a complete wizard payload.
var ErrMalformedCallback = errors.New("malformed wizard callback")

// Action is a decoded callback: either a fresh start or a selection made in State.
type Action struct {
	Begin bool
	State State
	Hour  int
}

// IsCallback reports whether data belongs to the wizard.
func IsCallback(data string) bool {
	return strings.HasPrefix(data, prefix)
}

// StartData encodes picking start hour h.
func StartData(h int) string {
	return startPrefix + strconv.Itoa(h)
}

// EndData encodes picking end hour h after start.
func EndData(start, h int) string {
	return endPrefix + strconv.Itoa(start) + ":" + strconv.Itoa(h)
}

// Decode parses callback data produced by this package.
func Decode(data string) (Action, error) {
	switch {
	case data == CallbackChange:
		return Action{Begin: true}, nil

	case strings.HasPrefix(data, startPrefix):
		h, err := parseHour(strings.TrimPrefix(data, startPrefix))
		if err != nil {
			return Action{}, err
		}
		return Action{State: AwaitingStart{}, Hour: h}, nil

	case strings.HasPrefix(data, endPrefix):
		parts := strings.Split(strings.TrimPrefix(data, endPrefix), ":")
		if len(parts) != 2 {
			return Action{}, fmt.Errorf("%w: %q", ErrMalformedCallback, data)
		}
		start, err := parseHour(parts[0])
		if err != nil {
			return Action{}, err
		}
		end, err := parseHour(parts[1])
		if err != nil {
			return Action{}, err
		}
		return Action{State: AwaitingEnd{Start: start}, Hour: end}, nil
	}
	return Action{}, fmt.Errorf("%w: %q", ErrMalformedCallback, data)
}

func parseHour(s string) (int, error) {
	h, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedCallback, s)
	}
	if !domain.ValidHour(h) {
		return 0, fmt.Errorf("%w: %d", domain.ErrInvalidHour, h)
	}
	return h, nil
}

// Choice is one selectable hour.
type Choice struct {
	Hour  int
	Label string
	Data  string
}

// StartChoices lists every hour of the day.
func StartChoices() []Choice {
	out := make([]Choice, 0, 24)
	for h := 0; h < 24; h++ {
		out = append(out, Choice{Hour: h, Label: domain.FormatHour(h), Data: StartData(h)})
	}
	return out
}

// EndChoices lists the hours after start in circular order, excluding start
// itself so a window can never be empty.
func EndChoices(start int) []Choice {
	out := make([]Choice, 0, 23)
	for i := 1; i < 24; i++ {
		h := (start + i) % 24
		out = append(out, Choice{Hour: h, Label: domain.FormatHour(h), Data: EndData(start, h)})
	}
	return out
}
