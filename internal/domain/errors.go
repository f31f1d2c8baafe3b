package domain

import "errors"

var (
	// ErrInvalidQuery is returned for timezone queries shorter than two characters.
	ErrInvalidQuery = errors.New("timezone query too short")
	// ErrNoMatch is returned when no timezone resembles the query.
	ErrNoMatch = errors.New("no matching timezone")
	// ErrResolutionInconsistency means a known zone name has no entry in the catalog snapshot.
	ErrResolutionInconsistency = errors.New("known timezone missing from catalog")
	// ErrPreferenceWriteFailed wraps storage errors on commit.
	ErrPreferenceWriteFailed = errors.New("could not save preferences")
	// ErrPreferenceReadFailed wraps storage errors while loading preferences for a configuration change.
	ErrPreferenceReadFailed = errors.New("could not load preferences")
	// ErrTimezoneRequired guards features that need a configured timezone.
	ErrTimezoneRequired = errors.New("timezone not configured")
	// ErrInvalidHour is returned for hours outside [0,24) or an empty window.
	ErrInvalidHour = errors.New("invalid hour")
)
