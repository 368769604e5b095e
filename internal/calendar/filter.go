package calendar

import (
	"strings"

	calendar "google.golang.org/api/calendar/v3"
)

// Matches reports whether an event matches a free-text query. The query
// is split into whitespace-separated words and an event matches if ANY
// word is a substring of the event's searchable text. An empty query
// matches everything.
func Matches(event *calendar.Event, query string) bool {
	query = strings.TrimSpace(query)
	if query == "" {
		return true
	}

	text := haystack(event)
	for _, word := range strings.Fields(strings.ToLower(query)) {
		if strings.Contains(text, word) {
			return true
		}
	}
	return false
}

// FilterEvents retains the events matching query, preserving order.
// With an empty query the input slice is returned unchanged.
func FilterEvents(events []*calendar.Event, query string) []*calendar.Event {
	if strings.TrimSpace(query) == "" {
		return events
	}

	filtered := make([]*calendar.Event, 0, len(events))
	for _, event := range events {
		if Matches(event, query) {
			filtered = append(filtered, event)
		}
	}
	return filtered
}

// haystack concatenates an event's searchable fields, lowercased and
// space-joined. Absent fields contribute nothing.
func haystack(event *calendar.Event) string {
	if event == nil {
		return ""
	}

	fields := make([]string, 0, 4+len(event.Attendees))
	for _, field := range []string{event.Summary, event.Description, event.Location} {
		if field != "" {
			fields = append(fields, field)
		}
	}
	if event.Organizer != nil && event.Organizer.Email != "" {
		fields = append(fields, event.Organizer.Email)
	}
	for _, attendee := range event.Attendees {
		if attendee != nil && attendee.Email != "" {
			fields = append(fields, attendee.Email)
		}
	}

	return strings.ToLower(strings.Join(fields, " "))
}
