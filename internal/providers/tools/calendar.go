package tools

import "net/http"

const getEventsSchema = `
{
  "type": "object",
  "properties": {
    "days": { "type": "integer", "description": "Number of days to look ahead (1-30). Defaults to 7." }
  }
}
`

const checkAvailabilitySchema = `
{
  "type": "object",
  "properties": {
    "date": { "type": "string", "description": "Start date in YYYY-MM-DD format. Defaults to today." },
    "days": { "type": "integer", "description": "Number of days to check (1-7). Defaults to 1." }
  }
}
`

const createEventSchema = `
{
  "type": "object",
  "properties": {
    "title": { "type": "string", "description": "Event title." },
    "start": { "type": "string", "description": "Start in ISO 8601 format, e.g. '2026-02-20T14:00:00'. Use YYYY-MM-DD for all-day events." },
    "end": { "type": "string", "description": "End in ISO 8601 format." },
    "all_day": { "type": "boolean", "description": "True for all-day events." },
    "location": { "type": "string" },
    "description": { "type": "string" },
    "timezone": { "type": "string", "description": "Timezone string, e.g. 'America/New_York'. Defaults to America/New_York." },
    "recurrence": {
      "type": "array",
      "items": { "type": "string" },
      "description": "RRULE strings for recurring events, e.g. ['FREQ=WEEKLY;BYDAY=MO'] for every Monday. Omit for one-time events."
    },
    "reminder_minutes": {
      "type": "array",
      "items": { "type": "integer" },
      "description": "Popup reminder times in minutes before the event, e.g. [10, 60] for 10 min and 1 hour before."
    }
  },
  "required": ["title", "start", "end"]
}
`

const updateEventSchema = `
{
  "type": "object",
  "properties": {
    "event_id": { "type": "string", "description": "The event ID to update." },
    "title": { "type": "string" },
    "start": { "type": "string", "description": "ISO 8601 datetime." },
    "end": { "type": "string", "description": "ISO 8601 datetime." },
    "location": { "type": "string" },
    "description": { "type": "string" },
    "timezone": { "type": "string" },
    "recurrence": {
      "type": "array",
      "items": { "type": "string" },
      "description": "RRULE strings to set or update recurrence, e.g. ['FREQ=DAILY']. Pass an empty array to remove recurrence."
    },
    "reminder_minutes": {
      "type": "array",
      "items": { "type": "integer" },
      "description": "Popup reminder times in minutes before the event. Replaces existing reminders."
    }
  },
  "required": ["event_id"]
}
`

const deleteEventSchema = `
{
  "type": "object",
  "properties": {
    "event_id": { "type": "string", "description": "The event ID to delete." }
  },
  "required": ["event_id"]
}
`

const searchEventsSchema = `
{
  "type": "object",
  "properties": {
    "q": { "type": "string", "description": "Keyword to search in event titles, descriptions, and locations." },
    "max_results": { "type": "integer", "description": "Max events to return (1-50). Defaults to 10." }
  },
  "required": ["q"]
}
`

func calendarTools() []Definition {
	return []Definition{
		{
			Name:        "get_events",
			Description: "Get calendar events for the next N days.",
			Schema:      getEventsSchema,
			Method:      http.MethodGet,
			Endpoint:    "/calendar/events",
		},
		{
			Name:        "check_availability",
			Description: "Get busy time slots for the primary calendar.",
			Schema:      checkAvailabilitySchema,
			Method:      http.MethodGet,
			Endpoint:    "/calendar/availability",
		},
		{
			Name:        "create_event",
			Description: "Create a new calendar event.",
			Schema:      createEventSchema,
			Method:      http.MethodPost,
			Endpoint:    "/calendar/events",
		},
		{
			Name:        "update_event",
			Description: "Update an existing calendar event. Only provide fields to change.",
			Schema:      updateEventSchema,
			Method:      http.MethodPatch,
			Endpoint:    "/calendar/events/{event_id}",
			PathParams:  []string{"event_id"},
		},
		{
			Name:        "delete_event",
			Description: "Delete a calendar event.",
			Schema:      deleteEventSchema,
			Method:      http.MethodDelete,
			Endpoint:    "/calendar/events/{event_id}",
			PathParams:  []string{"event_id"},
		},
		{
			Name:        "search_events",
			Description: "Search calendar events by keyword across all time. Use when you need to find a specific event without knowing its date.",
			Schema:      searchEventsSchema,
			Method:      http.MethodGet,
			Endpoint:    "/calendar/events/search",
		},
	}
}
