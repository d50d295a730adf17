package tools

import "net/http"

const listEmailsSchema = `
{
  "type": "object",
  "properties": {
    "unread_only": { "type": "boolean", "description": "If true, return only unread emails. Defaults to false." },
    "hours": { "type": "integer", "description": "Limit to emails received within the last N hours (1-168). Omit for no time filter." },
    "max_results": { "type": "integer", "description": "Max emails to return (1-50). Defaults to 20." }
  }
}
`

const searchEmailsSchema = `
{
  "type": "object",
  "properties": {
    "q": { "type": "string", "description": "Gmail search query." },
    "max_results": { "type": "integer", "description": "Max emails to return (1-50). Defaults to 20." }
  },
  "required": ["q"]
}
`

const getEmailSchema = `
{
  "type": "object",
  "properties": {
    "message_id": { "type": "string", "description": "The email message ID." }
  },
  "required": ["message_id"]
}
`

const draftEmailSchema = `
{
  "type": "object",
  "properties": {
    "to": { "type": "string", "description": "Recipient email address." },
    "subject": { "type": "string", "description": "Email subject." },
    "body": { "type": "string", "description": "Email body text." },
    "cc": { "type": "string", "description": "CC email address." }
  },
  "required": ["to", "subject", "body"]
}
`

const sendNotificationSchema = `
{
  "type": "object",
  "properties": {
    "title": { "type": "string", "description": "Notification title." },
    "message": { "type": "string", "description": "Notification body." },
    "priority": {
      "type": "integer",
      "enum": [-2, -1, 0, 1],
      "description": "-2=silent, -1=quiet, 0=normal, 1=high. Defaults to 0."
    },
    "url": { "type": "string", "description": "Optional URL to include." },
    "url_title": { "type": "string", "description": "Display text for the URL." }
  },
  "required": ["title", "message"]
}
`

func emailTools() []Definition {
	return []Definition{
		{
			Name:        "list_emails",
			Description: "List emails from the primary inbox. Filter by unread status and/or recency.",
			Schema:      listEmailsSchema,
			Method:      http.MethodGet,
			Endpoint:    "/email",
		},
		{
			Name:        "search_emails",
			Description: "Search emails using Gmail query syntax, e.g. 'from:alice subject:meeting'.",
			Schema:      searchEmailsSchema,
			Method:      http.MethodGet,
			Endpoint:    "/email/search",
		},
		{
			Name:        "get_email",
			Description: "Get the full content of a specific email by ID.",
			Schema:      getEmailSchema,
			Method:      http.MethodGet,
			Endpoint:    "/email/messages/{message_id}",
			PathParams:  []string{"message_id"},
		},
		{
			Name:        "draft_email",
			Description: "Save an email as a draft in Gmail. Does not send; the user must send it from Gmail.",
			Schema:      draftEmailSchema,
			Method:      http.MethodPost,
			Endpoint:    "/email/draft",
		},
	}
}

func notifyTools() []Definition {
	return []Definition{
		{
			Name:        "send_notification",
			Description: "Send a push notification via Pushover.",
			Schema:      sendNotificationSchema,
			Method:      http.MethodPost,
			Endpoint:    "/notify",
		},
	}
}
