package tools

import "net/http"

const webSearchSchema = `
{
  "type": "object",
  "properties": {
    "query": { "type": "string", "description": "Search query." },
    "max_results": { "type": "integer", "description": "Number of results to return (1-10). Defaults to 5." },
    "search_depth": {
      "type": "string",
      "enum": ["basic", "advanced"],
      "description": "'basic' is faster, 'advanced' does deeper extraction. Defaults to 'basic'."
    }
  },
  "required": ["query"]
}
`

const fetchURLSchema = `
{
  "type": "object",
  "properties": {
    "url": { "type": "string", "description": "The URL to fetch." }
  },
  "required": ["url"]
}
`

func searchTools() []Definition {
	return []Definition{
		{
			Name:        "web_search",
			Description: "Search the web for current information. Use when the knowledge base doesn't have the answer or the topic requires up-to-date data.",
			Schema:      webSearchSchema,
			Method:      http.MethodPost,
			Endpoint:    "/search/web",
		},
		{
			Name:        "fetch_url",
			Description: "Fetch and extract the readable text content from a specific URL. Use when you have a URL and need its full content.",
			Schema:      fetchURLSchema,
			Method:      http.MethodPost,
			Endpoint:    "/search/web/fetch",
		},
	}
}
