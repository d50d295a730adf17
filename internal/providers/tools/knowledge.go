package tools

import "net/http"

const searchKnowledgeBaseSchema = `
{
  "type": "object",
  "properties": {
    "query": { "type": "string", "description": "Search query." },
    "categories": {
      "type": "array",
      "items": {
        "type": "string",
        "enum": ["general", "projects", "purdue", "career", "reference"]
      },
      "description": "Limit search to specific KB subfolder categories. Omit to search all."
    },
    "top_k": { "type": "integer", "description": "Number of results to return. Defaults to 10." }
  },
  "required": ["query"]
}
`

const deleteKBSourceSchema = `
{
  "type": "object",
  "properties": {
    "source_id": { "type": "string", "description": "The file_id from list_kb_sources." }
  },
  "required": ["source_id"]
}
`

// The knowledge base is Drive-backed: new documents are placed with
// create_file and become searchable after sync_kb.
func knowledgeTools() []Definition {
	return []Definition{
		{
			Name: "search_knowledge_base",
			Description: "Search personal knowledge base documents. " +
				"Use category filters to scope the search to relevant sources.",
			Schema:   searchKnowledgeBaseSchema,
			Method:   http.MethodPost,
			Endpoint: "/kb/search",
		},
		{
			Name: "list_kb_sources",
			Description: "List all documents currently indexed in the knowledge base. " +
				"Returns each source's file_id, filename, category, chunk count, and sync status. " +
				"Use file_id with delete_kb_source to remove a specific entry.",
			Schema:   emptySchema,
			Method:   http.MethodGet,
			Endpoint: "/kb/sources",
		},
		{
			Name: "delete_kb_source",
			Description: "Remove a document from the knowledge base by its source ID. " +
				"This deletes the indexed chunks only; the Drive file is not touched. " +
				"Use list_kb_sources first to find the file_id.",
			Schema:     deleteKBSourceSchema,
			Method:     http.MethodDelete,
			Endpoint:   "/kb/files/{source_id}",
			PathParams: []string{"source_id"},
		},
		{
			Name: "sync_kb",
			Description: "Sync the knowledge base with Google Drive. " +
				"Picks up new and modified files added since the last sync. " +
				"Call this after using create_file to place a new document in a Drive KB subfolder.",
			Schema:   emptySchema,
			Method:   http.MethodPost,
			Endpoint: "/kb/sync",
		},
	}
}
