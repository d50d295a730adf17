package tools

import "net/http"

const listFilesSchema = `
{
  "type": "object",
  "properties": {
    "folder_id": { "type": "string", "description": "Limit results to a specific Drive folder ID." },
    "query": { "type": "string", "description": "Drive search query, e.g. 'name contains \"resume\"'." },
    "max_results": { "type": "integer", "description": "Max files to return (1-50). Defaults to 20." }
  }
}
`

const listFoldersSchema = `
{
  "type": "object",
  "properties": {
    "parent_id": { "type": "string", "description": "Scope results to a specific parent folder ID." },
    "query": { "type": "string", "description": "Drive name filter, e.g. 'name contains \"Projects\"'." },
    "max_results": { "type": "integer", "description": "Max folders to return (1-50). Defaults to 20." }
  }
}
`

const createFolderSchema = `
{
  "type": "object",
  "properties": {
    "name": { "type": "string", "description": "Folder name." },
    "parent_id": { "type": "string", "description": "Parent folder ID. Defaults to Drive root if omitted." }
  },
  "required": ["name"]
}
`

const fileIDSchema = `
{
  "type": "object",
  "properties": {
    "file_id": { "type": "string", "description": "The Drive file ID." }
  },
  "required": ["file_id"]
}
`

const createFileSchema = `
{
  "type": "object",
  "properties": {
    "name": { "type": "string", "description": "File name including extension, e.g. 'meeting-notes.md'." },
    "content": { "type": "string", "description": "File content as plain text." },
    "folder_id": { "type": "string", "description": "Parent folder ID. Defaults to Drive root if omitted." },
    "mime_type": {
      "type": "string",
      "description": "MIME type, e.g. 'text/plain', 'text/markdown', 'text/csv', 'application/vnd.google-apps.document'. Defaults to text/plain."
    }
  },
  "required": ["name", "content"]
}
`

const updateFileSchema = `
{
  "type": "object",
  "properties": {
    "file_id": { "type": "string", "description": "The Drive file ID." },
    "content": { "type": "string", "description": "New file content. Replaces existing content entirely." }
  },
  "required": ["file_id", "content"]
}
`

const appendToFileSchema = `
{
  "type": "object",
  "properties": {
    "file_id": { "type": "string", "description": "The Drive file ID." },
    "content": { "type": "string", "description": "Text to append." },
    "separator": { "type": "string", "description": "String inserted between existing content and new content. Defaults to two newlines." }
  },
  "required": ["file_id", "content"]
}
`

func storageTools() []Definition {
	return []Definition{
		{
			Name:        "list_files",
			Description: "List files in Google Drive. Filter by folder or search query. Use to find a file ID before reading or modifying it.",
			Schema:      listFilesSchema,
			Method:      http.MethodGet,
			Endpoint:    "/storage/files",
		},
		{
			Name:        "list_folders",
			Description: "List Drive folders. Use parent_id to browse into a specific folder, or query to search by name. Use this to find a folder ID before creating files or subfolders inside it.",
			Schema:      listFoldersSchema,
			Method:      http.MethodGet,
			Endpoint:    "/storage/folders",
		},
		{
			Name:        "create_folder",
			Description: "Create a new folder in Google Drive, optionally nested inside a parent folder.",
			Schema:      createFolderSchema,
			Method:      http.MethodPost,
			Endpoint:    "/storage/folders",
		},
		{
			Name:        "get_file",
			Description: "Fetch the full text content of a Google Drive file by ID. Works with text files, Markdown, CSV, JSON, Google Docs, and PDFs.",
			Schema:      fileIDSchema,
			Method:      http.MethodGet,
			Endpoint:    "/storage/files/{file_id}/content",
			PathParams:  []string{"file_id"},
		},
		{
			Name:        "create_file",
			Description: "Create a new file in Google Drive with the given content. Pass mime_type='application/vnd.google-apps.document' to create a native Google Doc.",
			Schema:      createFileSchema,
			Method:      http.MethodPost,
			Endpoint:    "/storage/files",
		},
		{
			Name:        "update_file",
			Description: "Overwrite the content of an existing Google Drive text file. Replaces the entire file content.",
			Schema:      updateFileSchema,
			Method:      http.MethodPut,
			Endpoint:    "/storage/files/{file_id}",
			PathParams:  []string{"file_id"},
		},
		{
			Name:        "append_to_file",
			Description: "Append text to an existing Google Drive file or Google Doc without overwriting its current content.",
			Schema:      appendToFileSchema,
			Method:      http.MethodPost,
			Endpoint:    "/storage/files/{file_id}/append",
			PathParams:  []string{"file_id"},
		},
		{
			Name:        "delete_file",
			Description: "Move a Google Drive file to trash.",
			Schema:      fileIDSchema,
			Method:      http.MethodDelete,
			Endpoint:    "/storage/files/{file_id}",
			PathParams:  []string{"file_id"},
		},
	}
}
