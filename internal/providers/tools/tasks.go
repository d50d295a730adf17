package tools

import "net/http"

const getTasksSchema = `
{
  "type": "object",
  "properties": {
    "list_id": { "type": "string", "description": "The task list ID. Get available lists with get_task_lists." },
    "include_completed": { "type": "boolean", "description": "Include completed tasks. Defaults to false." }
  },
  "required": ["list_id"]
}
`

const createTaskListSchema = `
{
  "type": "object",
  "properties": {
    "title": { "type": "string", "description": "Task list name." }
  },
  "required": ["title"]
}
`

const renameTaskListSchema = `
{
  "type": "object",
  "properties": {
    "list_id": { "type": "string", "description": "The task list ID." },
    "title": { "type": "string", "description": "New task list name." }
  },
  "required": ["list_id", "title"]
}
`

const createTaskSchema = `
{
  "type": "object",
  "properties": {
    "list_id": { "type": "string", "description": "The task list ID from get_task_lists." },
    "title": { "type": "string", "description": "Task title." },
    "notes": { "type": "string", "description": "Task notes or description." },
    "due": { "type": "string", "description": "Due date in RFC 3339 format, e.g. '2026-02-20T00:00:00.000Z'." }
  },
  "required": ["list_id", "title"]
}
`

const updateTaskSchema = `
{
  "type": "object",
  "properties": {
    "list_id": { "type": "string", "description": "The task list ID." },
    "task_id": { "type": "string", "description": "The task ID." },
    "title": { "type": "string" },
    "notes": { "type": "string" },
    "due": { "type": "string", "description": "RFC 3339 timestamp." },
    "status": {
      "type": "string",
      "enum": ["needsAction", "completed"],
      "description": "Task completion status. Set to 'completed' to mark a task as done, 'needsAction' to reopen it."
    }
  },
  "required": ["list_id", "task_id"]
}
`

const deleteTaskSchema = `
{
  "type": "object",
  "properties": {
    "list_id": { "type": "string", "description": "The task list ID." },
    "task_id": { "type": "string", "description": "The task ID." }
  },
  "required": ["list_id", "task_id"]
}
`

func taskTools() []Definition {
	return []Definition{
		{
			Name:        "get_task_lists",
			Description: "Get all task lists with their IDs and names.",
			Schema:      emptySchema,
			Method:      http.MethodGet,
			Endpoint:    "/tasks/lists",
		},
		{
			Name:        "get_tasks",
			Description: "Get tasks from a specific task list. Returns all non-completed tasks by default.",
			Schema:      getTasksSchema,
			Method:      http.MethodGet,
			Endpoint:    "/tasks/lists/{list_id}/tasks",
			PathParams:  []string{"list_id"},
		},
		{
			Name:        "create_task_list",
			Description: "Create a new Google Tasks task list.",
			Schema:      createTaskListSchema,
			Method:      http.MethodPost,
			Endpoint:    "/tasks/lists",
		},
		{
			Name:        "rename_task_list",
			Description: "Rename an existing task list.",
			Schema:      renameTaskListSchema,
			Method:      http.MethodPatch,
			Endpoint:    "/tasks/lists/{list_id}",
			PathParams:  []string{"list_id"},
		},
		{
			Name:        "create_task",
			Description: "Create a new task in a specific list.",
			Schema:      createTaskSchema,
			Method:      http.MethodPost,
			Endpoint:    "/tasks/lists/{list_id}/tasks",
			PathParams:  []string{"list_id"},
		},
		{
			Name:        "update_task",
			Description: "Update a task: title, notes, due date, or mark as completed.",
			Schema:      updateTaskSchema,
			Method:      http.MethodPatch,
			Endpoint:    "/tasks/lists/{list_id}/tasks/{task_id}",
			PathParams:  []string{"list_id", "task_id"},
		},
		{
			Name:        "delete_task",
			Description: "Delete a task.",
			Schema:      deleteTaskSchema,
			Method:      http.MethodDelete,
			Endpoint:    "/tasks/lists/{list_id}/tasks/{task_id}",
			PathParams:  []string{"list_id", "task_id"},
		},
	}
}
