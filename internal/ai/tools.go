package ai

import (
	"encoding/json"

	openai "github.com/sashabaranov/go-openai"
)

// Tool schemas exposed to the model. These mirror the argument shapes the
// chat pipeline accepts; anything else is rejected at parse time.

func schema(s string) json.RawMessage { return json.RawMessage(s) }

func toolDefinitions() []openai.Tool {
	defs := []struct {
		name, description string
		parameters        json.RawMessage
	}{
		{
			name:        "add_task",
			description: "Create a new task on the user's to-do list.",
			parameters: schema(`{
				"type": "object",
				"properties": {
					"title": {"type": "string", "description": "Short task title, 1-200 characters."},
					"description": {"type": "string", "description": "Optional longer details."},
					"priority": {"type": "string", "enum": ["high", "medium", "low"], "description": "Only when the user stated a priority explicitly."},
					"due_date": {"type": "string", "description": "Due date exactly as the user phrased it, e.g. 'tomorrow' or 'next friday at 3pm'."}
				},
				"required": ["title"]
			}`),
		},
		{
			name:        "list_tasks",
			description: "Show the user's tasks, optionally filtered.",
			parameters: schema(`{
				"type": "object",
				"properties": {
					"status": {"type": "string", "enum": ["all", "pending", "completed"]},
					"priority": {"type": "string", "enum": ["high", "medium", "low"]}
				}
			}`),
		},
		{
			name:        "complete_task",
			description: "Mark one task as done.",
			parameters:  targetSchema,
		},
		{
			name:        "update_task",
			description: "Change fields of an existing task.",
			parameters: schema(`{
				"type": "object",
				"properties": {
					"task_id": {"type": "integer", "description": "Numeric id, only if the user gave one."},
					"reference": {"type": "string", "description": "The user's own words for which task they mean."},
					"title": {"type": "string"},
					"description": {"type": "string"},
					"priority": {"type": "string", "enum": ["high", "medium", "low"]},
					"completed": {"type": "boolean"},
					"due_date": {"type": "string", "description": "New due date exactly as the user phrased it."},
					"remove_due_date": {"type": "boolean", "description": "True when the user wants the due date removed."}
				}
			}`),
		},
		{
			name:        "delete_task",
			description: "Remove one task permanently. The server asks the user to confirm.",
			parameters:  targetSchema,
		},
		{
			name:        "find_task",
			description: "Look up a task by an approximate name.",
			parameters: schema(`{
				"type": "object",
				"properties": {
					"query": {"type": "string", "description": "Words to match against task titles."}
				},
				"required": ["query"]
			}`),
		},
	}

	tools := make([]openai.Tool, len(defs))
	for i, d := range defs {
		tools[i] = openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        d.name,
				Description: d.description,
				Parameters:  d.parameters,
			},
		}
	}
	return tools
}

var targetSchema = schema(`{
	"type": "object",
	"properties": {
		"task_id": {"type": "integer", "description": "Numeric id, only if the user gave one."},
		"reference": {"type": "string", "description": "The user's own words for which task they mean."}
	}
}`)
