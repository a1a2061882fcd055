package judge

import "github.com/abhisek/pysis/internal/llm"

// IntentSchema defines the JSON schema for intent classification responses.
var IntentSchema = &llm.Schema{
	Name:        "intent-classification",
	Description: "Category of a learner's chat message",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"intent": map[string]any{
				"type":        "string",
				"enum":        []any{"AFFIRMATIVE", "NEGATIVE", "QUESTION", "GREETING"},
				"description": "The single category that best describes the message",
			},
		},
		"required":             []any{"intent"},
		"additionalProperties": false,
	},
}

// OutputValidationSchema defines the JSON schema for program output checks.
var OutputValidationSchema = &llm.Schema{
	Name:        "output-validation",
	Description: "Whether the learner's description confirms the expected program output",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"confirmed": map[string]any{
				"type":        "boolean",
				"description": "True when the description confirms the expected output",
			},
		},
		"required":             []any{"confirmed"},
		"additionalProperties": false,
	},
}

// GradeSchema defines the JSON schema for quiz answer grading.
var GradeSchema = &llm.Schema{
	Name:        "quiz-grade",
	Description: "Whether a quiz answer is conceptually correct",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"correct": map[string]any{
				"type":        "boolean",
				"description": "True when the answer is conceptually correct for the question",
			},
		},
		"required":             []any{"correct"},
		"additionalProperties": false,
	},
}
