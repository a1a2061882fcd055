package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

var (
	// LearnersColumns holds the columns for the "learners" table.
	LearnersColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64},
		{Name: "name", Type: field.TypeString, Nullable: true},
		{Name: "start_date", Type: field.TypeString, Size: 10},
		{Name: "last_accessed_date", Type: field.TypeString, Size: 10},
	}
	// LearnersTable holds the schema information for the "learners" table.
	LearnersTable = &schema.Table{
		Name:       "learners",
		Columns:    LearnersColumns,
		PrimaryKey: []*schema.Column{LearnersColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "learner_last_accessed_date",
				Unique:  false,
				Columns: []*schema.Column{LearnersColumns[3]},
			},
		},
	}

	// LessonCompletionsColumns holds the columns for the "lesson_completions" table.
	LessonCompletionsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "learner_id", Type: field.TypeInt64},
		{Name: "lesson_day", Type: field.TypeInt},
		{Name: "completed_at", Type: field.TypeTime},
		{Name: "evaluation_score", Type: field.TypeFloat64},
	}
	// LessonCompletionsTable holds the schema information for the "lesson_completions" table.
	LessonCompletionsTable = &schema.Table{
		Name:       "lesson_completions",
		Columns:    LessonCompletionsColumns,
		PrimaryKey: []*schema.Column{LessonCompletionsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "lesson_completions_learners_completions",
				Columns:    []*schema.Column{LessonCompletionsColumns[1]},
				RefColumns: []*schema.Column{LearnersColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    "lessoncompletion_learner_id_lesson_day",
				Unique:  true,
				Columns: []*schema.Column{LessonCompletionsColumns[1], LessonCompletionsColumns[2]},
			},
		},
	}

	// LearnerSessionsColumns holds the columns for the "learner_sessions" table.
	LearnerSessionsColumns = []*schema.Column{
		{Name: "learner_id", Type: field.TypeInt64},
		{Name: "data", Type: field.TypeString, Size: 2147483647},
		{Name: "updated_at", Type: field.TypeTime},
	}
	// LearnerSessionsTable holds the schema information for the "learner_sessions" table.
	LearnerSessionsTable = &schema.Table{
		Name:       "learner_sessions",
		Columns:    LearnerSessionsColumns,
		PrimaryKey: []*schema.Column{LearnerSessionsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "learner_sessions_learners_session",
				Columns:    []*schema.Column{LearnerSessionsColumns[0]},
				RefColumns: []*schema.Column{LearnersColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
	}

	// LessonChunksColumns holds the columns for the "lesson_chunks" table.
	LessonChunksColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "lesson_day", Type: field.TypeInt},
		{Name: "ordinal", Type: field.TypeInt},
		{Name: "content", Type: field.TypeString, Size: 2147483647},
		{Name: "embedding", Type: field.TypeString, Size: 2147483647},
		{Name: "embedding_model", Type: field.TypeString},
		{Name: "source", Type: field.TypeString, Default: ""},
		{Name: "created_at", Type: field.TypeTime},
	}
	// LessonChunksTable holds the schema information for the "lesson_chunks" table.
	LessonChunksTable = &schema.Table{
		Name:       "lesson_chunks",
		Columns:    LessonChunksColumns,
		PrimaryKey: []*schema.Column{LessonChunksColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "lessonchunk_lesson_day_ordinal",
				Unique:  true,
				Columns: []*schema.Column{LessonChunksColumns[1], LessonChunksColumns[2]},
			},
		},
	}

	// LlmRequestEventsColumns holds the columns for the "llm_request_events" table.
	LlmRequestEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "provider", Type: field.TypeString},
		{Name: "model", Type: field.TypeString},
		{Name: "purpose", Type: field.TypeString},
		{Name: "input_tokens", Type: field.TypeInt, Default: 0},
		{Name: "output_tokens", Type: field.TypeInt, Default: 0},
		{Name: "latency_ms", Type: field.TypeInt64, Default: 0},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_message", Type: field.TypeString, Default: ""},
		{Name: "request_body", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "response_body", Type: field.TypeString, Size: 2147483647, Default: ""},
	}
	// LlmRequestEventsTable holds the schema information for the "llm_request_events" table.
	LlmRequestEventsTable = &schema.Table{
		Name:       "llm_request_events",
		Columns:    LlmRequestEventsColumns,
		PrimaryKey: []*schema.Column{LlmRequestEventsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "llmrequestevent_timestamp",
				Unique:  false,
				Columns: []*schema.Column{LlmRequestEventsColumns[1]},
			},
			{
				Name:    "llmrequestevent_purpose",
				Unique:  false,
				Columns: []*schema.Column{LlmRequestEventsColumns[4]},
			},
		},
	}

	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		LearnersTable,
		LessonCompletionsTable,
		LearnerSessionsTable,
		LessonChunksTable,
		LlmRequestEventsTable,
	}
)

func init() {
	LessonCompletionsTable.ForeignKeys[0].RefTable = LearnersTable
	LearnerSessionsTable.ForeignKeys[0].RefTable = LearnersTable
}
