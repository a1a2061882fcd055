package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// LessonCompletion records a finished lesson-day evaluation.
type LessonCompletion struct {
	ent.Schema
}

func (LessonCompletion) Fields() []ent.Field {
	return []ent.Field{
		field.Int64("learner_id").
			Immutable(),
		field.Int("lesson_day").
			Range(1, 30).
			Immutable(),
		field.Time("completed_at").
			Default(time.Now).
			Immutable().
			Comment("UTC time the last answer was graded"),
		field.Float("evaluation_score").
			Range(0, 100).
			Immutable(),
	}
}

// Indexes enforce at most one completion per learner and day.
func (LessonCompletion) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("learner_id", "lesson_day").
			Unique(),
	}
}
