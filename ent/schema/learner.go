package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Learner is one Telegram learner and the dates that drive the lesson day.
type Learner struct {
	ent.Schema
}

func (Learner) Fields() []ent.Field {
	return []ent.Field{
		field.Int64("id").
			Immutable().
			Comment("Telegram chat identifier"),
		field.String("name").
			Optional().
			Comment("First name reported by Telegram"),
		field.String("start_date").
			MaxLen(10).
			Immutable().
			Comment("Calendar date of first contact (YYYY-MM-DD)"),
		field.String("last_accessed_date").
			MaxLen(10).
			Comment("Calendar date of the latest message (YYYY-MM-DD)"),
	}
}

func (Learner) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("last_accessed_date"),
	}
}
