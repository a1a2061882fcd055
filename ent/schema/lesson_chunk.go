package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// LessonChunk is one embedded passage of a lesson day's course material.
type LessonChunk struct {
	ent.Schema
}

func (LessonChunk) Fields() []ent.Field {
	return []ent.Field{
		field.Int("lesson_day").
			Range(1, 30),
		field.Int("ordinal").
			NonNegative().
			Comment("Position of the chunk within the day"),
		field.Text("content"),
		field.Text("embedding").
			Comment("JSON array of float32"),
		field.String("embedding_model").
			Comment("Embedder that produced the vector, e.g. gemini-embedding-001"),
		field.String("source").
			Default("").
			Comment("File the chunk was extracted from"),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
	}
}

func (LessonChunk) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("lesson_day", "ordinal").
			Unique(),
	}
}
