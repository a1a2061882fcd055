package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
)

// LearnerSession holds the encoded conversation state of one learner.
type LearnerSession struct {
	ent.Schema
}

func (LearnerSession) Fields() []ent.Field {
	return []ent.Field{
		field.Int64("id").
			StorageKey("learner_id").
			Immutable(),
		field.Text("data").
			Comment("JSON-encoded session"),
		field.Time("updated_at").
			Default(time.Now).
			UpdateDefault(time.Now),
	}
}
