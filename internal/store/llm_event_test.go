package store

import (
	"context"
	"testing"
)

func TestLLMEvents(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	events := []LLMRequestEventData{
		{Provider: "gemini", Model: "gemini-2.0-flash-001", Purpose: "intent", InputTokens: 100, OutputTokens: 5, LatencyMs: 200, Success: true},
		{Provider: "gemini", Model: "gemini-2.0-flash-001", Purpose: "tutor-answer", InputTokens: 1200, OutputTokens: 300, LatencyMs: 900, Success: true, RequestBody: "{}", ResponseBody: "Hola"},
		{Provider: "gemini", Model: "gemini-2.0-flash-001", Purpose: "intent", InputTokens: 80, OutputTokens: 0, LatencyMs: 400, Success: false, ErrorMessage: "rate limited"},
	}
	for _, e := range events {
		if err := repo.AppendLLMRequest(ctx, e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	all, err := repo.QueryLLMEvents(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d events, want 3", len(all))
	}
	if all[0].ID <= all[2].ID {
		t.Errorf("events not newest first: %d, %d", all[0].ID, all[2].ID)
	}

	intents, err := repo.QueryLLMEvents(ctx, QueryOpts{Purpose: "intent", Limit: 1})
	if err != nil {
		t.Fatalf("query intent: %v", err)
	}
	if len(intents) != 1 || intents[0].ErrorMessage != "rate limited" {
		t.Errorf("intent query = %+v", intents)
	}

	e, err := repo.GetLLMEvent(ctx, all[1].ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if e == nil || e.ResponseBody != "Hola" || e.Purpose != "tutor-answer" {
		t.Errorf("get = %+v", e)
	}
	if missing, err := repo.GetLLMEvent(ctx, 999); err != nil || missing != nil {
		t.Errorf("missing event = %+v, %v", missing, err)
	}

	usage, err := repo.LLMUsageByPurpose(ctx)
	if err != nil {
		t.Fatalf("usage: %v", err)
	}
	if len(usage) != 2 || usage[0].Purpose != "intent" || usage[0].Calls != 2 || usage[0].InputTokens != 180 || usage[0].AvgLatencyMs != 300 {
		t.Errorf("usage by purpose = %+v", usage)
	}

	byModel, err := repo.LLMUsageByModel(ctx)
	if err != nil {
		t.Fatalf("usage by model: %v", err)
	}
	if len(byModel) != 1 || byModel[0].Calls != 3 || byModel[0].OutputTokens != 305 {
		t.Errorf("usage by model = %+v", byModel)
	}
}
