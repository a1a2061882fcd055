package session

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalid is wrapped by decoding errors for sessions whose payload
// does not match their state.
var ErrInvalid = errors.New("session: invalid")

type wireSession struct {
	State          State       `json:"state"`
	Transcript     []Turn      `json:"transcript"`
	ExpectedOutput *string     `json:"expected_output,omitempty"`
	Evaluation     *Evaluation `json:"evaluation,omitempty"`
}

// MarshalJSON encodes the session with only its state's payload.
func (s Session) MarshalJSON() ([]byte, error) {
	w := wireSession{
		State:      s.State(),
		Transcript: s.transcript,
	}
	if w.Transcript == nil {
		w.Transcript = []Turn{}
	}
	if out, ok := s.ExpectedOutput(); ok {
		w.ExpectedOutput = &out
	}
	if e, ok := s.Evaluation(); ok {
		w.Evaluation = &e
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes a session, rejecting unknown states, missing
// payloads and payloads the state does not allow.
func (s *Session) UnmarshalJSON(data []byte) error {
	var w wireSession
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if err := w.validate(); err != nil {
		return err
	}

	out := Session{state: w.State, transcript: w.Transcript}
	switch w.State {
	case AwaitingCodeOutput:
		out.expectedOutput = *w.ExpectedOutput
	case InEvaluation:
		e := *w.Evaluation
		out.evaluation = &e
	}
	*s = out
	return nil
}

func (w wireSession) validate() error {
	if !w.State.Valid() {
		return fmt.Errorf("%w: unknown state %q", ErrInvalid, w.State)
	}
	if w.State != AwaitingCodeOutput && w.ExpectedOutput != nil {
		return fmt.Errorf("%w: expected_output not allowed in %s", ErrInvalid, w.State)
	}
	if w.State != InEvaluation && w.Evaluation != nil {
		return fmt.Errorf("%w: evaluation not allowed in %s", ErrInvalid, w.State)
	}

	switch w.State {
	case AwaitingCodeOutput:
		if w.ExpectedOutput == nil {
			return fmt.Errorf("%w: %s requires expected_output", ErrInvalid, w.State)
		}
	case InEvaluation:
		e := w.Evaluation
		if e == nil {
			return fmt.Errorf("%w: %s requires evaluation", ErrInvalid, w.State)
		}
		if e.Day < 1 {
			return fmt.Errorf("%w: evaluation day %d", ErrInvalid, e.Day)
		}
		if e.NextIndex != len(e.Answers) {
			return fmt.Errorf("%w: evaluation next_index %d with %d answers", ErrInvalid, e.NextIndex, len(e.Answers))
		}
	}
	return nil
}

// Decode parses a stored session blob.
func Decode(data []byte) (Session, error) {
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return Session{}, fmt.Errorf("decode session: %w", err)
	}
	return s, nil
}

// Encode serializes a session for storage.
func Encode(s Session) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode session: %w", err)
	}
	return data, nil
}
