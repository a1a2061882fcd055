// Package session models a learner's conversation position within a
// lesson day. A Session is a value: every transition returns a new
// Session and never mutates the receiver.
package session

import "slices"

// State is a position in the daily lesson flow.
type State string

const (
	StartDay                  State = "START_DAY"
	AwaitingStartConfirmation State = "AWAITING_START_CONFIRMATION"
	AwaitingColabReady        State = "AWAITING_COLAB_READY"
	AwaitingCodeOutput        State = "AWAITING_CODE_OUTPUT"
	PromptForVariables        State = "PROMPT_FOR_VARIABLES"
	LessonQA                  State = "LESSON_Q&A"
	PromptForEvaluation       State = "PROMPT_FOR_EVALUATION"
	InEvaluation              State = "IN_EVALUATION"
	DayComplete               State = "DAY_COMPLETE"
)

// States lists every state in flow order.
var States = []State{
	StartDay,
	AwaitingStartConfirmation,
	AwaitingColabReady,
	AwaitingCodeOutput,
	PromptForVariables,
	LessonQA,
	PromptForEvaluation,
	InEvaluation,
	DayComplete,
}

// Valid reports whether s is a known state.
func (s State) Valid() bool {
	return slices.Contains(States, s)
}

// hasPayload reports whether s carries state-specific data.
func (s State) hasPayload() bool {
	return s == AwaitingCodeOutput || s == InEvaluation
}

// Turn is one exchange of the lesson transcript.
type Turn struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Evaluation is the progress of an in-flight quiz. NextIndex is the
// zero-based index of the question awaiting an answer and always equals
// len(Answers).
type Evaluation struct {
	Day       int      `json:"day"`
	NextIndex int      `json:"next_index"`
	Answers   []string `json:"answers"`
}

// WithAnswer returns a copy of e with answer recorded.
func (e Evaluation) WithAnswer(answer string) Evaluation {
	answers := make([]string, len(e.Answers), len(e.Answers)+1)
	copy(answers, e.Answers)
	return Evaluation{
		Day:       e.Day,
		NextIndex: e.NextIndex + 1,
		Answers:   append(answers, answer),
	}
}

// Session is the conversation state of one learner. The zero value is a
// fresh START_DAY session.
type Session struct {
	state          State
	transcript     []Turn
	expectedOutput string
	evaluation     *Evaluation
}

// New returns a START_DAY session with an empty transcript.
func New() Session {
	return Session{state: StartDay}
}

// State returns the current state.
func (s Session) State() State {
	if s.state == "" {
		return StartDay
	}
	return s.state
}

// Transcript returns a copy of the day's exchanges.
func (s Session) Transcript() []Turn {
	return slices.Clone(s.transcript)
}

// ExpectedOutput returns the output the learner's program should print.
// It is only set in AWAITING_CODE_OUTPUT.
func (s Session) ExpectedOutput() (string, bool) {
	if s.state != AwaitingCodeOutput {
		return "", false
	}
	return s.expectedOutput, true
}

// Evaluation returns the quiz progress. It is only set in IN_EVALUATION.
func (s Session) Evaluation() (Evaluation, bool) {
	if s.state != InEvaluation || s.evaluation == nil {
		return Evaluation{}, false
	}
	e := *s.evaluation
	e.Answers = slices.Clone(e.Answers)
	return e, true
}

// Enter moves to a state without payload, keeping the transcript and
// dropping any payload of the previous state. Enter panics when st needs
// a payload; use AwaitOutput or Evaluate for those.
func (s Session) Enter(st State) Session {
	if !st.Valid() || st.hasPayload() {
		panic("session: Enter called with " + string(st))
	}
	return Session{state: st, transcript: s.transcript}
}

// AwaitOutput moves to AWAITING_CODE_OUTPUT expecting output.
func (s Session) AwaitOutput(expected string) Session {
	return Session{state: AwaitingCodeOutput, transcript: s.transcript, expectedOutput: expected}
}

// Evaluate moves to IN_EVALUATION with quiz progress e.
func (s Session) Evaluate(e Evaluation) Session {
	e.Answers = slices.Clone(e.Answers)
	return Session{state: InEvaluation, transcript: s.transcript, evaluation: &e}
}

// AppendTurn returns a copy of s with one more transcript exchange.
func (s Session) AppendTurn(question, answer string) Session {
	out := s
	out.transcript = append(slices.Clip(s.transcript), Turn{Question: question, Answer: answer})
	return out
}
