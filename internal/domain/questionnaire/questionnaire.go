// Package questionnaire drives the multi-step intake wizard shown on the
// marketing site. The wizard state lives on the client and is posted back
// with every call, so the server keeps no sessions.
package questionnaire

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownStep   = errors.New("unknown questionnaire step")
	ErrInvalidOption = errors.New("invalid option for step")
	ErrIncomplete    = errors.New("questionnaire incomplete")
)

// Phase describes where the visitor is in the wizard.
type Phase string

const (
	PhaseAnswering Phase = "answering"
	PhaseSummary   Phase = "summary"
)

// Option is one selectable answer.
type Option struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}

// Step is a single question.
type Step struct {
	ID       string   `json:"id" yaml:"id"`
	Question string   `json:"question" yaml:"question"`
	Options  []Option `json:"options" yaml:"options"`
}

func (s Step) option(value string) (Option, bool) {
	for _, o := range s.Options {
		if o.Value == value {
			return o, true
		}
	}
	return Option{}, false
}

// Definition is the ordered list of wizard steps.
type Definition struct {
	Steps []Step `json:"steps" yaml:"steps"`
}

// State is the wizard position plus answers collected so far.
type State struct {
	Step    int               `json:"step"`
	Answers map[string]string `json:"answers"`
	Phase   Phase             `json:"phase"`
}

// SummaryLine pairs a question with the label of the chosen answer.
type SummaryLine struct {
	StepID   string `json:"step_id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Default returns the agency intake questionnaire.
func Default() Definition {
	return Definition{Steps: []Step{
		{
			ID:       "service",
			Question: "What can we help you with?",
			Options: []Option{
				{Value: "web_design", Label: "Website design & build"},
				{Value: "branding", Label: "Branding & identity"},
				{Value: "seo", Label: "SEO & content"},
				{Value: "app", Label: "Web or mobile app"},
				{Value: "marketing", Label: "Paid marketing"},
			},
		},
		{
			ID:       "budget",
			Question: "What is your budget?",
			Options: []Option{
				{Value: "under_5k", Label: "Under $5k"},
				{Value: "5k_15k", Label: "$5k - $15k"},
				{Value: "15k_50k", Label: "$15k - $50k"},
				{Value: "50k_plus", Label: "$50k+"},
			},
		},
		{
			ID:       "timeline",
			Question: "When do you want to start?",
			Options: []Option{
				{Value: "asap", Label: "As soon as possible"},
				{Value: "1_3_months", Label: "In 1-3 months"},
				{Value: "3_6_months", Label: "In 3-6 months"},
				{Value: "flexible", Label: "I'm flexible"},
			},
		},
	}}
}

// Start returns the initial state.
func (d Definition) Start() State {
	return State{Step: 0, Answers: map[string]string{}, Phase: PhaseAnswering}
}

func (d Definition) stepIndex(id string) int {
	for i, s := range d.Steps {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// Answer records value for stepID and advances to the next unanswered step.
// Once every step has an answer the state moves to the summary phase.
func (d Definition) Answer(state State, stepID, value string) (State, error) {
	idx := d.stepIndex(stepID)
	if idx < 0 {
		return state, fmt.Errorf("%w: %s", ErrUnknownStep, stepID)
	}
	if _, ok := d.Steps[idx].option(value); !ok {
		return state, fmt.Errorf("%w: %s=%s", ErrInvalidOption, stepID, value)
	}

	next := State{Answers: make(map[string]string, len(d.Steps))}
	for k, v := range state.Answers {
		if d.stepIndex(k) >= 0 {
			next.Answers[k] = v
		}
	}
	next.Answers[stepID] = value

	next.Step, next.Phase = d.advance(next.Answers, idx)
	return next, nil
}

func (d Definition) advance(answers map[string]string, from int) (int, Phase) {
	for i := from + 1; i < len(d.Steps); i++ {
		if _, ok := answers[d.Steps[i].ID]; !ok {
			return i, PhaseAnswering
		}
	}
	for i := 0; i <= from; i++ {
		if _, ok := answers[d.Steps[i].ID]; !ok {
			return i, PhaseAnswering
		}
	}
	return len(d.Steps) - 1, PhaseSummary
}

// Back moves one step backwards, leaving the summary if needed.
func (d Definition) Back(state State) State {
	next := State{Step: state.Step, Answers: state.Answers, Phase: PhaseAnswering}
	if next.Answers == nil {
		next.Answers = map[string]string{}
	}
	switch {
	case state.Phase == PhaseSummary:
		next.Step = len(d.Steps) - 1
	case next.Step > 0:
		next.Step--
	}
	if next.Step >= len(d.Steps) {
		next.Step = len(d.Steps) - 1
	}
	if next.Step < 0 {
		next.Step = 0
	}
	return next
}

// Summary lists the chosen answers in step order.
func (d Definition) Summary(state State) ([]SummaryLine, error) {
	lines := make([]SummaryLine, 0, len(d.Steps))
	for _, step := range d.Steps {
		value, ok := state.Answers[step.ID]
		if !ok {
			return nil, fmt.Errorf("%w: missing %s", ErrIncomplete, step.ID)
		}
		opt, ok := step.option(value)
		if !ok {
			return nil, fmt.Errorf("%w: %s=%s", ErrInvalidOption, step.ID, value)
		}
		lines = append(lines, SummaryLine{StepID: step.ID, Question: step.Question, Answer: opt.Label})
	}
	return lines, nil
}

// Complete returns the validated answers for ticket submission.
func (d Definition) Complete(state State) (map[string]string, error) {
	if _, err := d.Summary(state); err != nil {
		return nil, err
	}
	answers := make(map[string]string, len(d.Steps))
	for _, step := range d.Steps {
		answers[step.ID] = state.Answers[step.ID]
	}
	return answers, nil
}
