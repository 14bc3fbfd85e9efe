package domain

import (
	"context"
	"errors"
	"testing"

	"github.com/brightpixel/agencyportal/internal/domain/questionnaire"
	"github.com/brightpixel/agencyportal/internal/domain/tickets"
)

func TestNewFallsBackToNullRepositories(t *testing.T) {
	c := New(Options{})

	_, err := c.Tickets.Get(context.Background(), "t-1")
	if !errors.Is(err, tickets.ErrNotImplemented) {
		t.Fatalf("expected ErrNotImplemented, got %v", err)
	}
	if len(c.Questionnaire.Steps) != len(questionnaire.Default().Steps) {
		t.Fatalf("expected default questionnaire")
	}
}

func TestNewUsesProvidedQuestionnaire(t *testing.T) {
	custom := questionnaire.Definition{Steps: []questionnaire.Step{
		{ID: "goal", Options: []questionnaire.Option{{Value: "leads", Label: "Leads"}}},
	}}
	c := New(Options{Questionnaire: custom})
	if len(c.Questionnaire.Steps) != 1 || c.Questionnaire.Steps[0].ID != "goal" {
		t.Fatalf("custom questionnaire not used: %+v", c.Questionnaire)
	}
}
