package tickets

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
)

var (
	ErrNotImplemented = errors.New("tickets repository: not implemented")
	ErrNotFound       = errors.New("ticket not found")
	ErrInvalidStatus  = errors.New("invalid ticket status")
	ErrInvalidSort    = errors.New("invalid ticket sort field")
)

// Ticket is a stored customer-intake record.
type Ticket struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Email     string            `json:"email,omitempty"`
	Phone     string            `json:"phone,omitempty"`
	Company   string            `json:"company,omitempty"`
	Message   string            `json:"message,omitempty"`
	Answers   map[string]string `json:"answers"`
	Source    string            `json:"source,omitempty"`
	Status    Status            `json:"status"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// Status is the position of a ticket in the admin queue.
type Status string

const (
	StatusNew        Status = "new"
	StatusContacted  Status = "contacted"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusArchived   Status = "archived"
)

// Statuses lists every status in queue order.
var Statuses = []Status{StatusNew, StatusContacted, StatusInProgress, StatusCompleted, StatusArchived}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// Repository abstracts ticket persistence.
type Repository interface {
	FindByID(ctx context.Context, id string) (Ticket, error)
	Save(ctx context.Context, ticket Ticket) (Ticket, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, query ListQuery) ([]Ticket, int, error)
	CountByStatus(ctx context.Context) (map[Status]int, error)
}

// NullRepository returns ErrNotImplemented for all operations.
type NullRepository struct{}

func (NullRepository) FindByID(context.Context, string) (Ticket, error) {
	return Ticket{}, ErrNotImplemented
}

func (NullRepository) Save(context.Context, Ticket) (Ticket, error) {
	return Ticket{}, ErrNotImplemented
}

func (NullRepository) Delete(context.Context, string) error {
	return ErrNotImplemented
}

func (NullRepository) List(context.Context, ListQuery) ([]Ticket, int, error) {
	return nil, 0, ErrNotImplemented
}

func (NullRepository) CountByStatus(context.Context) (map[Status]int, error) {
	return nil, ErrNotImplemented
}

// Service provides business logic around intake tickets.
type Service interface {
	Submit(ctx context.Context, input SubmitInput) (Ticket, error)
	Get(ctx context.Context, id string) (Ticket, error)
	UpdateStatus(ctx context.Context, id string, status Status) (Ticket, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, query ListQuery) (Page, error)
	CountByStatus(ctx context.Context) (map[Status]int, error)
	Bulk(ctx context.Context, input BulkInput) (BulkResult, error)
}

// SubmitInput is the contact and questionnaire data sent by a visitor.
type SubmitInput struct {
	Name    string            `json:"name"`
	Email   string            `json:"email"`
	Phone   string            `json:"phone"`
	Company string            `json:"company"`
	Message string            `json:"message"`
	Answers map[string]string `json:"answers"`
	Source  string            `json:"source"`
}

// Normalize trims whitespace and lower-cases the email.
func (in *SubmitInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	in.Company = strings.TrimSpace(in.Company)
	in.Message = strings.TrimSpace(in.Message)
	in.Source = strings.TrimSpace(in.Source)
	if in.Answers == nil {
		in.Answers = make(map[string]string)
	}
}

// Validate ensures required contact fields are present.
func (in SubmitInput) Validate() error {
	if in.Name == "" {
		return &ValidationError{Field: "name", Reason: "is required"}
	}
	if in.Email == "" && in.Phone == "" {
		return &ValidationError{Field: "email", Reason: "or phone is required"}
	}
	if in.Email != "" {
		if _, err := mail.ParseAddress(in.Email); err != nil {
			return &ValidationError{Field: "email", Reason: "is not a valid address"}
		}
	}
	return nil
}

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (v *ValidationError) Error() string {
	return v.Field + " " + v.Reason
}

// Options tunes the service.
type Options struct {
	// BulkConcurrency bounds the number of in-flight calls per bulk action.
	BulkConcurrency int
}

// NewService builds a ticket service.
func NewService(repo Repository, opts Options) Service {
	if opts.BulkConcurrency <= 0 {
		opts.BulkConcurrency = 4
	}
	return &service{repo: repo, bulkConcurrency: opts.BulkConcurrency}
}

type service struct {
	repo            Repository
	bulkConcurrency int
}

func (s *service) Submit(ctx context.Context, input SubmitInput) (Ticket, error) {
	input.Normalize()
	if err := input.Validate(); err != nil {
		return Ticket{}, err
	}

	return s.repo.Save(ctx, Ticket{
		Name:    input.Name,
		Email:   input.Email,
		Phone:   input.Phone,
		Company: input.Company,
		Message: input.Message,
		Answers: input.Answers,
		Source:  input.Source,
		Status:  StatusNew,
	})
}

func (s *service) Get(ctx context.Context, id string) (Ticket, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) UpdateStatus(ctx context.Context, id string, status Status) (Ticket, error) {
	if !status.Valid() {
		return Ticket{}, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	ticket, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return Ticket{}, err
	}
	ticket.Status = status
	return s.repo.Save(ctx, ticket)
}

func (s *service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *service) List(ctx context.Context, query ListQuery) (Page, error) {
	query, err := query.Normalize()
	if err != nil {
		return Page{}, err
	}
	items, total, err := s.repo.List(ctx, query)
	if err != nil {
		return Page{}, err
	}
	return Page{Tickets: items, Total: total, Offset: query.Offset, Limit: query.Limit}, nil
}

func (s *service) CountByStatus(ctx context.Context) (map[Status]int, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[Status]int, len(Statuses))
	for _, st := range Statuses {
		out[st] = counts[st]
	}
	return out, nil
}
