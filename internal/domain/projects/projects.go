package projects

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrNotImplemented    = errors.New("projects repository: not implemented")
	ErrNotFound          = errors.New("project not found")
	ErrMilestoneNotFound = errors.New("milestone not found")
	ErrInvalidStatus     = errors.New("invalid project status")
	ErrInvalidInput      = errors.New("invalid project")
)

// Status tracks delivery of a client project.
type Status string

const (
	StatusPlanning  Status = "planning"
	StatusActive    Status = "active"
	StatusOnHold    Status = "on_hold"
	StatusCompleted Status = "completed"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPlanning, StatusActive, StatusOnHold, StatusCompleted:
		return true
	}
	return false
}

// Project is agency work delivered to a client profile.
type Project struct {
	ID          string      `json:"id"`
	ClientID    string      `json:"client_id"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Status      Status      `json:"status"`
	Milestones  []Milestone `json:"milestones"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// Milestone is a checkpoint within a project.
type Milestone struct {
	ID          string     `json:"id"`
	ProjectID   string     `json:"project_id"`
	Title       string     `json:"title"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	SortOrder   int        `json:"sort_order"`
}

// Done reports whether the milestone has been completed.
func (m Milestone) Done() bool {
	return m.CompletedAt != nil
}

// Progress is the whole-number percentage of completed milestones.
func (p Project) Progress() int {
	if len(p.Milestones) == 0 {
		return 0
	}
	done := 0
	for _, m := range p.Milestones {
		if m.Done() {
			done++
		}
	}
	return done * 100 / len(p.Milestones)
}

// Repository abstracts project persistence. Save writes milestones only when
// it creates the project; later milestone changes go through AddMilestone and
// CompleteMilestone so concurrent edits do not overwrite each other.
type Repository interface {
	FindByID(ctx context.Context, id string) (Project, error)
	Save(ctx context.Context, project Project) (Project, error)
	AddMilestone(ctx context.Context, projectID string, milestone Milestone) (Project, error)
	// CompleteMilestone stamps at on the milestone unless it is already done.
	CompleteMilestone(ctx context.Context, projectID, milestoneID string, at time.Time) (Project, error)
	ListByClient(ctx context.Context, clientID string, offset, limit int) ([]Project, error)
	List(ctx context.Context, offset, limit int) ([]Project, error)
}

// NullRepository returns ErrNotImplemented for all operations.
type NullRepository struct{}

func (NullRepository) FindByID(context.Context, string) (Project, error) {
	return Project{}, ErrNotImplemented
}

func (NullRepository) Save(context.Context, Project) (Project, error) {
	return Project{}, ErrNotImplemented
}

func (NullRepository) AddMilestone(context.Context, string, Milestone) (Project, error) {
	return Project{}, ErrNotImplemented
}

func (NullRepository) CompleteMilestone(context.Context, string, string, time.Time) (Project, error) {
	return Project{}, ErrNotImplemented
}

func (NullRepository) ListByClient(context.Context, string, int, int) ([]Project, error) {
	return nil, ErrNotImplemented
}

func (NullRepository) List(context.Context, int, int) ([]Project, error) {
	return nil, ErrNotImplemented
}

// Service provides business logic around projects.
type Service interface {
	Get(ctx context.Context, id string) (Project, error)
	Create(ctx context.Context, input CreateInput) (Project, error)
	UpdateStatus(ctx context.Context, id string, status Status) (Project, error)
	AddMilestone(ctx context.Context, projectID string, input MilestoneInput) (Project, error)
	CompleteMilestone(ctx context.Context, projectID, milestoneID string) (Project, error)
	ListForClient(ctx context.Context, clientID string, offset, limit int) ([]Project, error)
	List(ctx context.Context, offset, limit int) ([]Project, error)
}

// CreateInput is used to create new projects.
type CreateInput struct {
	ClientID    string           `json:"client_id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Milestones  []MilestoneInput `json:"milestones"`
}

// MilestoneInput describes a milestone to add.
type MilestoneInput struct {
	Title   string     `json:"title"`
	DueDate *time.Time `json:"due_date"`
}

// NewService builds a project service.
func NewService(repo Repository) Service {
	return &service{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

type service struct {
	repo Repository
	now  func() time.Time
}

func (s *service) Get(ctx context.Context, id string) (Project, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) Create(ctx context.Context, input CreateInput) (Project, error) {
	project := Project{
		ClientID:    strings.TrimSpace(input.ClientID),
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
		Status:      StatusPlanning,
	}
	if project.ClientID == "" {
		return Project{}, fmt.Errorf("%w: client_id is required", ErrInvalidInput)
	}
	if project.Name == "" {
		return Project{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	for _, in := range input.Milestones {
		m, err := newMilestone(in, len(project.Milestones))
		if err != nil {
			return Project{}, err
		}
		project.Milestones = append(project.Milestones, m)
	}

	return s.repo.Save(ctx, project)
}

func (s *service) UpdateStatus(ctx context.Context, id string, status Status) (Project, error) {
	if !status.Valid() {
		return Project{}, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	project, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return Project{}, err
	}
	project.Status = status
	return s.repo.Save(ctx, project)
}

func (s *service) AddMilestone(ctx context.Context, projectID string, input MilestoneInput) (Project, error) {
	m, err := newMilestone(input, 0)
	if err != nil {
		return Project{}, err
	}
	return s.repo.AddMilestone(ctx, projectID, m)
}

func (s *service) CompleteMilestone(ctx context.Context, projectID, milestoneID string) (Project, error) {
	return s.repo.CompleteMilestone(ctx, projectID, milestoneID, s.now())
}

func (s *service) ListForClient(ctx context.Context, clientID string, offset, limit int) ([]Project, error) {
	return s.repo.ListByClient(ctx, clientID, offset, limit)
}

func (s *service) List(ctx context.Context, offset, limit int) ([]Project, error) {
	return s.repo.List(ctx, offset, limit)
}

func newMilestone(in MilestoneInput, order int) (Milestone, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return Milestone{}, fmt.Errorf("%w: milestone title is required", ErrInvalidInput)
	}
	m := Milestone{Title: title, SortOrder: order}
	if in.DueDate != nil {
		due := in.DueDate.UTC()
		m.DueDate = &due
	}
	return m, nil
}
