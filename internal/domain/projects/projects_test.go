package projects_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/brightpixel/agencyportal/internal/domain/projects"
	"github.com/brightpixel/agencyportal/internal/storage/memory"
)

func TestProjectCreateWithMilestones(t *testing.T) {
	svc := projects.NewService(memory.NewProjectRepository())
	due := time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)

	p, err := svc.Create(context.Background(), projects.CreateInput{
		ClientID: "client-1",
		Name:     "Website Refresh",
		Milestones: []projects.MilestoneInput{
			{Title: "Discovery"},
			{Title: "Design", DueDate: &due},
		},
	})
	if err != nil {
		t.Fatalf("create project failed: %v", err)
	}
	if p.Status != projects.StatusPlanning {
		t.Fatalf("expected planning status, got %s", p.Status)
	}
	if len(p.Milestones) != 2 || p.Milestones[1].SortOrder != 1 {
		t.Fatalf("unexpected milestones: %+v", p.Milestones)
	}
	if p.Milestones[0].ID == "" || p.Milestones[0].ProjectID != p.ID {
		t.Fatalf("milestone ids not assigned: %+v", p.Milestones[0])
	}

	if _, err := svc.Create(context.Background(), projects.CreateInput{Name: "Orphan"}); err == nil {
		t.Fatalf("expected error without client")
	}
}

func TestCompleteMilestoneUpdatesProgress(t *testing.T) {
	svc := projects.NewService(memory.NewProjectRepository())
	ctx := context.Background()

	p, err := svc.Create(ctx, projects.CreateInput{
		ClientID:   "client-1",
		Name:       "Brand Kit",
		Milestones: []projects.MilestoneInput{{Title: "Moodboard"}, {Title: "Logo"}, {Title: "Guidelines"}},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if p.Progress() != 0 {
		t.Fatalf("expected 0 progress, got %d", p.Progress())
	}

	p, err = svc.CompleteMilestone(ctx, p.ID, p.Milestones[0].ID)
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if p.Progress() != 33 {
		t.Fatalf("expected 33 progress, got %d", p.Progress())
	}
	first := *p.Milestones[0].CompletedAt

	p, err = svc.CompleteMilestone(ctx, p.ID, p.Milestones[0].ID)
	if err != nil {
		t.Fatalf("second complete failed: %v", err)
	}
	if !p.Milestones[0].CompletedAt.Equal(first) {
		t.Fatalf("completion timestamp changed")
	}

	if _, err := svc.CompleteMilestone(ctx, p.ID, "nope"); !errors.Is(err, projects.ErrMilestoneNotFound) {
		t.Fatalf("expected ErrMilestoneNotFound, got %v", err)
	}
}

func TestAddMilestoneAndStatus(t *testing.T) {
	svc := projects.NewService(memory.NewProjectRepository())
	ctx := context.Background()

	p, _ := svc.Create(ctx, projects.CreateInput{ClientID: "c", Name: "SEO"})
	p, err := svc.AddMilestone(ctx, p.ID, projects.MilestoneInput{Title: "Audit"})
	if err != nil {
		t.Fatalf("add milestone failed: %v", err)
	}
	if len(p.Milestones) != 1 {
		t.Fatalf("expected 1 milestone")
	}

	p, err = svc.UpdateStatus(ctx, p.ID, projects.StatusActive)
	if err != nil {
		t.Fatalf("update status failed: %v", err)
	}
	if p.Status != projects.StatusActive {
		t.Fatalf("expected active, got %s", p.Status)
	}
	if _, err := svc.UpdateStatus(ctx, p.ID, "paused"); !errors.Is(err, projects.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestListForClient(t *testing.T) {
	svc := projects.NewService(memory.NewProjectRepository())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := svc.Create(ctx, projects.CreateInput{ClientID: "mine", Name: "P"}); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}
	if _, err := svc.Create(ctx, projects.CreateInput{ClientID: "other", Name: "P"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	list, err := svc.ListForClient(ctx, "mine", 0, 2)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 projects, got %d", len(list))
	}
	all, err := svc.List(ctx, 0, 0)
	if err != nil {
		t.Fatalf("list all failed: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("expected 4 projects, got %d", len(all))
	}
}

func TestCreateRejectsBlankMilestoneTitle(t *testing.T) {
	svc := projects.NewService(memory.NewProjectRepository())

	_, err := svc.Create(context.Background(), projects.CreateInput{
		ClientID:   "client-1",
		Name:       "Brand Kit",
		Milestones: []projects.MilestoneInput{{Title: " "}},
	})
	if !errors.Is(err, projects.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

// slowProjectRepo delays reads so concurrent callers overlap.
type slowProjectRepo struct {
	*memory.ProjectRepository
}

func (r slowProjectRepo) FindByID(ctx context.Context, id string) (projects.Project, error) {
	time.Sleep(2 * time.Millisecond)
	return r.ProjectRepository.FindByID(ctx, id)
}

func TestConcurrentMilestoneChangesAreKept(t *testing.T) {
	svc := projects.NewService(slowProjectRepo{memory.NewProjectRepository()})
	ctx := context.Background()

	p, err := svc.Create(ctx, projects.CreateInput{
		ClientID:   "client-1",
		Name:       "Campaign",
		Milestones: []projects.MilestoneInput{{Title: "Brief"}, {Title: "Draft"}},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.AddMilestone(ctx, p.ID, projects.MilestoneInput{Title: "Round"}); err != nil {
				t.Errorf("add failed: %v", err)
			}
		}()
	}
	for _, m := range p.Milestones {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.CompleteMilestone(ctx, p.ID, m.ID); err != nil {
				t.Errorf("complete failed: %v", err)
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		if _, err := svc.UpdateStatus(ctx, p.ID, projects.StatusActive); err != nil {
			t.Errorf("status failed: %v", err)
		}
	}()
	wg.Wait()

	got, err := svc.Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(got.Milestones) != 22 {
		t.Fatalf("expected 22 milestones, got %d", len(got.Milestones))
	}
	if !got.Milestones[0].Done() || !got.Milestones[1].Done() {
		t.Fatalf("completions lost: %+v", got.Milestones[:2])
	}
	for i, m := range got.Milestones {
		if m.SortOrder != i {
			t.Fatalf("milestone %d has sort order %d", i, m.SortOrder)
		}
	}
	if got.Status != projects.StatusActive {
		t.Fatalf("expected active status, got %s", got.Status)
	}
}
