package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/brightpixel/agencyportal/internal/domain/projects"
)

// ProjectRepository is an in-memory implementation of projects.Repository.
type ProjectRepository struct {
	mu       sync.RWMutex
	projects map[string]projects.Project
	seq      map[string]int
	next     int
}

// NewProjectRepository creates an in-memory project repo.
func NewProjectRepository() *ProjectRepository {
	return &ProjectRepository{
		projects: make(map[string]projects.Project),
		seq:      make(map[string]int),
	}
}

func (r *ProjectRepository) FindByID(_ context.Context, id string) (projects.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.projects[id]
	if !ok {
		return projects.Project{}, projects.ErrNotFound
	}
	return cloneProject(p), nil
}

func (r *ProjectRepository) Save(_ context.Context, project projects.Project) (projects.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	if project.ID == "" {
		project.ID = newID()
		project.CreatedAt = now
		r.next++
		r.seq[project.ID] = r.next
		for idx := range project.Milestones {
			project.Milestones[idx].ID = newID()
			project.Milestones[idx].ProjectID = project.ID
			project.Milestones[idx].SortOrder = idx
		}
	} else if existing, ok := r.projects[project.ID]; ok {
		project.CreatedAt = existing.CreatedAt
		project.Milestones = existing.Milestones
	} else {
		return projects.Project{}, projects.ErrNotFound
	}
	project.UpdatedAt = now

	r.projects[project.ID] = cloneProject(project)
	return cloneProject(project), nil
}

func (r *ProjectRepository) AddMilestone(_ context.Context, projectID string, m projects.Milestone) (projects.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.projects[projectID]
	if !ok {
		return projects.Project{}, projects.ErrNotFound
	}
	p = cloneProject(p)
	m.ID = newID()
	m.ProjectID = projectID
	m.SortOrder = len(p.Milestones)
	p.Milestones = append(p.Milestones, m)
	p.UpdatedAt = time.Now().UTC()

	r.projects[projectID] = p
	return cloneProject(p), nil
}

func (r *ProjectRepository) CompleteMilestone(_ context.Context, projectID, milestoneID string, at time.Time) (projects.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.projects[projectID]
	if !ok {
		return projects.Project{}, projects.ErrNotFound
	}
	p = cloneProject(p)
	for i := range p.Milestones {
		if p.Milestones[i].ID != milestoneID {
			continue
		}
		if !p.Milestones[i].Done() {
			done := at.UTC()
			p.Milestones[i].CompletedAt = &done
			p.UpdatedAt = time.Now().UTC()
			r.projects[projectID] = p
		}
		return cloneProject(p), nil
	}
	return projects.Project{}, projects.ErrMilestoneNotFound
}

func (r *ProjectRepository) ListByClient(_ context.Context, clientID string, offset, limit int) ([]projects.Project, error) {
	return r.list(func(p projects.Project) bool { return p.ClientID == clientID }, offset, limit), nil
}

func (r *ProjectRepository) List(_ context.Context, offset, limit int) ([]projects.Project, error) {
	return r.list(func(projects.Project) bool { return true }, offset, limit), nil
}

// list returns matching projects, newest first.
func (r *ProjectRepository) list(keep func(projects.Project) bool, offset, limit int) []projects.Project {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var list []projects.Project
	for _, p := range r.projects {
		if keep(p) {
			list = append(list, cloneProject(p))
		}
	}
	sort.Slice(list, func(i, j int) bool {
		return r.seq[list[i].ID] > r.seq[list[j].ID]
	})
	return paginate(list, offset, limit)
}

func cloneProject(p projects.Project) projects.Project {
	if p.Milestones != nil {
		ms := make([]projects.Milestone, len(p.Milestones))
		copy(ms, p.Milestones)
		p.Milestones = ms
	}
	return p
}

var _ projects.Repository = (*ProjectRepository)(nil)
