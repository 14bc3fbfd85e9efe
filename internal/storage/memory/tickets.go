package memory

import (
	"context"
	"sync"
	"time"

	"github.com/brightpixel/agencyportal/internal/domain/tickets"
)

// TicketRepository is an in-memory implementation of tickets.Repository.
type TicketRepository struct {
	mu      sync.RWMutex
	tickets map[string]tickets.Ticket
}

// NewTicketRepository creates an in-memory ticket repo.
func NewTicketRepository() *TicketRepository {
	return &TicketRepository{
		tickets: make(map[string]tickets.Ticket),
	}
}

func (r *TicketRepository) FindByID(_ context.Context, id string) (tickets.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tickets[id]
	if !ok {
		return tickets.Ticket{}, tickets.ErrNotFound
	}
	return cloneTicket(t), nil
}

func (r *TicketRepository) Save(_ context.Context, ticket tickets.Ticket) (tickets.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	if ticket.ID == "" {
		ticket.ID = newID()
		ticket.CreatedAt = now
	} else {
		existing, ok := r.tickets[ticket.ID]
		if !ok {
			return tickets.Ticket{}, tickets.ErrNotFound
		}
		if ticket.CreatedAt.IsZero() {
			ticket.CreatedAt = existing.CreatedAt
		}
	}
	ticket.UpdatedAt = now
	if ticket.Answers == nil {
		ticket.Answers = map[string]string{}
	}

	r.tickets[ticket.ID] = cloneTicket(ticket)
	return ticket, nil
}

func (r *TicketRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tickets[id]; !ok {
		return tickets.ErrNotFound
	}
	delete(r.tickets, id)
	return nil
}

func (r *TicketRepository) List(_ context.Context, query tickets.ListQuery) ([]tickets.Ticket, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]tickets.Ticket, 0, len(r.tickets))
	for _, t := range r.tickets {
		all = append(all, cloneTicket(t))
	}

	page, total := query.Apply(all)
	return page, total, nil
}

func (r *TicketRepository) CountByStatus(_ context.Context) (map[tickets.Status]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[tickets.Status]int)
	for _, t := range r.tickets {
		counts[t.Status]++
	}
	return counts, nil
}

func cloneTicket(t tickets.Ticket) tickets.Ticket {
	answers := make(map[string]string, len(t.Answers))
	for k, v := range t.Answers {
		answers[k] = v
	}
	t.Answers = answers
	return t
}

var _ tickets.Repository = (*TicketRepository)(nil)
