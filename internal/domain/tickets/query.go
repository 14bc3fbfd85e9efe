package tickets

import (
	"fmt"
	"sort"
	"strings"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

// SortField names a column the admin queue can be ordered by.
type SortField string

const (
	SortCreatedAt SortField = "created_at"
	SortUpdatedAt SortField = "updated_at"
	SortName      SortField = "name"
	SortStatus    SortField = "status"
)

// ListQuery filters and orders the admin ticket queue.
type ListQuery struct {
	Status Status
	Search string
	Sort   SortField
	Asc    bool
	Offset int
	Limit  int
}

// Page is one slice of the queue together with the matching total.
type Page struct {
	Tickets []Ticket `json:"data"`
	Total   int      `json:"total"`
	Offset  int      `json:"offset"`
	Limit   int      `json:"limit"`
}

// Normalize applies defaults and rejects unknown filters.
func (q ListQuery) Normalize() (ListQuery, error) {
	q.Search = strings.TrimSpace(q.Search)
	if q.Status != "" && !q.Status.Valid() {
		return q, fmt.Errorf("%w: %q", ErrInvalidStatus, q.Status)
	}
	switch q.Sort {
	case "":
		q.Sort = SortCreatedAt
	case SortCreatedAt, SortUpdatedAt, SortName, SortStatus:
	default:
		return q, fmt.Errorf("%w: %q", ErrInvalidSort, q.Sort)
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	if q.Limit <= 0 {
		q.Limit = DefaultListLimit
	}
	if q.Limit > MaxListLimit {
		q.Limit = MaxListLimit
	}
	return q, nil
}

// Matches reports whether t passes the status and search filters.
func (q ListQuery) Matches(t Ticket) bool {
	if q.Status != "" && t.Status != q.Status {
		return false
	}
	if q.Search == "" {
		return true
	}
	needle := strings.ToLower(q.Search)
	for _, field := range []string{t.Name, t.Email, t.Company, t.Message} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

// Apply filters, sorts and pages an in-memory ticket list. It returns the
// page and the number of tickets that matched before paging.
func (q ListQuery) Apply(all []Ticket) ([]Ticket, int) {
	matched := make([]Ticket, 0, len(all))
	for _, t := range all {
		if q.Matches(t) {
			matched = append(matched, t)
		}
	}

	less := q.less()
	sort.SliceStable(matched, func(i, j int) bool {
		if q.Asc {
			return less(matched[i], matched[j])
		}
		return less(matched[j], matched[i])
	})

	total := len(matched)
	if q.Offset >= total {
		return []Ticket{}, total
	}
	end := total
	if q.Limit > 0 && q.Offset+q.Limit < end {
		end = q.Offset + q.Limit
	}
	return matched[q.Offset:end], total
}

// less orders by the sort field, then by id so that ties have a fixed order
// in either direction.
func (q ListQuery) less() func(a, b Ticket) bool {
	key := q.compare()
	return func(a, b Ticket) bool {
		if c := key(a, b); c != 0 {
			return c < 0
		}
		return a.ID < b.ID
	}
}

func (q ListQuery) compare() func(a, b Ticket) int {
	switch q.Sort {
	case SortName:
		return func(a, b Ticket) int {
			if c := strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
				return c
			}
			return a.CreatedAt.Compare(b.CreatedAt)
		}
	case SortStatus:
		return func(a, b Ticket) int {
			if c := statusRank(a.Status) - statusRank(b.Status); c != 0 {
				return c
			}
			return a.CreatedAt.Compare(b.CreatedAt)
		}
	case SortUpdatedAt:
		return func(a, b Ticket) int { return a.UpdatedAt.Compare(b.UpdatedAt) }
	default:
		return func(a, b Ticket) int { return a.CreatedAt.Compare(b.CreatedAt) }
	}
}

func statusRank(s Status) int {
	for i, known := range Statuses {
		if s == known {
			return i
		}
	}
	return len(Statuses)
}
