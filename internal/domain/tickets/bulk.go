package tickets

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

var (
	ErrInvalidBulkAction = errors.New("invalid bulk action")
	ErrEmptyBulk         = errors.New("bulk action requires at least one ticket id")
)

// BulkAction is the operation applied to every selected ticket.
type BulkAction string

const (
	BulkSetStatus BulkAction = "set_status"
	BulkDelete    BulkAction = "delete"
)

// BulkInput selects tickets and the action applied to each of them.
type BulkInput struct {
	IDs    []string   `json:"ids"`
	Action BulkAction `json:"action"`
	Status Status     `json:"status,omitempty"`
}

// BulkFailure records why a single row was not changed. Error is safe to
// show to clients; Cause keeps the underlying error for logs.
type BulkFailure struct {
	ID    string `json:"id"`
	Error string `json:"error"`
	Cause error  `json:"-"`
}

// BulkResult reports per-row outcomes. Rows are independent: a failure on
// one ticket never rolls back another.
type BulkResult struct {
	Action    BulkAction    `json:"action"`
	Succeeded []string      `json:"succeeded"`
	Failed    []BulkFailure `json:"failed"`
}

func (in BulkInput) validate() ([]string, error) {
	switch in.Action {
	case BulkSetStatus:
		if !in.Status.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, in.Status)
		}
	case BulkDelete:
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidBulkAction, in.Action)
	}

	seen := make(map[string]struct{}, len(in.IDs))
	ids := make([]string, 0, len(in.IDs))
	for _, raw := range in.IDs {
		id := strings.TrimSpace(raw)
		if id == "" {
			return nil, fmt.Errorf("%w: ticket ids must not be empty", ErrEmptyBulk)
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, ErrEmptyBulk
	}
	return ids, nil
}

func (s *service) Bulk(ctx context.Context, input BulkInput) (BulkResult, error) {
	ids, err := input.validate()
	if err != nil {
		return BulkResult{}, err
	}

	var (
		mu     sync.Mutex
		result = BulkResult{Action: input.Action, Succeeded: []string{}, Failed: []BulkFailure{}}
	)

	var g errgroup.Group
	g.SetLimit(s.bulkConcurrency)
	for _, id := range ids {
		g.Go(func() error {
			var opErr error
			if err := ctx.Err(); err != nil {
				opErr = err
			} else {
				switch input.Action {
				case BulkSetStatus:
					_, opErr = s.UpdateStatus(ctx, id, input.Status)
				case BulkDelete:
					opErr = s.repo.Delete(ctx, id)
				}
			}

			mu.Lock()
			defer mu.Unlock()
			if opErr != nil {
				result.Failed = append(result.Failed, BulkFailure{ID: id, Error: failureMessage(opErr), Cause: opErr})
				return nil
			}
			result.Succeeded = append(result.Succeeded, id)
			return nil
		})
	}
	_ = g.Wait()

	sort.Strings(result.Succeeded)
	sort.Slice(result.Failed, func(i, j int) bool { return result.Failed[i].ID < result.Failed[j].ID })
	return result, nil
}

func failureMessage(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return ErrNotFound.Error()
	case errors.Is(err, ErrInvalidStatus):
		return ErrInvalidStatus.Error()
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "internal error"
	}
}
