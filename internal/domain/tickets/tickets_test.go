package tickets_test

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/brightpixel/agencyportal/internal/domain/tickets"
	"github.com/brightpixel/agencyportal/internal/storage/memory"
)

func newService() tickets.Service {
	return tickets.NewService(memory.NewTicketRepository(), tickets.Options{BulkConcurrency: 2})
}

func submit(t *testing.T, svc tickets.Service, in tickets.SubmitInput) tickets.Ticket {
	t.Helper()
	tk, err := svc.Submit(context.Background(), in)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	return tk
}

func TestSubmitNormalizesAndDefaultsStatus(t *testing.T) {
	svc := newService()

	tk := submit(t, svc, tickets.SubmitInput{
		Name:    "  Dana  ",
		Email:   " Dana@Studio.io ",
		Answers: map[string]string{"service": "branding"},
	})
	if tk.ID == "" {
		t.Fatalf("expected ID to be set")
	}
	if tk.Status != tickets.StatusNew {
		t.Fatalf("expected status new, got %s", tk.Status)
	}
	if tk.Name != "Dana" || tk.Email != "dana@studio.io" {
		t.Fatalf("fields not normalized: %+v", tk)
	}
}

func TestSubmitValidation(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	cases := []struct {
		name  string
		input tickets.SubmitInput
		field string
	}{
		{"missing name", tickets.SubmitInput{Email: "a@b.co"}, "name"},
		{"missing contact", tickets.SubmitInput{Name: "A"}, "email"},
		{"bad email", tickets.SubmitInput{Name: "A", Email: "not-an-email"}, "email"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Submit(ctx, tc.input)
			var verr *tickets.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if verr.Field != tc.field {
				t.Fatalf("expected field %s, got %s", tc.field, verr.Field)
			}
		})
	}

	if _, err := svc.Submit(ctx, tickets.SubmitInput{Name: "Phone Only", Phone: "555-0100"}); err != nil {
		t.Fatalf("phone-only submission should pass: %v", err)
	}
}

func TestUpdateStatus(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	tk := submit(t, svc, tickets.SubmitInput{Name: "A", Email: "a@example.com"})

	updated, err := svc.UpdateStatus(ctx, tk.ID, tickets.StatusContacted)
	if err != nil {
		t.Fatalf("update status failed: %v", err)
	}
	if updated.Status != tickets.StatusContacted {
		t.Fatalf("expected contacted, got %s", updated.Status)
	}

	if _, err := svc.UpdateStatus(ctx, tk.ID, "lost"); !errors.Is(err, tickets.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	if _, err := svc.UpdateStatus(ctx, "missing", tickets.StatusContacted); !errors.Is(err, tickets.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListFiltersSearchesAndSorts(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	alpha := submit(t, svc, tickets.SubmitInput{Name: "Alpha", Email: "alpha@example.com", Company: "Acme Bakery"})
	submit(t, svc, tickets.SubmitInput{Name: "charlie", Email: "charlie@example.com", Message: "Need a new logo"})
	bravo := submit(t, svc, tickets.SubmitInput{Name: "Bravo", Email: "bravo@example.com", Company: "ACME Tools"})
	if _, err := svc.UpdateStatus(ctx, bravo.ID, tickets.StatusInProgress); err != nil {
		t.Fatalf("update: %v", err)
	}

	page, err := svc.List(ctx, tickets.ListQuery{Search: "acme", Sort: tickets.SortName, Asc: true})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if page.Total != 2 || len(page.Tickets) != 2 {
		t.Fatalf("expected 2 acme tickets, got total=%d len=%d", page.Total, len(page.Tickets))
	}
	if page.Tickets[0].ID != alpha.ID || page.Tickets[1].ID != bravo.ID {
		t.Fatalf("unexpected order: %s, %s", page.Tickets[0].Name, page.Tickets[1].Name)
	}

	page, err = svc.List(ctx, tickets.ListQuery{Status: tickets.StatusInProgress})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if page.Total != 1 || page.Tickets[0].ID != bravo.ID {
		t.Fatalf("status filter returned %+v", page.Tickets)
	}

	page, err = svc.List(ctx, tickets.ListQuery{Search: "LOGO"})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if page.Total != 1 || page.Tickets[0].Name != "charlie" {
		t.Fatalf("message search returned %+v", page.Tickets)
	}

	page, err = svc.List(ctx, tickets.ListQuery{Sort: tickets.SortName, Offset: 1, Limit: 1})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if page.Total != 3 || len(page.Tickets) != 1 || page.Tickets[0].ID != bravo.ID {
		t.Fatalf("descending page returned %+v", page.Tickets)
	}

	if _, err := svc.List(ctx, tickets.ListQuery{Sort: "email"}); !errors.Is(err, tickets.ErrInvalidSort) {
		t.Fatalf("expected ErrInvalidSort, got %v", err)
	}
}

func TestCountByStatusIncludesEveryStatus(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	submit(t, svc, tickets.SubmitInput{Name: "A", Email: "a@example.com"})
	submit(t, svc, tickets.SubmitInput{Name: "B", Email: "b@example.com"})

	counts, err := svc.CountByStatus(ctx)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if counts[tickets.StatusNew] != 2 {
		t.Fatalf("expected 2 new, got %d", counts[tickets.StatusNew])
	}
	if len(counts) != len(tickets.Statuses) {
		t.Fatalf("expected every status key, got %v", counts)
	}
}

func TestBulkReportsPartialFailure(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	a := submit(t, svc, tickets.SubmitInput{Name: "A", Email: "a@example.com"})
	b := submit(t, svc, tickets.SubmitInput{Name: "B", Email: "b@example.com"})

	res, err := svc.Bulk(ctx, tickets.BulkInput{
		IDs:    []string{a.ID, "missing", b.ID, a.ID},
		Action: tickets.BulkSetStatus,
		Status: tickets.StatusArchived,
	})
	if err != nil {
		t.Fatalf("bulk failed: %v", err)
	}
	if len(res.Succeeded) != 2 {
		t.Fatalf("expected 2 successes, got %v", res.Succeeded)
	}
	if len(res.Failed) != 1 || res.Failed[0].ID != "missing" {
		t.Fatalf("expected missing to fail, got %+v", res.Failed)
	}

	got, _ := svc.Get(ctx, b.ID)
	if got.Status != tickets.StatusArchived {
		t.Fatalf("expected archived, got %s", got.Status)
	}

	res, err = svc.Bulk(ctx, tickets.BulkInput{IDs: []string{a.ID, b.ID}, Action: tickets.BulkDelete})
	if err != nil {
		t.Fatalf("bulk delete failed: %v", err)
	}
	if len(res.Succeeded) != 2 || len(res.Failed) != 0 {
		t.Fatalf("unexpected delete result: %+v", res)
	}
	if _, err := svc.Get(ctx, a.ID); !errors.Is(err, tickets.ErrNotFound) {
		t.Fatalf("expected deleted ticket, got %v", err)
	}
}

func TestBulkRejectsBadInput(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	if _, err := svc.Bulk(ctx, tickets.BulkInput{Action: tickets.BulkDelete}); !errors.Is(err, tickets.ErrEmptyBulk) {
		t.Fatalf("expected ErrEmptyBulk, got %v", err)
	}
	if _, err := svc.Bulk(ctx, tickets.BulkInput{IDs: []string{"x"}, Action: "merge"}); !errors.Is(err, tickets.ErrInvalidBulkAction) {
		t.Fatalf("expected ErrInvalidBulkAction, got %v", err)
	}
	if _, err := svc.Bulk(ctx, tickets.BulkInput{IDs: []string{"x"}, Action: tickets.BulkSetStatus, Status: "lost"}); !errors.Is(err, tickets.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	if _, err := svc.Bulk(ctx, tickets.BulkInput{IDs: []string{" "}, Action: tickets.BulkDelete}); err == nil {
		t.Fatalf("expected error for blank id")
	}
}

func TestApplyBreaksTimestampTiesByIDInBothDirections(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	all := []tickets.Ticket{
		{ID: "b", CreatedAt: at},
		{ID: "c", CreatedAt: at},
		{ID: "a", CreatedAt: at},
	}

	ids := func(list []tickets.Ticket) []string {
		out := make([]string, 0, len(list))
		for _, tk := range list {
			out = append(out, tk.ID)
		}
		return out
	}

	asc, _ := tickets.ListQuery{Sort: tickets.SortCreatedAt, Asc: true}.Apply(all)
	if got := ids(asc); !slices.Equal(got, []string{"a", "b", "c"}) {
		t.Fatalf("ascending order = %v", got)
	}
	desc, _ := tickets.ListQuery{Sort: tickets.SortCreatedAt}.Apply(all)
	if got := ids(desc); !slices.Equal(got, []string{"c", "b", "a"}) {
		t.Fatalf("descending order = %v", got)
	}

	var paged []string
	for offset := range 3 {
		page, _ := tickets.ListQuery{Sort: tickets.SortCreatedAt, Offset: offset, Limit: 1}.Apply(all)
		paged = append(paged, ids(page)...)
	}
	if !slices.Equal(paged, []string{"c", "b", "a"}) {
		t.Fatalf("paging repeated or skipped rows: %v", paged)
	}
}
