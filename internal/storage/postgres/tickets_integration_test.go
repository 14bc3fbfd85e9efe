//go:build integration

package postgres_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/brightpixel/agencyportal/internal/domain/tickets"
	pgstorage "github.com/brightpixel/agencyportal/internal/storage/postgres"
)

func TestTicketRepositoryIntegration(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	svc := tickets.NewService(pgstorage.NewTicketRepository(db), tickets.Options{BulkConcurrency: 2})

	a, err := svc.Submit(ctx, tickets.SubmitInput{Name: "Ana", Email: "ana@example.com", Company: "Acme", Answers: map[string]string{"service": "seo"}})
	require.NoError(t, err)
	b, err := svc.Submit(ctx, tickets.SubmitInput{Name: "Ben", Phone: "555-0100", Message: "acme referral"})
	require.NoError(t, err)

	fetched, err := svc.Get(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, "seo", fetched.Answers["service"])

	page, err := svc.List(ctx, tickets.ListQuery{Search: "ACME", Sort: tickets.SortName, Asc: true})
	require.NoError(t, err)
	require.Equal(t, 2, page.Total)
	require.Equal(t, a.ID, page.Tickets[0].ID)

	res, err := svc.Bulk(ctx, tickets.BulkInput{IDs: []string{a.ID, b.ID}, Action: tickets.BulkSetStatus, Status: tickets.StatusContacted})
	require.NoError(t, err)
	require.Len(t, res.Succeeded, 2)

	counts, err := svc.CountByStatus(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, counts[tickets.StatusContacted])

	require.NoError(t, svc.Delete(ctx, a.ID))
	require.ErrorIs(t, svc.Delete(ctx, a.ID), tickets.ErrNotFound)

	_, err = svc.Get(ctx, "abc")
	require.ErrorIs(t, err, tickets.ErrNotFound)
	require.ErrorIs(t, svc.Delete(ctx, "abc"), tickets.ErrNotFound)
	res, err = svc.Bulk(ctx, tickets.BulkInput{IDs: []string{"abc", b.ID}, Action: tickets.BulkDelete})
	require.NoError(t, err)
	require.Equal(t, []string{b.ID}, res.Succeeded)
	require.Len(t, res.Failed, 1)
	require.Equal(t, "ticket not found", res.Failed[0].Error)
}
