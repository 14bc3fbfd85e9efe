package postgres

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/brightpixel/agencyportal/internal/domain/tickets"
)

func TestTicketFilter(t *testing.T) {
	where, args := ticketFilter(tickets.ListQuery{})
	require.Empty(t, where)
	require.Empty(t, args)

	where, args = ticketFilter(tickets.ListQuery{Status: tickets.StatusNew, Search: "50%_off"})
	require.Equal(t, " WHERE status = $1 AND (name ILIKE $2 OR email ILIKE $2 OR company ILIKE $2 OR message ILIKE $2)", where)
	require.Equal(t, []any{tickets.StatusNew, `%50\%\_off%`}, args)
}

func TestTicketOrder(t *testing.T) {
	require.Equal(t, "created_at DESC, id DESC", ticketOrder(tickets.ListQuery{}))
	require.Equal(t, "updated_at ASC, id ASC", ticketOrder(tickets.ListQuery{Sort: tickets.SortUpdatedAt, Asc: true}))
	require.Equal(t, "lower(name) ASC, created_at ASC, id ASC", ticketOrder(tickets.ListQuery{Sort: tickets.SortName, Asc: true}))
	require.True(t, strings.HasSuffix(ticketOrder(tickets.ListQuery{Sort: tickets.SortStatus}), "created_at DESC, id DESC"))
	require.Contains(t, ticketOrder(tickets.ListQuery{Sort: tickets.SortStatus}), "WHEN 'in_progress' THEN 2")
}
