package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/brightpixel/agencyportal/internal/domain/tickets"
)

// TicketRepository persists intake tickets.
type TicketRepository struct {
	db *sql.DB
}

// NewTicketRepository constructs a repository using a pooled DB handle.
func NewTicketRepository(db *sql.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

const ticketColumns = `id, name, email, phone, company, message, answers, source, status, created_at, updated_at`

func scanTicket(row interface{ Scan(...any) error }) (tickets.Ticket, error) {
	var (
		t       tickets.Ticket
		answers []byte
	)
	if err := row.Scan(
		&t.ID,
		&t.Name,
		&t.Email,
		&t.Phone,
		&t.Company,
		&t.Message,
		&answers,
		&t.Source,
		&t.Status,
		&t.CreatedAt,
		&t.UpdatedAt,
	); err != nil {
		return tickets.Ticket{}, err
	}
	t.Answers = map[string]string{}
	if len(answers) > 0 {
		if err := json.Unmarshal(answers, &t.Answers); err != nil {
			return tickets.Ticket{}, fmt.Errorf("decode ticket answers: %w", err)
		}
	}
	return t, nil
}

// FindByID fetches a ticket by primary key.
func (r *TicketRepository) FindByID(ctx context.Context, id string) (tickets.Ticket, error) {
	t, err := scanTicket(r.db.QueryRowContext(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id = $1`, id))
	if err != nil {
		if isMissing(err) {
			return tickets.Ticket{}, tickets.ErrNotFound
		}
		return tickets.Ticket{}, fmt.Errorf("find ticket: %w", err)
	}
	return t, nil
}

// Save inserts or updates a ticket.
func (r *TicketRepository) Save(ctx context.Context, t tickets.Ticket) (tickets.Ticket, error) {
	if t.Answers == nil {
		t.Answers = map[string]string{}
	}
	answers, err := json.Marshal(t.Answers)
	if err != nil {
		return tickets.Ticket{}, fmt.Errorf("encode ticket answers: %w", err)
	}

	now := time.Now().UTC()
	if t.ID == "" {
		const insert = `
            INSERT INTO tickets (name, email, phone, company, message, answers, source, status, created_at, updated_at)
            VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
            RETURNING id
        `
		if err := r.db.QueryRowContext(ctx, insert,
			t.Name,
			t.Email,
			t.Phone,
			t.Company,
			t.Message,
			string(answers),
			t.Source,
			t.Status,
			now,
			now,
		).Scan(&t.ID); err != nil {
			return tickets.Ticket{}, fmt.Errorf("insert ticket: %w", err)
		}
		t.CreatedAt = now
		t.UpdatedAt = now
		return t, nil
	}

	const update = `
        UPDATE tickets
           SET name = $2,
               email = $3,
               phone = $4,
               company = $5,
               message = $6,
               answers = $7,
               source = $8,
               status = $9,
               updated_at = $10
         WHERE id = $1
        RETURNING created_at
    `
	if err := r.db.QueryRowContext(ctx, update,
		t.ID,
		t.Name,
		t.Email,
		t.Phone,
		t.Company,
		t.Message,
		string(answers),
		t.Source,
		t.Status,
		now,
	).Scan(&t.CreatedAt); err != nil {
		if isMissing(err) {
			return tickets.Ticket{}, tickets.ErrNotFound
		}
		return tickets.Ticket{}, fmt.Errorf("update ticket: %w", err)
	}
	t.UpdatedAt = now
	return t, nil
}

// Delete removes a ticket.
func (r *TicketRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tickets WHERE id = $1`, id)
	if err != nil {
		if isInvalidText(err) {
			return tickets.ErrNotFound
		}
		return fmt.Errorf("delete ticket: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete ticket rows affected: %w", err)
	}
	if n == 0 {
		return tickets.ErrNotFound
	}
	return nil
}

// List returns one page of the admin queue and the total match count.
func (r *TicketRepository) List(ctx context.Context, q tickets.ListQuery) ([]tickets.Ticket, int, error) {
	where, args := ticketFilter(q)

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM tickets`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count tickets: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM tickets%s ORDER BY %s OFFSET $%d LIMIT $%d`,
		ticketColumns, where, ticketOrder(q), len(args)+1, len(args)+2)
	rows, err := r.db.QueryContext(ctx, query, append(args, q.Offset, q.Limit)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list tickets: %w", err)
	}
	defer rows.Close()

	result := make([]tickets.Ticket, 0)
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan ticket: %w", err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows err: %w", err)
	}
	return result, total, nil
}

// CountByStatus groups tickets by status.
func (r *TicketRepository) CountByStatus(ctx context.Context) (map[tickets.Status]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, count(*) FROM tickets GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count tickets by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[tickets.Status]int)
	for rows.Next() {
		var (
			status tickets.Status
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		counts[status] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return counts, nil
}

func ticketFilter(q tickets.ListQuery) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	if q.Status != "" {
		args = append(args, q.Status)
		clauses = append(clauses, fmt.Sprintf("status = $%d", len(args)))
	}
	if q.Search != "" {
		args = append(args, "%"+escapeLike(q.Search)+"%")
		n := len(args)
		clauses = append(clauses, fmt.Sprintf(
			"(name ILIKE $%[1]d OR email ILIKE $%[1]d OR company ILIKE $%[1]d OR message ILIKE $%[1]d)", n))
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// ticketOrder ends every ordering with id so offset paging is stable when
// timestamps collide.
func ticketOrder(q tickets.ListQuery) string {
	dir := "DESC"
	if q.Asc {
		dir = "ASC"
	}
	var b strings.Builder
	switch q.Sort {
	case tickets.SortName:
		fmt.Fprintf(&b, "lower(name) %s, created_at %s", dir, dir)
	case tickets.SortStatus:
		b.WriteString("CASE status")
		for i, s := range tickets.Statuses {
			fmt.Fprintf(&b, " WHEN '%s' THEN %d", s, i)
		}
		fmt.Fprintf(&b, " ELSE %d END %s, created_at %s", len(tickets.Statuses), dir, dir)
	case tickets.SortUpdatedAt:
		b.WriteString("updated_at " + dir)
	default:
		b.WriteString("created_at " + dir)
	}
	b.WriteString(", id " + dir)
	return b.String()
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

var _ tickets.Repository = (*TicketRepository)(nil)
