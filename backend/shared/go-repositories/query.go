package repositories

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v4"
)

// whereClause accumulates AND-ed conditions. Each "?" in a condition is
// bound to the single argument passed with it.
type whereClause struct {
	parts []string
	args  []any
}

func (w *whereClause) add(cond string, arg any) {
	w.args = append(w.args, arg)
	w.parts = append(w.parts, strings.ReplaceAll(cond, "?", "$"+strconv.Itoa(len(w.args))))
}

func (w *whereClause) addRaw(cond string) {
	w.parts = append(w.parts, cond)
}

func (w *whereClause) String() string {
	if len(w.parts) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.parts, " AND ")
}

// page returns the LIMIT/OFFSET suffix and the full argument list.
func (w *whereClause) page(limit, offset int) (string, []any) {
	if limit <= 0 {
		return "", w.args
	}
	n := len(w.args)
	args := append(append([]any{}, w.args...), limit, offset)
	return " LIMIT $" + strconv.Itoa(n+1) + " OFFSET $" + strconv.Itoa(n+2), args
}

func (w *whereClause) count(ctx context.Context, db DB, table string) (int, error) {
	var total int
	err := db.QueryRow(ctx, "SELECT COUNT(*) FROM "+table+w.String(), w.args...).Scan(&total)
	return total, err
}

func collect[T any](rows pgx.Rows, scan func(pgx.Row) (*T, error)) ([]*T, error) {
	defer rows.Close()
	out := []*T{}
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func jsonArg(raw *json.RawMessage) any {
	if raw == nil || len(*raw) == 0 {
		return nil
	}
	return []byte(*raw)
}

func rawJSON(b []byte) *json.RawMessage {
	if len(b) == 0 {
		return nil
	}
	m := json.RawMessage(b)
	return &m
}
