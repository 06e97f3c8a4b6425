package repository

import (
	"strings"

	"github.com/connectpp/student-network/internal/model"
)

// setClause renders "a = ?, b = ?" for the assignments and returns the
// matching arguments. Column names come from the model patches, never
// from request input.
func setClause(assigns []model.Assignment) (string, []any) {
	cols := make([]string, 0, len(assigns))
	args := make([]any, 0, len(assigns))
	for _, a := range assigns {
		cols = append(cols, a.Column+" = ?")
		args = append(args, a.Value)
	}
	return strings.Join(cols, ", "), args
}

// upsertQuery renders an INSERT .. ON DUPLICATE KEY UPDATE statement that
// writes the key columns plus the assignments. Only the assignments are
// overwritten when the row already exists; with no assignments the
// statement just makes sure the row is there.
func upsertQuery(table string, keys []model.Assignment, assigns []model.Assignment) (string, []any) {
	all := append(append([]model.Assignment{}, keys...), assigns...)
	cols := make([]string, 0, len(all))
	marks := make([]string, 0, len(all))
	args := make([]any, 0, len(all))
	for _, a := range all {
		cols = append(cols, a.Column)
		marks = append(marks, "?")
		args = append(args, a.Value)
	}

	updates := make([]string, 0, len(assigns))
	for _, a := range assigns {
		updates = append(updates, a.Column+" = VALUES("+a.Column+")")
	}
	if len(updates) == 0 {
		updates = append(updates, keys[0].Column+" = "+keys[0].Column)
	}

	q := "INSERT INTO " + table + " (" + strings.Join(cols, ", ") + ") VALUES (" +
		strings.Join(marks, ", ") + ") ON DUPLICATE KEY UPDATE " + strings.Join(updates, ", ")
	return q, args
}
