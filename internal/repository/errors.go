// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// services and handlers to distinguish between different failure
// scenarios without inspecting driver errors. ErrDuplicate, for example,
// tells the sign-up flow that another request registered the same regno
// first, while ErrNotFound covers both a missing row and a row owned by
// somebody else.
package repository

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when no row matches the lookup. Ownership
// scoped operations return it for rows that belong to another user too.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert or update violates a unique
// index (MySQL error 1062).
var ErrDuplicate = errors.New("duplicate key")

// ErrInvalidID is returned when an identifier is not a well formed uuid,
// before any query is sent.
var ErrInvalidID = errors.New("invalid id")

// mysqlDuplicateEntry is ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

// isDuplicate reports whether err is a unique-key violation.
func isDuplicate(err error) bool {
	if err == nil {
		return false
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == mysqlDuplicateEntry
	}
	return strings.Contains(err.Error(), "1062")
}
