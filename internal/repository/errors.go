// Package repository defines the data access layer and the sentinel errors
// shared by its repositories.  Handlers translate these values into HTTP
// status codes with errors.Is.
package repository

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when the addressed row does not exist.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own.  Handlers answer 403.
var ErrForbidden = errors.New("forbidden")

// MySQL server error numbers the repositories react to.
const (
	mysqlDuplicateEntry  uint16 = 1062
	mysqlNoReferencedRow uint16 = 1452
	mysqlDeadlock        uint16 = 1213
)

func mysqlErrNumber(err error) uint16 {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number
	}
	return 0
}

// isDuplicate reports whether err is a unique-key violation.  When keys are
// given, the violated key name must contain one of them.
func isDuplicate(err error, keys ...string) bool {
	if mysqlErrNumber(err) != mysqlDuplicateEntry {
		return false
	}
	if len(keys) == 0 {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, k := range keys {
		if strings.Contains(msg, strings.ToLower(k)) {
			return true
		}
	}
	return false
}

func isMissingReference(err error) bool { return mysqlErrNumber(err) == mysqlNoReferencedRow }

func isDeadlock(err error) bool { return mysqlErrNumber(err) == mysqlDeadlock }

// rollback is deferred by transactional methods.  It is a no-op once the
// transaction has been committed.
func rollback(tx *sql.Tx, committed *bool) {
	if !*committed {
		_ = tx.Rollback()
	}
}
