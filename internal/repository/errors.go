// Package repository implements the MySQL persistence layer. The
// booking store contracts (conflict-checked writes, the all-or-nothing
// payment confirm) are implemented here on database/sql transactions;
// business sentinels from the booking package are returned directly so
// handlers can branch with errors.Is. Sentinels defined in this file
// cover failure modes that only exist at the storage layer.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrEmailExists is returned when registering a user whose email is
// already taken. Handlers translate it into HTTP 409.
var ErrEmailExists = errors.New("email already exists")

// ErrCourtInUse is returned when deleting a court that reservations
// still reference. Courts are never hard-deleted from under their
// reservations; handlers translate this into HTTP 409.
var ErrCourtInUse = errors.New("court has reservations")

// MySQL server error numbers the repositories branch on.
const (
	mysqlErrDupEntry    = 1062
	mysqlErrLockTimeout = 1205
	mysqlErrDeadlock    = 1213
)

func mysqlErrNumber(err error, number uint16) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == number
}

// isSerializationFailure reports whether err means the transaction lost
// a race (deadlock or lock wait timeout) rather than hitting a business
// rule.
func isSerializationFailure(err error) bool {
	return mysqlErrNumber(err, mysqlErrDeadlock) || mysqlErrNumber(err, mysqlErrLockTimeout)
}
