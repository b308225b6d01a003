package repositories

import (
	"database/sql/driver"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

var connectionMessages = []string{
	"connection refused",
	"Database connection failed",
}

// IsConnectionError reports whether err means the database could not be reached
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, mysql.ErrInvalidConn) {
		return true
	}
	msg := err.Error()
	for _, m := range connectionMessages {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}
