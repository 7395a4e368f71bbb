// Package repository defines error types that are reused across multiple
// repositories.  These sentinel values allow higher layers such as
// services and handlers to distinguish between different failure
// scenarios without inspecting driver errors.
package repository

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own.
var ErrForbidden = errors.New("forbidden")

// ErrPGNotFound is returned when a PG cannot be found in the DB.
var ErrPGNotFound = errors.New("pg not found")

// ErrBookingNotFound is returned when no booking with the given ID exists
// for the caller.
var ErrBookingNotFound = errors.New("booking not found")

// ErrActiveBookingExists is returned when inserting or re-activating a
// booking would give a seeker a second reserved/confirmed booking.  It is
// raised by the uq_bookings_active_user unique key, not by a prior read.
var ErrActiveBookingExists = errors.New("active booking exists")

// ErrBookingConfirmed is returned when a seeker tries to remove a booking
// that has already been confirmed.
var ErrBookingConfirmed = errors.New("booking confirmed")

// ErrBookingState is returned when a status transition is not allowed from
// the booking's current status.
var ErrBookingState = errors.New("booking state does not allow this transition")

// mysqlDuplicateEntry is the server error number for a unique key violation.
const mysqlDuplicateEntry = 1062

// isDuplicateKey reports whether err is a MySQL duplicate-entry error.  When
// key is non-empty the violated key name must also match.
func isDuplicateKey(err error, key string) bool {
	var me *mysql.MySQLError
	if !errors.As(err, &me) || me.Number != mysqlDuplicateEntry {
		return false
	}
	return key == "" || strings.Contains(me.Message, key)
}
