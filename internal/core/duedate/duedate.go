// Package duedate derives when a card's next payment falls due from its
// day-of-month due date.
//
// Dates are compared as calendar days in the location of the reference
// time. A due day that does not exist in a month (31 in April, 30 in
// February) is clamped to that month's last day.
package duedate

import (
	"fmt"
	"time"
)

// SoonWindowDays is how close a due date must be to count as "due soon".
const SoonWindowDays = 7

const (
	LabelPaid    = "paid"
	LabelOverdue = "overdue"
	LabelDueSoon = "due soon"
)

// DaysInMonth returns the number of days in month of year.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Clamp returns day limited to the last valid day of month.
func Clamp(year int, month time.Month, day int) int {
	if day < 1 {
		return 1
	}
	if last := DaysInMonth(year, month); day > last {
		return last
	}
	return day
}

// NextDueDate returns the next occurrence of dueDay on or after today's
// calendar date, at midnight in today's location.
func NextDueDate(dueDay int, today time.Time) time.Time {
	y, m, d := today.Date()
	day := Clamp(y, m, dueDay)
	if d > day {
		next := time.Date(y, m+1, 1, 0, 0, 0, 0, time.UTC)
		y, m = next.Year(), next.Month()
		day = Clamp(y, m, dueDay)
	}
	return time.Date(y, m, day, 0, 0, 0, 0, today.Location())
}

// DaysUntil counts whole calendar days from today to the next due date.
// It is zero on the due day itself and never negative, so Label's
// "overdue" means due today or earlier: the cycle only rolls to next month
// on the day after the due day.
func DaysUntil(dueDay int, today time.Time) int {
	return calendarDays(today, NextDueDate(dueDay, today))
}

// Label renders the human status for a card.
func Label(daysUntilDue int, paid bool) string {
	switch {
	case paid:
		return LabelPaid
	case daysUntilDue <= 0:
		return LabelOverdue
	case daysUntilDue <= SoonWindowDays:
		return LabelDueSoon
	default:
		return fmt.Sprintf("%d days remaining", daysUntilDue)
	}
}

// calendarDays ignores wall-clock time and DST shifts.
func calendarDays(from, to time.Time) int {
	fy, fm, fd := from.Date()
	ty, tm, td := to.Date()
	a := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	b := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}
