package domain

import (
	"fmt"
	"time"
)

type WindowState string

const (
	WindowTooEarly WindowState = "TOO_EARLY"
	WindowOpen     WindowState = "OPEN"
	WindowClosed   WindowState = "CLOSED"
)

const (
	day                    = 24 * time.Hour
	InstallationLeadDays   = 7
	InstallationGraceDays  = 7
	CriticalDaysRemaining  = 2
	AutoApprovalDelay      = 48 * time.Hour
	MaxProofPhotos         = 5
	MinIssuePhotos         = 2
	MaxIssuePhotos         = 10
	MinIssueDescriptionLen = 20
)

// InstallationWindow is the result of a window check at a given instant.
// OpensAt is the first eligible instant, LastDay the last eligible
// calendar day and ClosesAt the first instant after it.
type InstallationWindow struct {
	State         WindowState
	OpensAt       time.Time
	LastDay       time.Time
	ClosesAt      time.Time
	DaysRemaining int
	Critical      bool
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// CheckInstallationWindow decides whether proof may be submitted at now.
// The window spans the calendar days D-7 through D+7 inclusive.
func CheckInstallationWindow(startDate, now time.Time) InstallationWindow {
	d := startOfDay(startDate)
	w := InstallationWindow{
		OpensAt:  d.Add(-InstallationLeadDays * day),
		LastDay:  d.Add(InstallationGraceDays * day),
		ClosesAt: d.Add((InstallationGraceDays + 1) * day),
	}

	now = now.UTC()
	switch {
	case now.Before(w.OpensAt):
		w.State = WindowTooEarly
	case !now.Before(w.ClosesAt):
		w.State = WindowClosed
	default:
		w.State = WindowOpen
		left := w.ClosesAt.Sub(now)
		w.DaysRemaining = int(left / day)
		if left%day != 0 {
			w.DaysRemaining++
		}
		w.Critical = w.DaysRemaining <= CriticalDaysRemaining
	}
	return w
}

// Err converts a non-open window into the rejection shown to the owner.
func (w InstallationWindow) Err(now time.Time) error {
	switch w.State {
	case WindowTooEarly:
		days := int(w.OpensAt.Sub(now.UTC()) / day)
		if w.OpensAt.Sub(now.UTC())%day != 0 {
			days++
		}
		msg := fmt.Sprintf("installation window opens in %d days on %s", days, w.OpensAt.Format("2006-01-02"))
		return NewError(ErrWindowTooEarly, msg, map[string]any{
			"opens_at":      w.OpensAt.Format(time.RFC3339),
			"opens_in_days": days,
		})
	case WindowClosed:
		msg := fmt.Sprintf("installation window closed after %s; contact support", w.LastDay.Format("2006-01-02"))
		return NewError(ErrWindowClosed, msg, map[string]any{
			"last_day":  w.LastDay.Format("2006-01-02"),
			"closed_at": w.ClosesAt.Format(time.RFC3339),
		})
	}
	return nil
}
