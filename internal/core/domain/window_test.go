package domain_test

import (
	"testing"
	"time"

	"github.com/srgjo27/installation_proof/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var startDate = time.Date(2025, 3, 15, 9, 30, 0, 0, time.UTC)

func at(daysFromStart int, hh, mm int) time.Time {
	d := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC).AddDate(0, 0, daysFromStart)
	return d.Add(time.Duration(hh)*time.Hour + time.Duration(mm)*time.Minute)
}

func TestCheckInstallationWindow_Boundaries(t *testing.T) {
	cases := []struct {
		name  string
		now   time.Time
		state domain.WindowState
	}{
		{"last minute of D-8", at(-8, 23, 59), domain.WindowTooEarly},
		{"midnight of D-7", at(-7, 0, 0), domain.WindowOpen},
		{"start day", at(0, 12, 0), domain.WindowOpen},
		{"last minute of D+7", at(7, 23, 59), domain.WindowOpen},
		{"midnight of D+8", at(8, 0, 0), domain.WindowClosed},
		{"long after", at(40, 0, 0), domain.WindowClosed},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := domain.CheckInstallationWindow(startDate, tc.now)
			assert.Equal(t, tc.state, w.State)
		})
	}
}

func TestCheckInstallationWindow_DaysRemaining(t *testing.T) {
	w := domain.CheckInstallationWindow(startDate, at(-7, 0, 0))
	assert.Equal(t, 15, w.DaysRemaining)
	assert.False(t, w.Critical)

	w = domain.CheckInstallationWindow(startDate, at(5, 0, 0))
	assert.Equal(t, 3, w.DaysRemaining)
	assert.False(t, w.Critical)

	w = domain.CheckInstallationWindow(startDate, at(6, 12, 0))
	assert.Equal(t, 2, w.DaysRemaining)
	assert.True(t, w.Critical)

	w = domain.CheckInstallationWindow(startDate, at(7, 23, 59))
	assert.Equal(t, 1, w.DaysRemaining)
	assert.True(t, w.Critical)
}

func TestCheckInstallationWindow_DatesAreCalendarDays(t *testing.T) {
	w := domain.CheckInstallationWindow(startDate, at(0, 0, 0))

	assert.Equal(t, time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC), w.OpensAt)
	assert.Equal(t, time.Date(2025, 3, 22, 0, 0, 0, 0, time.UTC), w.LastDay)
	assert.Equal(t, time.Date(2025, 3, 23, 0, 0, 0, 0, time.UTC), w.ClosesAt)
}

func TestCheckInstallationWindow_NonUTCInput(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*3600)
	// 2025-03-08 03:00 WIB is still 2025-03-07 in UTC.
	now := time.Date(2025, 3, 8, 3, 0, 0, 0, jakarta)

	w := domain.CheckInstallationWindow(startDate, now)
	assert.Equal(t, domain.WindowTooEarly, w.State)
}

func TestInstallationWindowErr_TooEarly(t *testing.T) {
	now := at(-9, 0, 0)
	w := domain.CheckInstallationWindow(startDate, now)

	err := w.Err(now)
	require.Error(t, err)

	var de *domain.Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, domain.ErrWindowTooEarly, de.Code)
	assert.Equal(t, 2, de.Details["opens_in_days"])
	assert.Equal(t, "2025-03-08T00:00:00Z", de.Details["opens_at"])
	assert.Contains(t, de.Message, "2025-03-08")
}

func TestInstallationWindowErr_Closed(t *testing.T) {
	now := at(8, 0, 0)
	w := domain.CheckInstallationWindow(startDate, now)

	err := w.Err(now)

	var de *domain.Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, domain.ErrWindowClosed, de.Code)
	assert.Equal(t, "2025-03-22", de.Details["last_day"])
}

func TestInstallationWindowErr_OpenIsNil(t *testing.T) {
	now := at(0, 0, 0)
	assert.NoError(t, domain.CheckInstallationWindow(startDate, now).Err(now))
}
