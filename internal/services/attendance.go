// Package services implements business logic for the application
package services

import (
	"fmt"
	"time"

	"epol-dashboard/internal/models"
)

// HoursSentinel is shown when a record lacks clock-in or clock-out
const HoursSentinel = "—"

// AttendancePolicy holds the thresholds used to classify a record
type AttendancePolicy struct {
	WorkStartTime  string        // HH:MM:SS
	GracePeriod    time.Duration // after WorkStartTime before a clock-in counts as late
	EveningCutoff  string        // HH:MM:SS; still clocked in after this is "still working"
	MinimumMinutes int           // shorter shifts are undertime
}

// DefaultAttendancePolicy is an 08:00-17:00 day with a 5 minute grace period
func DefaultAttendancePolicy() AttendancePolicy {
	return AttendancePolicy{
		WorkStartTime:  "08:00:00",
		GracePeriod:    5 * time.Minute,
		EveningCutoff:  "17:00:00",
		MinimumMinutes: 480,
	}
}

// PolicyFromWorkHours overlays the backend's work-hours settings on fallback
func PolicyFromWorkHours(wh *models.WorkHours, fallback AttendancePolicy) AttendancePolicy {
	if wh == nil {
		return fallback
	}
	p := fallback
	if _, err := time.Parse("15:04:05", wh.WorkStart); err == nil {
		p.WorkStartTime = wh.WorkStart
	}
	if _, err := time.Parse("15:04:05", wh.EveningCutoff); err == nil {
		p.EveningCutoff = wh.EveningCutoff
	}
	if wh.GraceMinutes > 0 {
		p.GracePeriod = time.Duration(wh.GraceMinutes) * time.Minute
	}
	if wh.MinimumMinutes > 0 {
		p.MinimumMinutes = wh.MinimumMinutes
	}
	return p
}

// RenderedDuration is the time between clock-in and clock-out. Clock-out is
// taken at its time of day on the clock-in date, moved to the next day when
// that is earlier than clock-in (shift crossed midnight).
func RenderedDuration(rec models.AttendanceRecord) (time.Duration, bool) {
	if rec.ClockIn == nil || rec.ClockOut == nil || rec.ClockIn.IsZero() || rec.ClockOut.IsZero() {
		return 0, false
	}
	in := rec.ClockIn.Time
	out := rec.ClockOut.In(in.Location())

	end := time.Date(in.Year(), in.Month(), in.Day(),
		out.Hour(), out.Minute(), out.Second(), out.Nanosecond(), in.Location())
	if end.Before(in) {
		end = end.AddDate(0, 0, 1)
	}
	return end.Sub(in), true
}

// HoursRendered formats RenderedDuration as "8h 05m", or HoursSentinel.
func HoursRendered(rec models.AttendanceRecord) string {
	d, ok := RenderedDuration(rec)
	if !ok {
		return HoursSentinel
	}
	minutes := int(d.Minutes())
	return fmt.Sprintf("%dh %02dm", minutes/60, minutes%60)
}

// ClassifyStatus derives a record's status. Checks run in order and the
// first match wins: absent, on duty, still working, undertime, late, present.
// Undertime is checked before lateness.
func ClassifyStatus(rec models.AttendanceRecord, now time.Time, policy AttendancePolicy) models.AttendanceStatus {
	hasIn := rec.ClockIn != nil && !rec.ClockIn.IsZero()
	hasOut := rec.ClockOut != nil && !rec.ClockOut.IsZero()

	if !hasIn {
		return models.AttendanceAbsent
	}
	checkIn := rec.ClockIn.Time

	if !hasOut {
		cutoff, err := atTimeOfDay(checkIn, policy.EveningCutoff)
		if err != nil || now.Before(cutoff) {
			return models.AttendanceOnDuty
		}
		return models.AttendanceStillWorking
	}

	if d, ok := RenderedDuration(rec); ok && int(d.Minutes()) < policy.MinimumMinutes {
		return models.AttendanceUndertime
	}

	if calculateStatus(checkIn, policy.WorkStartTime, policy.GracePeriod) == "late" {
		return models.AttendanceLate
	}
	return models.AttendancePresent
}

// calculateStatus determines if check-in is on time or late
func calculateStatus(checkInTime time.Time, workStartTime string, gracePeriod time.Duration) string {
	todayWorkStart, err := atTimeOfDay(checkInTime, workStartTime)
	if err != nil {
		return "ontime" // Default to ontime if can't parse
	}

	if checkInTime.Before(todayWorkStart.Add(gracePeriod)) {
		return "ontime"
	}

	return "late"
}

// LateMinutes is how far past the work start a check-in was, 0 when on time
func LateMinutes(checkInTime time.Time, workStartTime string) int {
	workStart, err := atTimeOfDay(checkInTime, workStartTime)
	if err != nil || !checkInTime.After(workStart) {
		return 0
	}
	return int(checkInTime.Sub(workStart).Minutes())
}

// atTimeOfDay puts an HH:MM:SS clock value on day's date
func atTimeOfDay(day time.Time, clock string) (time.Time, error) {
	tod, err := time.Parse("15:04:05", clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(
		day.Year(),
		day.Month(),
		day.Day(),
		tod.Hour(),
		tod.Minute(),
		tod.Second(),
		0,
		day.Location(),
	), nil
}
