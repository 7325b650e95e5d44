package services

import (
	"testing"
	"time"

	"epol-dashboard/internal/models"
)

func at(year int, month time.Month, day, hour, min int) *models.Timestamp {
	return models.NewTimestamp(time.Date(year, month, day, hour, min, 0, 0, time.Local))
}

func TestCalculateStatus(t *testing.T) {
	tests := []struct {
		name          string
		checkInTime   time.Time
		workStartTime string
		want          string
	}{
		{
			name:          "On time - exactly at work start",
			checkInTime:   time.Date(2026, 2, 1, 8, 0, 0, 0, time.Local),
			workStartTime: "08:00:00",
			want:          "ontime",
		},
		{
			name:          "On time - within grace period (5 minutes)",
			checkInTime:   time.Date(2026, 2, 1, 8, 4, 0, 0, time.Local),
			workStartTime: "08:00:00",
			want:          "ontime",
		},
		{
			name:          "Late - 1 minute after grace period",
			checkInTime:   time.Date(2026, 2, 1, 8, 6, 0, 0, time.Local),
			workStartTime: "08:00:00",
			want:          "late",
		},
		{
			name:          "On time - before work start",
			checkInTime:   time.Date(2026, 2, 1, 7, 45, 0, 0, time.Local),
			workStartTime: "08:00:00",
			want:          "ontime",
		},
		{
			name:          "Invalid work start time - defaults to ontime",
			checkInTime:   time.Date(2026, 2, 1, 9, 0, 0, 0, time.Local),
			workStartTime: "invalid",
			want:          "ontime",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calculateStatus(tt.checkInTime, tt.workStartTime, 5*time.Minute)
			if got != tt.want {
				t.Errorf("calculateStatus() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLateMinutes(t *testing.T) {
	if got := LateMinutes(time.Date(2026, 2, 1, 8, 30, 0, 0, time.Local), "08:00:00"); got != 30 {
		t.Errorf("LateMinutes() = %d, want 30", got)
	}
	if got := LateMinutes(time.Date(2026, 2, 1, 7, 30, 0, 0, time.Local), "08:00:00"); got != 0 {
		t.Errorf("LateMinutes() early = %d, want 0", got)
	}
	if got := LateMinutes(time.Date(2026, 2, 1, 8, 30, 0, 0, time.Local), "invalid"); got != 0 {
		t.Errorf("LateMinutes() invalid = %d, want 0", got)
	}
}

func TestHoursRendered(t *testing.T) {
	tests := []struct {
		name string
		rec  models.AttendanceRecord
		want string
	}{
		{
			name: "Regular day shift",
			rec:  models.AttendanceRecord{ClockIn: at(2023, 4, 19, 8, 0), ClockOut: at(2023, 4, 19, 17, 5)},
			want: "9h 05m",
		},
		{
			name: "Shift crossing midnight",
			rec:  models.AttendanceRecord{ClockIn: at(2023, 4, 19, 23, 50), ClockOut: at(2023, 4, 20, 0, 10)},
			want: "0h 20m",
		},
		{
			name: "Night shift logged with the same date",
			rec:  models.AttendanceRecord{ClockIn: at(2023, 4, 19, 22, 0), ClockOut: at(2023, 4, 19, 6, 0)},
			want: "8h 00m",
		},
		{
			name: "Missing clock-out",
			rec:  models.AttendanceRecord{ClockIn: at(2023, 4, 19, 8, 0)},
			want: HoursSentinel,
		},
		{
			name: "Missing clock-in",
			rec:  models.AttendanceRecord{ClockOut: at(2023, 4, 19, 17, 0)},
			want: HoursSentinel,
		},
		{
			name: "Neither timestamp",
			rec:  models.AttendanceRecord{},
			want: HoursSentinel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HoursRendered(tt.rec); got != tt.want {
				t.Errorf("HoursRendered() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRenderedDurationNeverNegative(t *testing.T) {
	for inHour := 0; inHour < 24; inHour++ {
		for outHour := 0; outHour < 24; outHour++ {
			rec := models.AttendanceRecord{ClockIn: at(2023, 4, 19, inHour, 30), ClockOut: at(2023, 4, 19, outHour, 0)}
			d, ok := RenderedDuration(rec)
			if !ok || d < 0 || d >= 24*time.Hour {
				t.Fatalf("in=%d out=%d: duration %v ok=%v", inHour, outHour, d, ok)
			}
			if outHour <= inHour {
				want := time.Date(2023, 4, 20, outHour, 0, 0, 0, time.Local).Sub(rec.ClockIn.Time)
				if d != want {
					t.Fatalf("in=%d out=%d: got %v, want %v", inHour, outHour, d, want)
				}
			}
		}
	}
}

func TestClassifyStatus(t *testing.T) {
	policy := DefaultAttendancePolicy()
	afternoon := time.Date(2023, 4, 19, 14, 0, 0, 0, time.Local)
	evening := time.Date(2023, 4, 19, 19, 0, 0, 0, time.Local)

	tests := []struct {
		name string
		rec  models.AttendanceRecord
		now  time.Time
		want models.AttendanceStatus
	}{
		{
			name: "Absent - no timestamps",
			rec:  models.AttendanceRecord{},
			now:  afternoon,
			want: models.AttendanceAbsent,
		},
		{
			name: "On duty - clocked in before cutoff",
			rec:  models.AttendanceRecord{ClockIn: at(2023, 4, 19, 8, 0)},
			now:  afternoon,
			want: models.AttendanceOnDuty,
		},
		{
			name: "Still working - clocked in past cutoff",
			rec:  models.AttendanceRecord{ClockIn: at(2023, 4, 19, 8, 0)},
			now:  evening,
			want: models.AttendanceStillWorking,
		},
		{
			name: "Undertime wins over late",
			rec:  models.AttendanceRecord{ClockIn: at(2023, 4, 19, 9, 0), ClockOut: at(2023, 4, 19, 12, 0)},
			now:  evening,
			want: models.AttendanceUndertime,
		},
		{
			name: "Undertime - on time but short",
			rec:  models.AttendanceRecord{ClockIn: at(2023, 4, 19, 8, 0), ClockOut: at(2023, 4, 19, 15, 0)},
			now:  evening,
			want: models.AttendanceUndertime,
		},
		{
			name: "Late - full shift after grace",
			rec:  models.AttendanceRecord{ClockIn: at(2023, 4, 19, 8, 30), ClockOut: at(2023, 4, 19, 17, 30)},
			now:  evening,
			want: models.AttendanceLate,
		},
		{
			name: "Present - full shift on time",
			rec:  models.AttendanceRecord{ClockIn: at(2023, 4, 19, 8, 3), ClockOut: at(2023, 4, 19, 17, 0)},
			now:  evening,
			want: models.AttendancePresent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyStatus(tt.rec, tt.now, policy); got != tt.want {
				t.Errorf("ClassifyStatus() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPolicyFromWorkHours(t *testing.T) {
	fallback := DefaultAttendancePolicy()
	if got := PolicyFromWorkHours(nil, fallback); got != fallback {
		t.Errorf("nil work hours should return fallback, got %+v", got)
	}

	got := PolicyFromWorkHours(&models.WorkHours{
		WorkStart:      "07:30:00",
		GraceMinutes:   10,
		EveningCutoff:  "bad",
		MinimumMinutes: 0,
	}, fallback)
	if got.WorkStartTime != "07:30:00" || got.GracePeriod != 10*time.Minute {
		t.Errorf("overrides not applied: %+v", got)
	}
	if got.EveningCutoff != fallback.EveningCutoff || got.MinimumMinutes != fallback.MinimumMinutes {
		t.Errorf("invalid values should keep fallback: %+v", got)
	}
}
