package dialog

import (
	"testing"
	"time"
)

func TestFormatDateAt(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.August, 28, 18, 30, 0, 0, time.Local)
	tests := []struct {
		name string
		at   time.Time
		want string
	}{
		{"same day", time.Date(2026, time.August, 28, 9, 5, 0, 0, time.Local), "09:05"},
		{"same year", time.Date(2026, time.March, 3, 12, 0, 0, 0, time.Local), "3.03"},
		{"older year", time.Date(2024, time.December, 31, 23, 59, 0, 0, time.Local), "31.12.2024"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := formatDateAt(tt.at.UnixMilli(), now); got != tt.want {
				t.Fatalf("formatDateAt = %q, want %q", got, tt.want)
			}
		})
	}
}
