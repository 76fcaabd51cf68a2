package normalize

import "testing"

func TestAmount(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"1,234.50 ETB", 1234.50},
		{"ETB 100.00", 100},
		{"Birr 2,000", 2000},
		{"  75.25  ", 75.25},
		{"", 0},
		{"N/A", 0},
		{"1.234.50", 0},
		{"ETB.", 0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Amount(tt.in); got != tt.want {
				t.Errorf("Amount(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestDate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"dash day-first", "06-07-2025 10:08:00", "2025-07-06T10:08:00"},
		{"slash short year", "06/07/25 10:08", "2025-07-06T10:08:00"},
		{"us with meridiem", "07/06/2025, 10:08:00 PM", "2025-07-06T22:08:00"},
		{"us lowercase meridiem no comma", "7/6/2025 9:05:07 am", "2025-07-06T09:05:07"},
		{"iso", "2025-07-06T10:08:00", "2025-07-06T10:08:00"},
		{"iso with offset", "2025-07-06T10:08:00+03:00", "2025-07-06T10:08:00"},
		{"unrecognized passes through", "July 6th 2025", "July 6th 2025"},
		{"matching shape but invalid values passes through", "45-13-2025 10:08:00", "45-13-2025 10:08:00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Date(tt.in); got != tt.want {
				t.Errorf("Date(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDatePtr(t *testing.T) {
	if DatePtr(nil) != nil {
		t.Error("nil should stay nil")
	}
	raw := "not a date"
	if got := DatePtr(&raw); got == nil || *got != raw {
		t.Errorf("DatePtr passthrough = %v", got)
	}
}
