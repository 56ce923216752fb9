package timecode

import (
	"testing"
	"time"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "00:00.000"},
		{65500 * time.Millisecond, "01:05.500"},
		{61*time.Minute + 2*time.Second, "61:02.000"},
		{-1500 * time.Millisecond, "-00:01.500"},
		{999 * time.Millisecond, "00:00.999"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := Format(tt.in); got != tt.want {
				t.Errorf("Format(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"01:05.500", 65500 * time.Millisecond, false},
		{"12.25", 12250 * time.Millisecond, false},
		{" 0:03 ", 3 * time.Second, false},
		{"-1.5", -1500 * time.Millisecond, false},
		{"", 0, true},
		{"abc", 0, true},
		{"1:2:3", 0, true},
		{"x:10", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Parse(%q) expected error", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	d := 3*time.Minute + 7*time.Second + 42*time.Millisecond
	got, err := Parse(Format(d))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got != d {
		t.Errorf("round trip = %v, want %v", got, d)
	}
}
