package sdk

import "testing"

func TestAPILevel(t *testing.T) {
	tests := []struct {
		text   string
		want   int
		wantOK bool
	}{
		{"Android 12L", 32, true},
		{"Android 8.1.0", 27, true},
		{"Android 99", 0, false},
		{"Android 5.0+", 21, true},
		{"Min: Android 4.0.3 (Ice Cream Sandwich MR1, API 15)", 15, true},
		{"Android 9.0+", 28, true},
		{"Android 13.0.1", 33, true},
		{"no platform here", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := APILevel(tt.text)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("APILevel(%q) = %d, %v; want %d, %v", tt.text, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestPlatform(t *testing.T) {
	match, version := Platform("Requires Android 8.0+ (Oreo)")
	if match != "Android 8.0+" || version != "8.0" {
		t.Fatalf("Platform = %q, %q", match, version)
	}
	if m, v := Platform("nothing"); m != "" || v != "" {
		t.Fatalf("expected empty, got %q, %q", m, v)
	}
}
