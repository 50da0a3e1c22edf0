package locale

import "testing"

func TestDetectRegion(t *testing.T) {
	tests := []struct {
		name string
		tz   string
		want string
	}{
		{name: "canonical IL zone", tz: "Asia/Jerusalem", want: "IL"},
		{name: "loose IL label", tz: "israel", want: "IL"},
		{name: "legacy US alias", tz: "US/Pacific", want: "US"},
		{name: "canonical US zone", tz: "America/New_York", want: "US"},
		{name: "unknown zone", tz: "Europe/Berlin", want: ""},
		{name: "empty", tz: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectRegion(tt.tz); got != tt.want {
				t.Errorf("DetectRegion(%q) = %q, want %q", tt.tz, got, tt.want)
			}
		})
	}
}

func TestPhoneRegions_ILFirst(t *testing.T) {
	regions := PhoneRegions()
	if len(regions) == 0 || regions[0] != "IL" {
		t.Fatalf("PhoneRegions() = %v, want IL first", regions)
	}
	for _, region := range regions {
		if _, ok := Countries[region]; !ok {
			t.Errorf("region %q has no Countries entry", region)
		}
	}
}
