package version

import (
	"runtime"
	"testing"
)

func TestGet(t *testing.T) {
	info := Get()

	if info.Version == "" {
		t.Error("Version is empty")
	}
	if info.GoVersion != runtime.Version() {
		t.Errorf("GoVersion = %q, want %q", info.GoVersion, runtime.Version())
	}
	if want := runtime.GOOS + "/" + runtime.GOARCH; info.Platform != want {
		t.Errorf("Platform = %q, want %q", info.Platform, want)
	}
	if Dirty == "false" && info.Dirty {
		t.Error("Dirty = true, want false for the default build")
	}
}

func TestInfo_String(t *testing.T) {
	tests := []struct {
		name string
		info Info
		want string
	}{
		{
			"clean build",
			Info{Version: "2.1.0", Commit: "deadbeef", Date: "2026-06-01"},
			"2.1.0 (deadbeef) built 2026-06-01",
		},
		{
			"dirty build",
			Info{Version: "2.1.0", Commit: "deadbeef", Date: "2026-06-01", Dirty: true},
			"2.1.0 (deadbeef-dirty) built 2026-06-01",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.info.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInfo_Short(t *testing.T) {
	tests := []struct {
		name string
		info Info
		want string
	}{
		{"clean", Info{Version: "1.2.3"}, "1.2.3"},
		{"dirty", Info{Version: "1.2.3", Dirty: true}, "1.2.3-dirty"},
		{"dev default", Info{Version: "0.0.0-dev"}, "0.0.0-dev"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.info.Short(); got != tt.want {
				t.Errorf("Short() = %q, want %q", got, tt.want)
			}
		})
	}
}
