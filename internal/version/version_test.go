package version

import (
	"runtime"
	"runtime/debug"
	"strings"
	"testing"
)

func TestFromBuildInfo(t *testing.T) {
	oldV, oldC := Version, Commit
	t.Cleanup(func() { Version, Commit = oldV, oldC })

	tests := []struct {
		name       string
		info       *debug.BuildInfo
		wantV      string
		wantCommit string
	}{
		{
			name: "module version and dirty tree",
			info: &debug.BuildInfo{
				Main: debug.Module{Version: "v0.4.1"},
				Settings: []debug.BuildSetting{
					{Key: "vcs.revision", Value: "0123456789abcdef"},
					{Key: "vcs.modified", Value: "true"},
				},
			},
			wantV:      "v0.4.1",
			wantCommit: "0123456-dirty",
		},
		{
			name:       "devel build without vcs",
			info:       &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}},
			wantV:      "",
			wantCommit: "",
		},
		{
			name: "short revision",
			info: &debug.BuildInfo{Settings: []debug.BuildSetting{
				{Key: "vcs.revision", Value: "abc"},
			}},
			wantCommit: "abc",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Version, Commit = "", ""
			fromBuildInfo(tt.info, true)
			if Version != tt.wantV || Commit != tt.wantCommit {
				t.Errorf("got (%q, %q), want (%q, %q)", Version, Commit, tt.wantV, tt.wantCommit)
			}
		})
	}
}

func TestUserAgent(t *testing.T) {
	ua := UserAgent()
	if !strings.HasPrefix(ua, "trafficled/"+Version) {
		t.Errorf("UserAgent() = %q, want trafficled/%s prefix", ua, Version)
	}
	if !strings.Contains(ua, runtime.GOOS) {
		t.Errorf("UserAgent() = %q, missing %s", ua, runtime.GOOS)
	}
}
