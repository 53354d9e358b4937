package ota

import "testing"

func TestCompareVersions(t *testing.T) {
	local := VersionInfo{Hardware: 2, Revision: 0, Major: 1, Minor: 6, Patch: 3}

	tests := []struct {
		name   string
		server VersionInfo
		want   UpdateType
	}{
		{"equal", local, UpdateNone},
		{"patch newer", VersionInfo{2, 0, 1, 6, 4}, UpdatePatch},
		{"minor newer", VersionInfo{2, 0, 1, 7, 0}, UpdateMinor},
		{"major newer", VersionInfo{2, 0, 2, 0, 0}, UpdateMajor},
		{"hardware differs", VersionInfo{3, 0, 9, 9, 9}, UpdateNone},
		{"revision differs", VersionInfo{2, 1, 9, 9, 9}, UpdateNone},
		{"patch older", VersionInfo{2, 0, 1, 6, 2}, UpdateNone},
		{"minor older patch newer", VersionInfo{2, 0, 1, 5, 9}, UpdateNone},
		{"major older minor newer", VersionInfo{2, 0, 0, 9, 9}, UpdateNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CompareVersions(tt.server, local); got != tt.want {
				t.Errorf("CompareVersions(%v, %v) = %v, want %v", tt.server, local, got, tt.want)
			}
		})
	}
}

func TestCompareVersions_Boundaries(t *testing.T) {
	local := VersionInfo{Hardware: 2, Revision: 0, Major: 0, Minor: 6, Patch: 0}

	tests := []struct {
		name   string
		server VersionInfo
		want   UpdateType
	}{
		{"all zero", VersionInfo{}, UpdateNone},
		{"older minor", VersionInfo{2, 0, 0, 0, 0}, UpdateNone},
		{"all max hardware mismatch", VersionInfo{255, 255, 255, 255, 255}, UpdateNone},
		{"all max firmware", VersionInfo{2, 0, 255, 255, 255}, UpdateMajor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CompareVersions(tt.server, local); got != tt.want {
				t.Errorf("CompareVersions(%v, %v) = %v, want %v", tt.server, local, got, tt.want)
			}
		})
	}
}

func TestCheck(t *testing.T) {
	installed := VersionInfo{Hardware: 2, Major: 1, Minor: 6, Patch: 3}

	tests := []struct {
		name          string
		server        VersionInfo
		wantAvailable bool
		wantPatchOnly bool
	}{
		{"none", installed, false, false},
		{"patch", VersionInfo{2, 0, 1, 6, 4}, true, true},
		{"minor", VersionInfo{2, 0, 1, 7, 0}, true, false},
		{"major", VersionInfo{2, 0, 2, 0, 0}, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Check(tt.server, installed)
			if res.Available != tt.wantAvailable || res.PatchOnly != tt.wantPatchOnly {
				t.Errorf("Check() = available %v patchOnly %v, want %v %v",
					res.Available, res.PatchOnly, tt.wantAvailable, tt.wantPatchOnly)
			}
			if res.Available != res.Update.Available() {
				t.Errorf("Available = %v disagrees with Update %v", res.Available, res.Update)
			}
		})
	}
}

func TestVersionInfo_String(t *testing.T) {
	v := VersionInfo{Hardware: 2, Revision: 0, Major: 1, Minor: 6, Patch: 3}
	if got, want := v.String(), "V2_0 v1.6.3"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestKeys_Validate(t *testing.T) {
	if err := DefaultKeys().Validate(); err != nil {
		t.Errorf("DefaultKeys().Validate() = %v", err)
	}

	dup := DefaultKeys()
	dup.Minor = dup.Major
	if err := dup.Validate(); err == nil {
		t.Error("Validate() with duplicate names expected error")
	}

	empty := DefaultKeys()
	empty.Patch = ""
	if err := empty.Validate(); err == nil {
		t.Error("Validate() with empty name expected error")
	}
}
