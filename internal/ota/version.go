package ota

import "fmt"

// VersionInfo identifies a hardware target and a firmware release.
type VersionInfo struct {
	Hardware uint32 `yaml:"hardware" toml:"hardware"`
	Revision uint32 `yaml:"revision" toml:"revision"`
	Major    uint32 `yaml:"major" toml:"major"`
	Minor    uint32 `yaml:"minor" toml:"minor"`
	Patch    uint32 `yaml:"patch" toml:"patch"`
}

// String formats the version as "V<hw>_<rev> v<major>.<minor>.<patch>".
func (v VersionInfo) String() string {
	return fmt.Sprintf("V%d_%d v%d.%d.%d", v.Hardware, v.Revision, v.Major, v.Minor, v.Patch)
}

// UpdateType is the outcome of comparing a server version with the
// installed one.
type UpdateType int

const (
	UpdateNone UpdateType = iota
	UpdateMajor
	UpdateMinor
	UpdatePatch
)

func (u UpdateType) String() string {
	switch u {
	case UpdateNone:
		return "none"
	case UpdateMajor:
		return "major"
	case UpdateMinor:
		return "minor"
	case UpdatePatch:
		return "patch"
	default:
		return fmt.Sprintf("UpdateType(%d)", int(u))
	}
}

// Available reports whether any update is offered.
func (u UpdateType) Available() bool { return u != UpdateNone }

// PatchOnly reports whether the update only changes the patch level.
func (u UpdateType) PatchOnly() bool { return u == UpdatePatch }

// CompareVersions decides which kind of update server is relative to local.
// Hardware version and revision must match exactly; after that the first of
// major, minor and patch that differs decides, and a lower server value at
// that level means no update.
func CompareVersions(server, local VersionInfo) UpdateType {
	if server.Hardware != local.Hardware || server.Revision != local.Revision {
		return UpdateNone
	}
	switch {
	case server.Major > local.Major:
		return UpdateMajor
	case server.Major < local.Major:
		return UpdateNone
	case server.Minor > local.Minor:
		return UpdateMinor
	case server.Minor < local.Minor:
		return UpdateNone
	case server.Patch > local.Patch:
		return UpdatePatch
	default:
		return UpdateNone
	}
}

// Result is the outcome of an update check.
type Result struct {
	Server    VersionInfo
	Installed VersionInfo
	Update    UpdateType
	Available bool
	PatchOnly bool
}

// Check compares server with installed and fills in a Result.
func Check(server, installed VersionInfo) Result {
	update := CompareVersions(server, installed)
	return Result{
		Server:    server,
		Installed: installed,
		Update:    update,
		Available: update.Available(),
		PatchOnly: update.PatchOnly(),
	}
}
