package ota

import (
	"errors"
	"fmt"
)

// Keys names the five fields of the version document.
type Keys struct {
	Hardware string `yaml:"hardware" toml:"hardware"`
	Revision string `yaml:"revision" toml:"revision"`
	Major    string `yaml:"major" toml:"major"`
	Minor    string `yaml:"minor" toml:"minor"`
	Patch    string `yaml:"patch" toml:"patch"`
}

// DefaultKeys returns the key names published by the update server.
func DefaultKeys() Keys {
	return Keys{
		Hardware: "hardware_version",
		Revision: "hardware_revision",
		Major:    "firmware_major_version",
		Minor:    "firmware_minor_version",
		Patch:    "firmware_patch_version",
	}
}

// Validate rejects empty or repeated key names.
func (k Keys) Validate() error {
	seen := make(map[string]bool, 5)
	for _, name := range k.names() {
		if name == "" {
			return errors.New("version key names must not be empty")
		}
		if seen[name] {
			return fmt.Errorf("version key %q is used twice", name)
		}
		seen[name] = true
	}
	return nil
}

func (k Keys) names() [5]string {
	return [5]string{k.Hardware, k.Revision, k.Major, k.Minor, k.Patch}
}

type field int

const (
	fieldUnknown field = iota
	fieldHardware
	fieldRevision
	fieldMajor
	fieldMinor
	fieldPatch
)

func (k Keys) lookup(name []byte) field {
	switch {
	case string(name) == k.Hardware:
		return fieldHardware
	case string(name) == k.Revision:
		return fieldRevision
	case string(name) == k.Major:
		return fieldMajor
	case string(name) == k.Minor:
		return fieldMinor
	case string(name) == k.Patch:
		return fieldPatch
	default:
		return fieldUnknown
	}
}

func (v *VersionInfo) set(f field, value uint32) {
	switch f {
	case fieldHardware:
		v.Hardware = value
	case fieldRevision:
		v.Revision = value
	case fieldMajor:
		v.Major = value
	case fieldMinor:
		v.Minor = value
	case fieldPatch:
		v.Patch = value
	}
}
