// Package ota decides whether a newer firmware image is available.
//
// The update server publishes a small version document:
//
//	# published by the release pipeline
//	{
//	    "hardware_version": 2,
//	    "hardware_revision": 0,
//	    "firmware_major_version": 1,   # breaking
//	    "firmware_minor_version": 6,
//	    "firmware_patch_version": 3
//	}
//
// This is not general JSON. The document is one flat object whose values are
// decimal integers; strings may only appear as keys, and '#' starts a comment
// that runs to the end of the line. The Parser streams the document through a
// fixed window (128 bytes by default), so memory use does not depend on the
// size of the response.
//
// # Comparing Versions
//
// CompareVersions applies a strict ladder: hardware version and revision must
// match exactly, then major, minor and patch are compared in order, and the
// first field that differs decides. A server version that is lower in any
// deciding field is never offered.
//
//	res := ota.Check(serverInfo, installed)
//	if res.Available {
//	    // res.PatchOnly distinguishes patch releases
//	}
//
// # Key Names
//
// The five key names are configuration. Keys remaps them without touching
// the parser; unrecognized keys are parsed and discarded.
//
// # Errors
//
// Failures are returned as *Error with an ErrorType. Callers treat any
// failure as "no update available" and retry on their own schedule.
package ota
