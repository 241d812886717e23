// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package content

import "strings"

// RefKind classifies a media reference string. The three forms are a wire
// convention shared with the page application and must stay distinguishable:
// a data-URI is inline (pre-upload, transient), a root-relative path is a
// bundled static asset, and anything else is an opaque object-storage key.
type RefKind int

const (
	// RefEmpty is an unset reference.
	RefEmpty RefKind = iota
	// RefInline is a data-URI carried inside the document itself.
	RefInline
	// RefStatic is a root-relative path to a bundled asset. Static assets
	// are never uploaded to or deleted from the media store.
	RefStatic
	// RefStored is an opaque key into the media object store.
	RefStored
)

// KindOf classifies a media reference string.
func KindOf(ref string) RefKind {
	switch {
	case ref == "":
		return RefEmpty
	case strings.HasPrefix(ref, "data:"):
		return RefInline
	case strings.HasPrefix(ref, "/"):
		return RefStatic
	default:
		return RefStored
	}
}

// IsStored reports whether ref is an object-storage key, i.e. deleting the
// item that owns it requires deleting the stored object first.
func IsStored(ref string) bool {
	return KindOf(ref) == RefStored
}
