// Package avatars owns avatar key derivation and inline placeholders.
//
// Permanent avatar keys are derived from the owning child's id, which does
// not exist until the child row is inserted, so uploads start life under a
// random temporary key and are promoted once the id is known.
package avatars

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const (
	keyPrefix      = "avatars/"
	tempKeyMarker  = "avatars/tmp-"
	childKeyFormat = "avatars/child-%d"
)

// NewTempKey generates a random provisional storage key
func NewTempKey() string {
	return tempKeyMarker + uuid.New().String()
}

// ChildKey derives the permanent storage key for a child's avatar
func ChildKey(childID int64) string {
	return fmt.Sprintf(childKeyFormat, childID)
}

// TempKeyMarker is the fragment identifying provisionally-keyed avatar
// references; the promotion retry pass searches records for it.
func TempKeyMarker() string {
	return tempKeyMarker
}

// IsTempRef reports whether an avatar reference still points at a
// provisional key.
func IsTempRef(ref string) bool {
	return strings.Contains(ref, tempKeyMarker)
}

// KeyFromRef extracts the storage key from an avatar address. Returns false
// for inline placeholders and other references that do not contain a key.
func KeyFromRef(ref string) (string, bool) {
	idx := strings.Index(ref, keyPrefix)
	if idx < 0 {
		return "", false
	}
	return ref[idx:], true
}
