package dsl

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// UUIDSource produces identifiers for nodes, exits and cases.
type UUIDSource func() string

// RandomUUIDs returns a source of random version 4 uuids.
func RandomUUIDs() UUIDSource {
	return uuid.NewString
}

// SequentialUUIDs returns a source yielding "<prefix>-0", "<prefix>-1", ...
// It is safe for concurrent use.
func SequentialUUIDs(prefix string) UUIDSource {
	var n atomic.Int64
	return func() string {
		return fmt.Sprintf("%s-%d", prefix, n.Add(1)-1)
	}
}

// fill returns value, or a fresh id from src when value is empty and src
// is set. With no source the empty value is kept so builder defaults apply.
func (src UUIDSource) fill(value string) string {
	if value != "" || src == nil {
		return value
	}
	return src()
}
