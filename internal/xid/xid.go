package xid

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// New returns prefix-<32 hex chars>. An empty prefix yields the bare hex.
func New(prefix string) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	if prefix == "" {
		return id
	}
	return fmt.Sprintf("%s-%s", prefix, id)
}

// Short is New trimmed to n hex chars, for ids people read aloud such as
// checkout group ids.
func Short(prefix string, n int) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	if n > 0 && n < len(id) {
		id = id[:n]
	}
	if prefix == "" {
		return id
	}
	return fmt.Sprintf("%s-%s", prefix, id)
}
