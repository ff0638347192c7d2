package xid

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	assert.Regexp(t, regexp.MustCompile(`^bk-[0-9a-f]{32}$`), New("bk"))
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{32}$`), New(""))
	assert.NotEqual(t, New("bk"), New("bk"))
}

func TestShort(t *testing.T) {
	assert.Regexp(t, regexp.MustCompile(`^grp-[0-9a-f]{9}$`), Short("grp", 9))
	assert.Len(t, Short("", 0), 32)
}
