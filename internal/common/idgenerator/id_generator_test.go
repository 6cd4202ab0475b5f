package idgenerator

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGenerate(t *testing.T) {
	g := &generator{now: func() time.Time { return time.UnixMilli(1700000000000) }}

	t.Run("with prefix", func(t *testing.T) {
		id := g.Generate("GEN", "batch")
		assert.Regexp(t, regexp.MustCompile(`^GEN-batch-1700000000000[A-Za-z0-9_-]{22}$`), id)
	})

	t.Run("without prefix", func(t *testing.T) {
		id := g.Generate()
		assert.Regexp(t, regexp.MustCompile(`^1700000000000[A-Za-z0-9_-]{22}$`), id)
	})

	t.Run("unique", func(t *testing.T) {
		assert.NotEqual(t, New().Generate("GEN"), New().Generate("GEN"))
	})
}
