// Package idgenerator builds sortable run ids: an optional prefix, the epoch
// millis and a raw url base64 uuid.
package idgenerator

import (
	"encoding/base64"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Generator interface {
	Generate(prefixes ...string) string
}

type generator struct {
	now func() time.Time
}

func New() Generator {
	return &generator{now: time.Now}
}

// Generate joins prefixes with "-" in front of the id.
func (g *generator) Generate(prefixes ...string) string {
	id := uuid.New()

	var b strings.Builder
	if prefix := strings.Join(prefixes, "-"); prefix != "" {
		b.WriteString(prefix)
		b.WriteByte('-')
	}
	b.WriteString(strconv.FormatInt(g.now().UnixMilli(), 10))
	b.WriteString(base64.RawURLEncoding.EncodeToString(id[:]))
	return b.String()
}
