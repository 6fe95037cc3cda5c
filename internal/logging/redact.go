package logging

import (
	"fmt"
	"log/slog"
	"strings"
)

// MaxBodyBytes bounds FieldResponseBody values; archive receipts can be large.
const MaxBodyBytes = 4096

const redactedValue = "[redacted]"

var sensitiveKeys = map[string]struct{}{
	"password":      {},
	"webin_pass":    {},
	"authorization": {},
	"secret":        {},
}

// scrub applies credential redaction and body truncation to one attribute.
// Group keys are matched on their final segment.
func scrub(key string, value slog.Value) slog.Value {
	name := key
	if i := strings.LastIndexByte(key, '.'); i >= 0 {
		name = key[i+1:]
	}
	name = strings.ToLower(name)
	if _, ok := sensitiveKeys[name]; ok {
		return slog.StringValue(redactedValue)
	}
	if name == FieldResponseBody && value.Kind() == slog.KindString {
		return slog.StringValue(truncate(value.String(), MaxBodyBytes))
	}
	return value
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8Start(s[cut]) {
		cut--
	}
	return s[:cut] + fmt.Sprintf("...(%d bytes truncated)", len(s)-cut)
}

func utf8Start(b byte) bool { return b&0xC0 != 0x80 }
