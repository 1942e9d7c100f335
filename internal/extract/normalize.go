package extract

import "strings"

var unescaper = strings.NewReplacer(
	`\u0026`, "&",
	`\/`, "/",
)

// Unescape rewrites escaped ampersand and slash sequences found in URLs
// lifted out of embedded JSON or HTML. Idempotent: none of the replacement
// outputs match a replaced pattern.
func Unescape(s string) string {
	return unescaper.Replace(s)
}
