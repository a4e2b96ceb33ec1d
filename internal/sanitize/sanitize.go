// Package sanitize implements the one normalization rule every component
// that builds or consumes a public tool name must share: sanitize(server) +
// "__" + tool. It is grounded on the teacher's
// internal/service/mcp/util.go validateServerName/mergeServerToolNames
// pair, generalized from "reject invalid names" to "normalize names",
// since this spec's sanitize() is required to be total (it must produce a
// stable name for any server name, not just validate allowed ones).
package sanitize

import (
	"regexp"
	"strings"
)

const toolNameSeparator = "__"

var nonWordRun = regexp.MustCompile(`[^A-Za-z0-9_]+`)

// Name trims name and replaces every run of non-word characters with a
// single underscore. The exact mapping must stay stable across every
// component because it forms the public tool name.
func Name(name string) string {
	return nonWordRun.ReplaceAllString(strings.TrimSpace(name), "_")
}

// PublicToolName builds the canonical public tool name:
// sanitize(serverName) + "__" + toolName.
func PublicToolName(serverName, toolName string) string {
	return Name(serverName) + toolNameSeparator + toolName
}
