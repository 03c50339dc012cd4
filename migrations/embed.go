// Package migrations embeds the postgres schema migrations so that the
// server and the migrate CLI can apply them without a checkout on disk.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
