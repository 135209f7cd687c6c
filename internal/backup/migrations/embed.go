// Package migrations embeds the SQLite schema of backup files.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
