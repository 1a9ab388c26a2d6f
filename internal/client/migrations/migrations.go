// Package migrations embeds the client's SQLite schema, applied with goose
// at startup.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
