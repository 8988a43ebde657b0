// Package migrations embeds the SQLite schema for the users table.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
