// Package migrations embeds the Postgres schema for the users table.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
