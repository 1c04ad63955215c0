// Package migrations embeds the goose migrations of the document server.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
