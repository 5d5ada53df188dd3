// Package migrations embeds the server schema applied by goose.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
