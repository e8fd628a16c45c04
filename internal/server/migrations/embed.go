// Package migrations embeds the goose SQL migrations for the identity
// directory schema.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
