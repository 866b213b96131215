package migrations

import "embed"

// MigrationsFS embeds the goose SQL migrations so the server binary can
// apply them at startup.
//
//go:embed *.sql
var MigrationsFS embed.FS
