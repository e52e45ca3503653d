// Package migrations embeds the per-dialect schema migration files so the
// server, the admin CLI, and the tests all run against the same schema.
package migrations

import "embed"

//go:embed sqlite/*.sql postgres/*.sql mysql/*.sql
var FS embed.FS
