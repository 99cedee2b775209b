package db

import "embed"

// MigrationFS embeds SQL migration files from internal/db/migrations.
// Applied by cmd/migrate and, when RUN_MIGRATIONS is set, by cmd/server at startup.
//
//go:embed migrations/*.sql
var MigrationFS embed.FS
