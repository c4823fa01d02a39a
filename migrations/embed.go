// Package migrations holds the goose SQL migrations for the hosted PostgreSQL database
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
