// Package migrations embeds the SQL schema migrations so the server and
// the integration tests can apply them without a file path.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
