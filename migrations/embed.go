package migrations

import "embed"

// FS holds the postgres schema migrations, applied in lexical order.
//
//go:embed *.sql
var FS embed.FS
