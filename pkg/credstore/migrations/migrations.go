// Package migrations embeds the credential store schema migrations so they
// compile into the client binary.
package migrations

import "embed"

//go:embed *.sql
var Files embed.FS
