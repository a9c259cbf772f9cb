// Package migrations embebe los scripts SQL del esquema en el binario.
package migrations

import "embed"

// FS contiene los pares NNNN_nombre.up.sql / NNNN_nombre.down.sql.
//
//go:embed *.sql
var FS embed.FS
