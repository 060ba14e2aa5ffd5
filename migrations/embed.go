// Package migrations contiene el esquema de la base de datos en formato goose.
package migrations

import "embed"

// FS migraciones SQL embebidas en el binario.
//
//go:embed *.sql
var FS embed.FS
