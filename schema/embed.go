// Package schema provides the embedded JSON schema for simcheck catalogue files.
package schema

import "embed"

// CatalogueFile is the name of the catalogue schema inside FS.
const CatalogueFile = "catalogue.schema.json"

// FS contains the embedded schema files.
//
//go:embed *.schema.json
var FS embed.FS
