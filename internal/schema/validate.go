// Package schema validates catalogue documents against the embedded JSON schema.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	schemafs "github.com/AndreyAkinshin/simcheck/schema"
)

var (
	catalogueSchema *jsonschema.Schema
	compileOnce     sync.Once
	compileErr      error
)

// compileSchemas compiles the embedded schema once.
func compileSchemas() error {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()

		data, err := schemafs.FS.ReadFile(schemafs.CatalogueFile)
		if err != nil {
			compileErr = fmt.Errorf("read catalogue schema: %w", err)
			return
		}

		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
		if err != nil {
			compileErr = fmt.Errorf("unmarshal catalogue schema: %w", err)
			return
		}

		if err := compiler.AddResource(schemafs.CatalogueFile, doc); err != nil {
			compileErr = fmt.Errorf("add catalogue schema resource: %w", err)
			return
		}

		catalogueSchema, err = compiler.Compile(schemafs.CatalogueFile)
		if err != nil {
			compileErr = fmt.Errorf("compile catalogue schema: %w", err)
			return
		}
	})

	return compileErr
}

// ValidateCatalogue validates JSON data against the catalogue schema.
func ValidateCatalogue(data []byte) error {
	if err := compileSchemas(); err != nil {
		return err
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	if err := catalogueSchema.Validate(v); err != nil {
		return fmt.Errorf("catalogue validation failed: %w", err)
	}

	return nil
}
