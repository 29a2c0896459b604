package did

import (
	_ "embed"
	"encoding/json"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/xeipuuv/gojsonschema"
)

//go:embed patch_schema.json
var patchSchemaJSON []byte

var (
	patchSchema    *gojsonschema.Schema
	loadSchemaOnce sync.Once
	errLoadSchema  error
)

// loadPatchSchema compiles the embedded patch schema exactly once.
func loadPatchSchema() (*gojsonschema.Schema, error) {
	loadSchemaOnce.Do(func() {
		patchSchema, errLoadSchema = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(patchSchemaJSON))
		if errLoadSchema != nil {
			errLoadSchema = errors.Wrap(errLoadSchema, "failed to compile patch schema")
		}
	})
	return patchSchema, errLoadSchema
}

// ParsePatches validates a JSON patch list against the patch schema and
// decodes it. Action values are not checked here; ProcessPatches rejects
// unknown ones.
func ParsePatches(data []byte) ([]PatchModel, error) {
	schema, err := loadPatchSchema()
	if err != nil {
		return nil, err
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, errors.Wrap(err, "failed to validate patches")
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, errors.Errorf("invalid patches: %s", strings.Join(msgs, "; "))
	}

	var patches []PatchModel
	if err := json.Unmarshal(data, &patches); err != nil {
		return nil, errors.Wrap(err, "failed to decode patches")
	}
	return patches, nil
}
