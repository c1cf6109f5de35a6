package repository

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/uefiscdi/internal/common"
	"github.com/joseph-ayodele/uefiscdi/internal/entity"
)

// databaseSchema is the cache document format. Every entry key must be
// present; null means unknown.
const databaseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["id", "version", "url", "entries"],
  "properties": {
    "id": {"enum": ["aisq", "jifq", "ais", "ris", "rif"]},
    "version": {"type": "integer"},
    "url": {"type": "string"},
    "entries": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["category", "index", "name", "issn", "eissn", "quartile", "position", "score"],
        "properties": {
          "category": {"type": ["string", "null"]},
          "index": {"enum": ["AHCI", "ESCI", "SCIE", "SSCI", null]},
          "name": {"type": ["string", "null"]},
          "issn": {"type": ["string", "null"], "pattern": "^[0-9]{4}-[0-9]{3}[0-9X]$"},
          "eissn": {"type": ["string", "null"], "pattern": "^[0-9]{4}-[0-9]{3}[0-9X]$"},
          "quartile": {"enum": ["Q1", "Q2", "Q3", "Q4", null]},
          "position": {"type": ["integer", "null"]},
          "score": {"type": ["number", "null"]}
        }
      }
    }
  }
}`

var schema = jsonschema.MustCompileString("database.json", databaseSchema)

// Encode renders db in the cache document format.
func Encode(db *entity.Database) ([]byte, error) {
	if db.Entries == nil {
		cp := *db
		cp.Entries = []entity.Entry{}
		db = &cp
	}
	b, err := json.MarshalIndent(db, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal database: %w", err)
	}
	return b, nil
}

// Decode validates data against the cache format and unmarshals it.
func Decode(data []byte) (*entity.Database, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("%w: unmarshal cache: %v", common.ErrValidation, err)
	}
	if err := schema.Validate(v); err != nil {
		return nil, fmt.Errorf("%w: cache does not match schema: %v", common.ErrValidation, err)
	}

	var db entity.Database
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&db); err != nil {
		return nil, fmt.Errorf("%w: decode cache: %v", common.ErrValidation, err)
	}
	if db.Entries == nil {
		db.Entries = []entity.Entry{}
	}
	return &db, nil
}
