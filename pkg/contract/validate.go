// Package contract checks outgoing envelopes against the published
// JSON schema. It is development and test tooling only: validation is
// opt-in, lazy, and never fails a production response, it just warns.
package contract

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/moodmora/edge/pkg/errorsx"
)

//go:embed schemas/*.json
var schemaFS embed.FS

const envelopeSchemaID = "moodmora://schemas/envelope.schema.json"

type Validator struct {
	enabled bool
	logger  *slog.Logger

	once     sync.Once
	schema   *jsonschema.Schema
	bootErr  error
	warnOnce sync.Once
}

// NewValidator builds a validator. A disabled validator is a no-op
// and never compiles the schema.
func NewValidator(enabled bool, logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{enabled: enabled, logger: logger}
}

func (v *Validator) boot() {
	compiler := jsonschema.NewCompiler()
	entries, err := schemaFS.ReadDir("schemas")
	if err != nil {
		v.bootErr = errorsx.Wrap(fmt.Errorf("read embedded schemas: %w", err), errorsx.ReasonContractBoot)
		return
	}
	for _, e := range entries {
		raw, err := schemaFS.ReadFile("schemas/" + e.Name())
		if err != nil {
			v.bootErr = errorsx.Wrap(fmt.Errorf("read schema %s: %w", e.Name(), err), errorsx.ReasonContractBoot)
			return
		}
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
		if err != nil {
			v.bootErr = errorsx.Wrap(fmt.Errorf("parse schema %s: %w", e.Name(), err), errorsx.ReasonContractBoot)
			return
		}
		id := schemaID(doc)
		if id == "" {
			continue
		}
		if err := compiler.AddResource(id, doc); err != nil {
			v.bootErr = errorsx.Wrap(fmt.Errorf("register schema %s: %w", id, err), errorsx.ReasonContractBoot)
			return
		}
	}
	schema, err := compiler.Compile(envelopeSchemaID)
	if err != nil {
		v.bootErr = errorsx.Wrap(fmt.Errorf("compile envelope schema: %w", err), errorsx.ReasonContractBoot)
		return
	}
	v.schema = schema
}

// Check validates one envelope value. Violations and boot failures
// are logged, never returned as hard failures; the boolean reports
// whether the envelope passed (a disabled validator always passes).
func (v *Validator) Check(envelope any) bool {
	if v == nil || !v.enabled {
		return true
	}
	v.once.Do(v.boot)
	if v.bootErr != nil {
		v.warnOnce.Do(func() {
			v.logger.Warn("contract_validator_unavailable", "error", v.bootErr)
		})
		return true
	}

	// round-trip through JSON so struct values validate the same way
	// the wire form would
	raw, err := json.Marshal(envelope)
	if err != nil {
		v.logger.Warn("contract_check_marshal_failed", "error", err)
		return true
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		v.logger.Warn("contract_check_decode_failed", "error", err)
		return true
	}
	if err := v.schema.Validate(doc); err != nil {
		v.logger.Warn("contract_violation",
			"schema_id", envelopeSchemaID,
			"error", err,
		)
		return false
	}
	return true
}

func schemaID(doc any) string {
	m, ok := doc.(map[string]any)
	if !ok {
		return ""
	}
	id, _ := m["$id"].(string)
	return id
}
