package model

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/mod/semver"
)

// SupportedFormat is the artifact format major version this build reads.
const SupportedFormat = "v1"

//go:embed artifact.schema.json
var artifactSchemaJSON []byte

const artifactSchemaURL = "schema://earlyedge/artifact.json"

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(artifactSchemaJSON))
	if err != nil {
		return nil, fmt.Errorf("parse artifact schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(artifactSchemaURL, doc); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	return c.Compile(artifactSchemaURL)
})

// validateDocument checks raw artifact JSON against the embedded schema
// before it is decoded into an Artifact.
func validateDocument(raw []byte) error {
	schema, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("compile artifact schema: %w", err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}

// checkFormat rejects artifacts written for a different major format.
func checkFormat(format string) error {
	v := format
	if len(v) == 0 || v[0] != 'v' {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return fmt.Errorf("artifact format %q is not a semantic version", format)
	}
	if semver.Major(v) != SupportedFormat {
		return fmt.Errorf("artifact format %s is not supported (want %s.x.y)", format, SupportedFormat)
	}
	return nil
}

func decodeArtifact(raw []byte) (*Artifact, error) {
	if err := validateDocument(raw); err != nil {
		return nil, err
	}
	var a Artifact
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("decode artifact: %w", err)
	}
	if err := checkFormat(a.Format); err != nil {
		return nil, err
	}
	return &a, nil
}
