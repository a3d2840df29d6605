package policy

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile reads a YAML rule file and returns a checked rule set.
//
// File format:
//
//	version: "2026-02"
//	rules:
//	  - id: POL-001-1
//	    scope: /project/src
//	    action: Read/Write
//	    verdict: Allowed
func LoadFile(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy file: %w", err)
	}

	var rs RuleSet
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&rs); err != nil {
		return nil, fmt.Errorf("parse policy file %s: %w", path, err)
	}

	if err := rs.Check(); err != nil {
		return nil, fmt.Errorf("invalid policy file %s: %w", path, err)
	}

	return &rs, nil
}
