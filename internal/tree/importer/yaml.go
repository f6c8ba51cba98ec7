package importer

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/abhisek/critree/internal/tree"
)

var yamlLineRe = regexp.MustCompile(`line (\d+)`)

func parseYAML(source string, data []byte) (*tree.Structure, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &ErrInvalidInput{Source: source, Line: yamlErrorLine(err), Err: err}
	}
	if raw == nil {
		return nil, &ErrInvalidInput{Source: source, Err: errors.New("empty document")}
	}

	// Round-trip through JSON so the schema sees plain JSON values.
	normalized, err := json.Marshal(raw)
	if err != nil {
		return nil, &ErrInvalidInput{Source: source, Err: fmt.Errorf("unsupported YAML value: %w", err)}
	}
	var v any
	if err := json.Unmarshal(normalized, &v); err != nil {
		return nil, &ErrInvalidInput{Source: source, Err: err}
	}
	if err := validateDocument(v); err != nil {
		return nil, &ErrInvalidInput{Source: source, Err: err}
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &ErrInvalidInput{Source: source, Line: yamlErrorLine(err), Err: err}
	}
	return &tree.Structure{Goal: toNode(doc)}, nil
}

func yamlErrorLine(err error) int {
	m := yamlLineRe.FindStringSubmatch(err.Error())
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}
