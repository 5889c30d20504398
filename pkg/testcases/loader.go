package testcases

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cgast/nrfu/pkg/nrfu"
)

// Format is the encoding of a test case document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatOf picks the format from a file extension; anything but .yaml and
// .yml is JSON.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// Vars builds the interpolation variables for a device. Built-in date
// variables are always present; extra entries override them.
func Vars(dut string, extra map[string]string) map[string]string {
	now := time.Now()
	vars := map[string]string{
		"date":     now.Format("2006-01-02"),
		"datetime": now.Format("2006-01-02T15:04:05"),
	}
	if dut != "" {
		vars["dut"] = dut
	}
	for k, v := range extra {
		vars[k] = v
	}
	return vars
}

// templatePattern matches {{var_name}} patterns.
var templatePattern = regexp.MustCompile(`\{\{([A-Za-z_][A-Za-z0-9_]*)\}\}`)

// interpolate replaces {{var}} with its value. Unknown variables are left
// as written.
func interpolate(data []byte, vars map[string]string) []byte {
	if len(vars) == 0 {
		return data
	}
	return templatePattern.ReplaceAllFunc(data, func(match []byte) []byte {
		name := string(match[2 : len(match)-2])
		if v, ok := vars[name]; ok {
			return []byte(v)
		}
		return match
	})
}

// Decode parses a test case document: a list of test cases in JSON or
// YAML, after {{var}} interpolation. Cases without a test-case tag are
// given domain; cases tagged for another domain are rejected.
func Decode(data []byte, format Format, domain string, vars map[string]string) ([]nrfu.TestCase, error) {
	data = interpolate(data, vars)

	var cases []nrfu.TestCase
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &cases); err != nil {
			return nil, fmt.Errorf("parse %s test cases: %w", domain, err)
		}
	default:
		if err := json.Unmarshal(data, &cases); err != nil {
			return nil, fmt.Errorf("parse %s test cases: %w", domain, err)
		}
	}

	for i := range cases {
		tc := &cases[i]
		switch tc.TestCase {
		case "":
			tc.TestCase = domain
		case domain:
		default:
			return nil, fmt.Errorf("%w: case %d of %s is tagged %q", nrfu.ErrInvalidTestCase, i, domain, tc.TestCase)
		}
		if tc.Params == nil {
			tc.Params = map[string]any{}
		}
		if tc.Expected == nil {
			tc.Expected = map[string]any{}
		}
	}
	return cases, nil
}

// Encode renders test cases as a JSON document with three-space indent.
func Encode(cases []nrfu.TestCase) ([]byte, error) {
	if cases == nil {
		cases = []nrfu.TestCase{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "   ")
	if err := enc.Encode(cases); err != nil {
		return nil, fmt.Errorf("encode test cases: %w", err)
	}
	return buf.Bytes(), nil
}

// LoadFile reads one test case document from disk.
func LoadFile(path, domain string, vars map[string]string) ([]nrfu.TestCase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(data, FormatOf(path), domain, vars)
}
