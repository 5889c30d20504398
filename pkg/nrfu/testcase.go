package nrfu

import "fmt"

// TestCase is one declarative expectation: which object to look at (Params)
// and the condition it must satisfy (Expected). DUT is informational.
type TestCase struct {
	TestCase string         `json:"test-case" yaml:"test-case"`
	DUT      string         `json:"dut" yaml:"dut"`
	Params   map[string]any `json:"params" yaml:"params"`
	Expected map[string]any `json:"expected" yaml:"expected"`
}

// NewTestCase builds a test case for the given domain tag.
func NewTestCase(domain, dut string, params, expected map[string]any) TestCase {
	if params == nil {
		params = map[string]any{}
	}
	if expected == nil {
		expected = map[string]any{}
	}
	return TestCase{TestCase: domain, DUT: dut, Params: params, Expected: expected}
}

// Param returns params[key] as a string. Non-string scalars (YAML and JSON
// numbers) are formatted with %v.
func (tc TestCase) Param(key string) (string, error) {
	return stringField(tc.Params, "params", key)
}

// ParamOr returns params[key] as a string, or def when the key is absent.
func (tc TestCase) ParamOr(key, def string) string {
	s, err := tc.Param(key)
	if err != nil {
		return def
	}
	return s
}

// ExpectedString returns expected[key] as a string.
func (tc TestCase) ExpectedString(key string) (string, error) {
	return stringField(tc.Expected, "expected", key)
}

// ExpectedOr returns expected[key] as a string, or def when the key is absent.
func (tc TestCase) ExpectedOr(key, def string) string {
	s, err := tc.ExpectedString(key)
	if err != nil {
		return def
	}
	return s
}

// ExpectedList returns expected[key] as a list of strings.
func (tc TestCase) ExpectedList(key string) ([]string, error) {
	v, ok := tc.Expected[key]
	if !ok {
		return nil, fmt.Errorf("%w: expected.%s is required", ErrInvalidTestCase, key)
	}
	switch items := v.(type) {
	case []string:
		return items, nil
	case []any:
		out := make([]string, 0, len(items))
		for _, it := range items {
			out = append(out, fmt.Sprintf("%v", it))
		}
		return out, nil
	case nil:
		return []string{}, nil
	}
	return nil, fmt.Errorf("%w: expected.%s must be a list, got %T", ErrInvalidTestCase, key, v)
}

func stringField(m map[string]any, section, key string) (string, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return "", fmt.Errorf("%w: %s.%s is required", ErrInvalidTestCase, section, key)
	}
	switch s := v.(type) {
	case string:
		return s, nil
	case map[string]any, []any:
		return "", fmt.Errorf("%w: %s.%s must be a scalar, got %T", ErrInvalidTestCase, section, key, v)
	}
	return fmt.Sprintf("%v", v), nil
}

// stringSet is the small set type used by membership checks.
type stringSet map[string]struct{}

func newStringSet(items []string) stringSet {
	s := make(stringSet, len(items))
	for _, it := range items {
		s[it] = struct{}{}
	}
	return s
}

// minus returns the members of s not in other, ordered by SortInterfaces.
func (s stringSet) minus(other stringSet) []string {
	var out []string
	for k := range s {
		if _, ok := other[k]; !ok {
			out = append(out, k)
		}
	}
	return SortInterfaces(out)
}

func (s stringSet) sorted() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	return SortInterfaces(out)
}
