package testcases

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"

	"github.com/cgast/nrfu/pkg/nrfu"
)

// ChangeType classifies a difference between two baselines.
type ChangeType string

const (
	ChangeAdded    ChangeType = "added"
	ChangeRemoved  ChangeType = "removed"
	ChangeModified ChangeType = "modified"
)

// Change records one test case that differs between two baselines. Test
// cases are matched by their params; a modified case kept its params but
// changed its expectation.
type Change struct {
	Domain string         `json:"domain"`
	Key    string         `json:"key"`
	Type   ChangeType     `json:"type"`
	Before *nrfu.TestCase `json:"before,omitempty"`
	After  *nrfu.TestCase `json:"after,omitempty"`
}

// paramsKey renders params canonically; encoding/json sorts map keys.
func paramsKey(tc nrfu.TestCase) string {
	data, err := json.Marshal(tc.Params)
	if err != nil {
		return fmt.Sprintf("%v", tc.Params)
	}
	return string(data)
}

// Diff compares the test cases of one domain. Removed and modified cases
// come in the order of a, added ones in the order of b.
func Diff(domain string, a, b []nrfu.TestCase) []Change {
	after := make(map[string]nrfu.TestCase, len(b))
	for _, tc := range b {
		after[paramsKey(tc)] = tc
	}
	before := make(map[string]bool, len(a))

	var changes []Change
	for _, tc := range a {
		tc := tc
		key := paramsKey(tc)
		before[key] = true

		bc, ok := after[key]
		switch {
		case !ok:
			changes = append(changes, Change{Domain: domain, Key: key, Type: ChangeRemoved, Before: &tc})
		case !reflect.DeepEqual(normalize(tc.Expected), normalize(bc.Expected)):
			changes = append(changes, Change{Domain: domain, Key: key, Type: ChangeModified, Before: &tc, After: &bc})
		}
	}

	for _, tc := range b {
		tc := tc
		key := paramsKey(tc)
		if !before[key] {
			changes = append(changes, Change{Domain: domain, Key: key, Type: ChangeAdded, After: &tc})
		}
	}
	return changes
}

// normalize round-trips a value through JSON so documents read from YAML
// and JSON compare equal.
func normalize(v map[string]any) any {
	data, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return v
	}
	return out
}

// DiffStores compares every domain present in either store.
func DiffStores(a, b Store) ([]Change, error) {
	domains := make(map[string]bool)
	for _, s := range []Store{a, b} {
		names, err := s.Domains()
		if err != nil {
			return nil, err
		}
		for _, n := range names {
			domains[n] = true
		}
	}

	names := make([]string, 0, len(domains))
	for n := range domains {
		names = append(names, n)
	}
	sort.Strings(names)

	var changes []Change
	for _, domain := range names {
		ca, err := loadOrEmpty(a, domain)
		if err != nil {
			return nil, err
		}
		cb, err := loadOrEmpty(b, domain)
		if err != nil {
			return nil, err
		}
		changes = append(changes, Diff(domain, ca, cb)...)
	}
	return changes, nil
}

func loadOrEmpty(s Store, domain string) ([]nrfu.TestCase, error) {
	cases, err := s.Load(domain)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return cases, err
}
