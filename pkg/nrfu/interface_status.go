package nrfu

import (
	"fmt"

	"github.com/tidwall/gjson"
)

// Interface status: each interface is either operationally "up"
// (interfaceStatus "connected") or administratively "down" ("disabled").
//
// Test case:
//
//	{"test-case": "test-interface-status", "dut": "ex000102.nyc1",
//	 "params": {"interface": "Ethernet1"}, "expected": {"state": "down"}}
const (
	InterfaceStatusTestCase = "test-interface-status"
	InterfaceStatusCommand  = "show interfaces"
)

// InterfaceRecord is one entry of "show interfaces".
type InterfaceRecord struct {
	Name         string
	Status       Field
	LineProtocol string
	Description  string
	Membership   string
}

// InterfacesSnapshot is the parsed "show interfaces" output in device order.
type InterfacesSnapshot struct {
	Interfaces []InterfaceRecord
	index      map[string]int
}

// ParseInterfaces parses the JSON output of "show interfaces".
func ParseInterfaces(data []byte) (*InterfacesSnapshot, error) {
	obj, err := parseDocument(data, "interfaces", false)
	if err != nil {
		return nil, err
	}
	snap := &InterfacesSnapshot{index: make(map[string]int)}
	eachEntry(obj, func(name string, rec gjson.Result) {
		snap.index[name] = len(snap.Interfaces)
		snap.Interfaces = append(snap.Interfaces, InterfaceRecord{
			Name:         name,
			Status:       fieldOf(rec, "interfaceStatus"),
			LineProtocol: rec.Get("lineProtocolStatus").String(),
			Description:  rec.Get("description").String(),
			Membership:   rec.Get("interfaceMembership").String(),
		})
	})
	return snap, nil
}

// Lookup returns the record for the named interface.
func (s *InterfacesSnapshot) Lookup(name string) (InterfaceRecord, bool) {
	i, ok := s.index[name]
	if !ok {
		return InterfaceRecord{}, false
	}
	return s.Interfaces[i], true
}

// ValidateInterfaceStatus checks that params.interface is in expected.state.
func ValidateInterfaceStatus(snap *InterfacesSnapshot, tc TestCase) error {
	ifName, err := tc.Param("interface")
	if err != nil {
		return err
	}
	expected, err := tc.ExpectedString("state")
	if err != nil {
		return err
	}

	rec, ok := snap.Lookup(ifName)
	if !ok {
		return &MissingError{Message: "No status for interface", Missing: ifName}
	}
	if !rec.Status.Set {
		return missingField(ifName, "interfaceStatus")
	}

	actual := rec.Status.Value
	if expected == "down" {
		if actual != "disabled" {
			return &MismatchError{
				Message:  fmt.Sprintf("Interface %s not down as expected", ifName),
				Expected: expected,
				Actual:   actual,
			}
		}
		return nil
	}

	if actual != "connected" {
		return &MismatchError{
			Message:  fmt.Sprintf("Interface %s not up as expected", ifName),
			Expected: expected,
			Actual:   actual,
		}
	}
	return nil
}

// MakeInterfaceStatusTestCase builds an interface status test case.
func MakeInterfaceStatusTestCase(dut, ifName, state string) TestCase {
	return NewTestCase(InterfaceStatusTestCase, dut,
		map[string]any{"interface": ifName},
		map[string]any{"state": state})
}

// GenerateInterfaceStatus emits one test case per interface that is either
// connected ("up") or disabled ("down"). Interfaces in any other state are
// skipped; no expectation of theirs would validate.
func GenerateInterfaceStatus(snap *InterfacesSnapshot, dut string) []TestCase {
	var out []TestCase
	for _, rec := range snap.Interfaces {
		switch rec.Status.Value {
		case "connected":
			out = append(out, MakeInterfaceStatusTestCase(dut, rec.Name, "up"))
		case "disabled":
			out = append(out, MakeInterfaceStatusTestCase(dut, rec.Name, "down"))
		}
	}
	return out
}

// LabelInterfaceStatus renders "<interface>:<state>".
func LabelInterfaceStatus(tc TestCase) string {
	return fmt.Sprintf("%s:%s", tc.ParamOr("interface", "?"), tc.ExpectedOr("state", "?"))
}
