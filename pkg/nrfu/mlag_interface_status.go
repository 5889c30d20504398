package nrfu

import (
	"fmt"

	"github.com/tidwall/gjson"
)

// MLAG interface status: "up" means status "active-full", "down" means
// "inactive". Entries are keyed by the MLAG id as a string.
const (
	MLAGInterfaceStatusTestCase = "test-mlag-interface-status"
	MLAGInterfaceStatusCommand  = "show mlag interfaces"
)

// MLAGInterface is one entry of "show mlag interfaces".
type MLAGInterface struct {
	ID             string
	LocalInterface string
	PeerInterface  string
	Status         Field
	LocalStatus    string
	PeerStatus     string
	Description    string
}

// MLAGInterfacesSnapshot is the parsed "show mlag interfaces" output.
type MLAGInterfacesSnapshot struct {
	Interfaces []MLAGInterface
	index      map[string]int
}

// ParseMLAGInterfaces parses the JSON output of "show mlag interfaces".
func ParseMLAGInterfaces(data []byte) (*MLAGInterfacesSnapshot, error) {
	obj, err := parseDocument(data, "interfaces", false)
	if err != nil {
		return nil, err
	}
	snap := &MLAGInterfacesSnapshot{index: make(map[string]int)}
	eachEntry(obj, func(id string, rec gjson.Result) {
		snap.index[id] = len(snap.Interfaces)
		snap.Interfaces = append(snap.Interfaces, MLAGInterface{
			ID:             id,
			LocalInterface: rec.Get("localInterface").String(),
			PeerInterface:  rec.Get("peerInterface").String(),
			Status:         fieldOf(rec, "status"),
			LocalStatus:    rec.Get("localInterfaceStatus").String(),
			PeerStatus:     rec.Get("peerInterfaceStatus").String(),
			Description:    rec.Get("localInterfaceDescription").String(),
		})
	})
	return snap, nil
}

// Lookup returns the entry for the MLAG id.
func (s *MLAGInterfacesSnapshot) Lookup(id string) (MLAGInterface, bool) {
	i, ok := s.index[id]
	if !ok {
		return MLAGInterface{}, false
	}
	return s.Interfaces[i], true
}

// ValidateMLAGInterfaceStatus checks params.mlag against expected.state.
func ValidateMLAGInterfaceStatus(snap *MLAGInterfacesSnapshot, tc TestCase) error {
	id, err := tc.Param("mlag")
	if err != nil {
		return err
	}
	expected, err := tc.ExpectedString("state")
	if err != nil {
		return err
	}

	rec, ok := snap.Lookup(id)
	if !ok {
		return &MissingError{Message: fmt.Sprintf("MLAG %s not found", id), Missing: id}
	}
	if !rec.Status.Set {
		return missingField(id, "status")
	}

	actual := rec.Status.Value
	if expected == "up" {
		if actual != "active-full" {
			return &MismatchError{
				Message:  fmt.Sprintf("MLAG %s not up as expected", id),
				Expected: expected,
				Actual:   actual,
			}
		}
		return nil
	}

	if actual != "inactive" {
		return &MismatchError{
			Message:  fmt.Sprintf("MLAG %s not down as expected", id),
			Expected: expected,
			Actual:   actual,
		}
	}
	return nil
}

// MakeMLAGInterfaceStatusTestCase builds an MLAG interface test case. An
// empty peerIf defaults to localIf.
func MakeMLAGInterfaceStatusTestCase(dut, id, localIf, peerIf, state string) TestCase {
	if peerIf == "" {
		peerIf = localIf
	}
	if state == "" {
		state = "up"
	}
	return NewTestCase(MLAGInterfaceStatusTestCase, dut,
		map[string]any{"mlag": id, "interface": localIf, "peer_interface": peerIf},
		map[string]any{"state": state})
}

// GenerateMLAGInterfaceStatus emits "up" for active-full entries and "down"
// for inactive ones. Partially active or disabled entries are skipped.
func GenerateMLAGInterfaceStatus(snap *MLAGInterfacesSnapshot, dut string) []TestCase {
	var out []TestCase
	for _, rec := range snap.Interfaces {
		var state string
		switch rec.Status.Value {
		case "active-full":
			state = "up"
		case "inactive":
			state = "down"
		default:
			continue
		}
		out = append(out, MakeMLAGInterfaceStatusTestCase(dut, rec.ID, rec.LocalInterface, rec.PeerInterface, state))
	}
	return out
}

// LabelMLAGInterfaceStatus renders "<mlag>:<state>".
func LabelMLAGInterfaceStatus(tc TestCase) string {
	return fmt.Sprintf("%s:%s", tc.ParamOr("mlag", "?"), tc.ExpectedOr("state", "?"))
}
