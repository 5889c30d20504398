package nrfu

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// Cabling compares the LLDP neighbor seen on a local port with the expected
// remote device and port. Both comparisons ignore case.
const (
	CablingTestCase = "test-cabling"
	CablingCommand  = "show lldp neighbors"

	defaultCablingRole = "role=na"
)

// LLDPNeighbor is one adjacency of "show lldp neighbors".
type LLDPNeighbor struct {
	Port           string
	NeighborDevice Field
	NeighborPort   Field
	TTL            int64
}

// LLDPSnapshot is the parsed "show lldp neighbors" output in device order.
type LLDPSnapshot struct {
	Neighbors []LLDPNeighbor
}

// ParseLLDPNeighbors parses the JSON output of "show lldp neighbors".
func ParseLLDPNeighbors(data []byte) (*LLDPSnapshot, error) {
	arr, err := parseDocument(data, "lldpNeighbors", true)
	if err != nil {
		return nil, err
	}
	snap := &LLDPSnapshot{}
	arr.ForEach(func(_, rec gjson.Result) bool {
		snap.Neighbors = append(snap.Neighbors, LLDPNeighbor{
			Port:           rec.Get("port").String(),
			NeighborDevice: fieldOf(rec, "neighborDevice"),
			NeighborPort:   fieldOf(rec, "neighborPort"),
			TTL:            rec.Get("ttl").Int(),
		})
		return true
	})
	return snap, nil
}

// Lookup returns the first adjacency learned on the local port.
func (s *LLDPSnapshot) Lookup(port string) (LLDPNeighbor, bool) {
	for _, n := range s.Neighbors {
		if n.Port == port {
			return n, true
		}
	}
	return LLDPNeighbor{}, false
}

// ValidateCabling checks the neighbor on params.interface against
// expected.remote-hostname and expected.remote-interface.
func ValidateCabling(snap *LLDPSnapshot, tc TestCase) error {
	ifName, err := tc.Param("interface")
	if err != nil {
		return err
	}
	expectDev, err := tc.ExpectedString("remote-hostname")
	if err != nil {
		return err
	}
	expectPort, err := tc.ExpectedString("remote-interface")
	if err != nil {
		return err
	}

	nbr, ok := snap.Lookup(ifName)
	if !ok {
		return &MissingError{Message: "Interface not found", Missing: ifName}
	}
	if !nbr.NeighborDevice.Set {
		return missingField(ifName, "neighborDevice")
	}
	if !nbr.NeighborPort.Set {
		return missingField(ifName, "neighborPort")
	}

	actualDev, actualPort := nbr.NeighborDevice.Value, nbr.NeighborPort.Value

	var wrong []string
	if !strings.EqualFold(actualDev, expectDev) {
		wrong = append(wrong, "Wrong remote-device: "+actualDev)
	}
	if !strings.EqualFold(actualPort, expectPort) {
		wrong = append(wrong, "Wrong remote-interface: "+actualPort)
	}
	if len(wrong) > 0 {
		return &MismatchError{
			Message:  strings.Join(wrong, ", "),
			Expected: expectDev + ":" + expectPort,
			Actual:   actualDev + ":" + actualPort,
		}
	}
	return nil
}

// MakeCablingTestCase builds a cabling test case. An empty role is stored
// as "role=na".
func MakeCablingTestCase(dut, ifName, remoteHost, remoteIf, role string) TestCase {
	if role == "" {
		role = defaultCablingRole
	}
	return NewTestCase(CablingTestCase, dut,
		map[string]any{"interface": ifName, "role": role},
		map[string]any{"remote-hostname": remoteHost, "remote-interface": remoteIf})
}

// GenerateCabling emits one test case per local port. When several
// neighbors share a port only the first is kept, matching how
// ValidateCabling resolves the port.
func GenerateCabling(snap *LLDPSnapshot, dut string) []TestCase {
	var out []TestCase
	seen := make(map[string]bool)
	for _, n := range snap.Neighbors {
		if seen[n.Port] {
			continue
		}
		seen[n.Port] = true
		if !n.NeighborDevice.Set || !n.NeighborPort.Set {
			continue
		}
		out = append(out, MakeCablingTestCase(dut, n.Port, n.NeighborDevice.Value, n.NeighborPort.Value, ""))
	}
	return out
}

// LabelCabling renders "<interface><[<role>]-><host>:<port>".
func LabelCabling(tc TestCase) string {
	return fmt.Sprintf("%s<[%s]->%s:%s",
		tc.ParamOr("interface", "?"),
		tc.ParamOr("role", defaultCablingRole),
		tc.ExpectedOr("remote-hostname", "?"),
		tc.ExpectedOr("remote-interface", "?"))
}
