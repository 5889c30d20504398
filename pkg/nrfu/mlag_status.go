package nrfu

import (
	"fmt"
)

// MLAG status verifies the MLAG control plane: state "active" and
// negotiation status "connected". Only an "up" expectation is supported.
const (
	MLAGStatusTestCase = "test-mlag-status"
	MLAGStatusCommand  = "show mlag"
)

// MLAGSnapshot is the parsed "show mlag" output. It is a single record.
type MLAGSnapshot struct {
	State          Field
	NegStatus      Field
	DomainID       string
	LocalInterface string
	PeerLink       string
	PeerAddress    string
	PeerLinkStatus string
}

// ParseMLAG parses the JSON output of "show mlag".
func ParseMLAG(data []byte) (*MLAGSnapshot, error) {
	doc, err := parseDocument(data, "", false)
	if err != nil {
		return nil, err
	}
	return &MLAGSnapshot{
		State:          fieldOf(doc, "state"),
		NegStatus:      fieldOf(doc, "negStatus"),
		DomainID:       doc.Get("domainId").String(),
		LocalInterface: doc.Get("localInterface").String(),
		PeerLink:       doc.Get("peerLink").String(),
		PeerAddress:    doc.Get("peerAddress").String(),
		PeerLinkStatus: doc.Get("peerLinkStatus").String(),
	}, nil
}

// ValidateMLAGStatus checks that the control plane is active and connected.
func ValidateMLAGStatus(snap *MLAGSnapshot, tc TestCase) error {
	expected, err := tc.ExpectedString("state")
	if err != nil {
		return err
	}
	if expected != "up" {
		return fmt.Errorf("%w: %s expected.state %q (only \"up\" is supported)",
			ErrUnsupportedExpectation, MLAGStatusTestCase, expected)
	}

	if !snap.State.Set {
		return missingField("mlag", "state")
	}
	if !snap.NegStatus.Set {
		return missingField("mlag", "negStatus")
	}

	if snap.State.Value == "active" && snap.NegStatus.Value == "connected" {
		return nil
	}
	return &MismatchError{
		Expected: []string{"active", "connected"},
		Actual:   []string{snap.State.Value, snap.NegStatus.Value},
	}
}

// MakeMLAGStatusTestCase builds an MLAG status test case expecting "up".
func MakeMLAGStatusTestCase(dut, domain, localIf, peerLink, peerIP string) TestCase {
	return NewTestCase(MLAGStatusTestCase, dut,
		map[string]any{
			"interface": localIf,
			"peer_link": peerLink,
			"peer_ip":   peerIP,
			"domain":    domain,
		},
		map[string]any{"state": "up"})
}

// GenerateMLAGStatus emits a single test case when the control plane is
// active and connected. A disabled (unprovisioned) MLAG, or one that is not
// up, yields none.
func GenerateMLAGStatus(snap *MLAGSnapshot, dut string) []TestCase {
	if snap.State.Value != "active" || snap.NegStatus.Value != "connected" {
		return nil
	}
	return []TestCase{
		MakeMLAGStatusTestCase(dut, snap.DomainID, snap.LocalInterface, snap.PeerLink, snap.PeerAddress),
	}
}

// LabelMLAGStatus renders the peer-link name.
func LabelMLAGStatus(tc TestCase) string {
	return tc.ParamOr("peer_link", "?")
}
