package nrfu

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// BGP neighbor status: the peer in the default VRF must be Established.
const (
	BGPNeighborTestCase = "test-bgp-neighbors"
	BGPNeighborCommand  = "show ip bgp summary"

	bgpEstablished = "Established"
)

// BGPPeer is one peer of the default VRF in "show ip bgp summary".
type BGPPeer struct {
	Address        string
	State          Field
	ASN            string
	Description    string
	PrefixReceived int64
}

// BGPSummarySnapshot is the default VRF of "show ip bgp summary".
type BGPSummarySnapshot struct {
	RouterID string
	Peers    []BGPPeer
	index    map[string]int
}

// ParseBGPSummary parses the JSON output of "show ip bgp summary".
func ParseBGPSummary(data []byte) (*BGPSummarySnapshot, error) {
	vrf, err := parseDocument(data, "vrfs.default", false)
	if err != nil {
		return nil, err
	}
	snap := &BGPSummarySnapshot{
		RouterID: vrf.Get("routerId").String(),
		index:    make(map[string]int),
	}
	eachEntry(vrf.Get("peers"), func(addr string, rec gjson.Result) {
		snap.index[addr] = len(snap.Peers)
		snap.Peers = append(snap.Peers, BGPPeer{
			Address:        addr,
			State:          fieldOf(rec, "peerState"),
			ASN:            rec.Get("asn").String(),
			Description:    strings.Trim(rec.Get("description").String(), `"`),
			PrefixReceived: rec.Get("prefixReceived").Int(),
		})
	})
	return snap, nil
}

// Lookup returns the peer with the given address.
func (s *BGPSummarySnapshot) Lookup(addr string) (BGPPeer, bool) {
	i, ok := s.index[addr]
	if !ok {
		return BGPPeer{}, false
	}
	return s.Peers[i], true
}

// ValidateBGPNeighbor checks that params.peer_ip is Established.
func ValidateBGPNeighbor(snap *BGPSummarySnapshot, tc TestCase) error {
	peerIP, err := tc.Param("peer_ip")
	if err != nil {
		return err
	}

	peer, ok := snap.Lookup(peerIP)
	if !ok {
		return &MissingError{Message: "BGP neighbor not found", Missing: peerIP}
	}
	if !peer.State.Set {
		return missingField(peerIP, "peerState")
	}
	if peer.State.Value != bgpEstablished {
		return &MismatchError{Expected: bgpEstablished, Actual: peer.State.Value}
	}
	return nil
}

// MakeBGPNeighborTestCase builds a BGP neighbor test case. Empty optional
// params are left out.
func MakeBGPNeighborTestCase(dut, peerIP, peerASN, peerDevice, peerRole string) TestCase {
	params := map[string]any{"peer_ip": peerIP}
	for k, v := range map[string]string{
		"peer_asn":    peerASN,
		"peer_device": peerDevice,
		"peer_role":   peerRole,
	} {
		if v != "" {
			params[k] = v
		}
	}
	return NewTestCase(BGPNeighborTestCase, dut, params, map[string]any{"state": "up"})
}

// GenerateBGPNeighbor emits one test case per Established peer. The peer
// description, when present, becomes params.peer_device.
func GenerateBGPNeighbor(snap *BGPSummarySnapshot, dut string) []TestCase {
	var out []TestCase
	for _, p := range snap.Peers {
		if p.State.Value != bgpEstablished {
			continue
		}
		out = append(out, MakeBGPNeighborTestCase(dut, p.Address, p.ASN, p.Description, ""))
	}
	return out
}

// LabelBGPNeighbor renders "<peer_device> role=<peer_role> via=<peer_ip>".
func LabelBGPNeighbor(tc TestCase) string {
	role := tc.ParamOr("peer_role", tc.ParamOr("role", "na"))
	return fmt.Sprintf("%s role=%s via=%s",
		tc.ParamOr("peer_device", "?"), role, tc.ParamOr("peer_ip", "?"))
}
