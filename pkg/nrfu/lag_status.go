package nrfu

import (
	"github.com/tidwall/gjson"
)

// LAG status: the port-channel must contain exactly the expected members and
// every member must be bundled.
const (
	LAGStatusTestCase = "test-lag-status"
	LAGStatusCommand  = "show lacp neighbor"

	lacpBundled = "bundled"
)

// LACPMember is one member interface of a port-channel.
type LACPMember struct {
	Name            string
	ActorPortStatus Field
	PartnerSystemID string
}

// PortChannel is one port-channel of "show lacp neighbor".
type PortChannel struct {
	Name    string
	Members []LACPMember
}

// MemberNames returns the member interface names in device order.
func (p PortChannel) MemberNames() []string {
	out := make([]string, len(p.Members))
	for i, m := range p.Members {
		out[i] = m.Name
	}
	return out
}

// LACPSnapshot is the parsed "show lacp neighbor" output in device order.
type LACPSnapshot struct {
	PortChannels []PortChannel
	index        map[string]int
}

// ParseLACPNeighbors parses the JSON output of "show lacp neighbor".
func ParseLACPNeighbors(data []byte) (*LACPSnapshot, error) {
	obj, err := parseDocument(data, "portChannels", false)
	if err != nil {
		return nil, err
	}
	snap := &LACPSnapshot{index: make(map[string]int)}
	eachEntry(obj, func(name string, rec gjson.Result) {
		pc := PortChannel{Name: name}
		eachEntry(rec.Get("interfaces"), func(member string, m gjson.Result) {
			pc.Members = append(pc.Members, LACPMember{
				Name:            member,
				ActorPortStatus: fieldOf(m, "actorPortStatus"),
				PartnerSystemID: m.Get("partnerSystemId").String(),
			})
		})
		snap.index[name] = len(snap.PortChannels)
		snap.PortChannels = append(snap.PortChannels, pc)
	})
	return snap, nil
}

// Lookup returns the named port-channel.
func (s *LACPSnapshot) Lookup(name string) (PortChannel, bool) {
	i, ok := s.index[name]
	if !ok {
		return PortChannel{}, false
	}
	return s.PortChannels[i], true
}

// ValidateLAGStatus checks params.name against expected.interfaces. The
// checks run in a fixed order and the first failing one is returned:
// missing group, missing members, surplus members, empty group, then the
// first member that is not bundled.
func ValidateLAGStatus(snap *LACPSnapshot, tc TestCase) error {
	name, err := tc.Param("name")
	if err != nil {
		return err
	}
	expectedList, err := tc.ExpectedList("interfaces")
	if err != nil {
		return err
	}

	lag, ok := snap.Lookup(name)
	if !ok {
		return &MissingError{Missing: name}
	}

	actual := newStringSet(lag.MemberNames())
	expected := newStringSet(expectedList)

	if missing := expected.minus(actual); len(missing) > 0 {
		return &MismatchError{
			Expected: expected.sorted(),
			Actual:   actual.sorted(),
		}
	}

	if surplus := actual.minus(expected); len(surplus) > 0 {
		return &UnexpectedError{Unexpected: surplus}
	}

	// Reached only when both sets are empty.
	if len(lag.Members) == 0 {
		return &MismatchError{
			Message:  "No interfaces found in LAG",
			Expected: expected.sorted(),
			Actual:   "",
		}
	}

	for _, m := range lag.Members {
		if !m.ActorPortStatus.Set {
			return missingField(m.Name, "actorPortStatus")
		}
		if m.ActorPortStatus.Value != lacpBundled {
			return &MismatchError{
				Expected: lacpBundled,
				Actual:   m.ActorPortStatus.Value,
			}
		}
	}
	return nil
}

// MakeLAGStatusTestCase builds a LAG status test case.
func MakeLAGStatusTestCase(dut, name string, members []string) TestCase {
	list := make([]any, len(members))
	for i, m := range members {
		list[i] = m
	}
	return NewTestCase(LAGStatusTestCase, dut,
		map[string]any{"name": name},
		map[string]any{"interfaces": list})
}

// GenerateLAGStatus emits one test case per port-channel with at least one
// member, all of them bundled. Other port-channels are skipped.
func GenerateLAGStatus(snap *LACPSnapshot, dut string) []TestCase {
	var out []TestCase
	for _, pc := range snap.PortChannels {
		if len(pc.Members) == 0 || !allBundled(pc) {
			continue
		}
		out = append(out, MakeLAGStatusTestCase(dut, pc.Name, pc.MemberNames()))
	}
	return out
}

func allBundled(pc PortChannel) bool {
	for _, m := range pc.Members {
		if m.ActorPortStatus.Value != lacpBundled {
			return false
		}
	}
	return true
}

// LabelLAGStatus renders the port-channel name.
func LabelLAGStatus(tc TestCase) string {
	return tc.ParamOr("name", "?")
}
