package nrfu

import (
	"encoding/json"
	"fmt"
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// snapshotBuilder renders a random device snapshot from a list of state
// indexes.
type snapshotBuilder struct {
	domain string
	build  func(states []int) map[string]any
}

var snapshotBuilders = []snapshotBuilder{
	{
		domain: InterfaceStatusTestCase,
		build: func(states []int) map[string]any {
			names := []string{"connected", "disabled", "notconnect", "errdisabled"}
			ifaces := map[string]any{}
			for i, s := range states {
				ifaces[fmt.Sprintf("Ethernet%d", i+1)] = map[string]any{"interfaceStatus": names[s%len(names)]}
			}
			return map[string]any{"interfaces": ifaces}
		},
	},
	{
		domain: LAGStatusTestCase,
		build: func(states []int) map[string]any {
			names := []string{"bundled", "noAgg", "bundled", "bundled"}
			members := map[string]any{}
			for i, s := range states {
				members[fmt.Sprintf("Ethernet%d", i+1)] = map[string]any{"actorPortStatus": names[s%len(names)]}
			}
			return map[string]any{"portChannels": map[string]any{
				"Port-Channel1": map[string]any{"interfaces": members},
				"Port-Channel2": map[string]any{"interfaces": map[string]any{}},
			}}
		},
	},
	{
		domain: MLAGInterfaceStatusTestCase,
		build: func(states []int) map[string]any {
			names := []string{"active-full", "inactive", "active-partial", "disabled"}
			ifaces := map[string]any{}
			for i, s := range states {
				ifaces[fmt.Sprintf("%d", i+1)] = map[string]any{
					"localInterface": fmt.Sprintf("Port-Channel%d", i+1),
					"status":         names[s%len(names)],
				}
			}
			return map[string]any{"interfaces": ifaces}
		},
	},
	{
		domain: CablingTestCase,
		build: func(states []int) map[string]any {
			var nbrs []any
			for i, s := range states {
				nbrs = append(nbrs, map[string]any{
					"port":           fmt.Sprintf("Ethernet%d", s%4+1),
					"neighborDevice": fmt.Sprintf("SW-%d", i),
					"neighborPort":   fmt.Sprintf("Ethernet%d", i),
				})
			}
			if nbrs == nil {
				nbrs = []any{}
			}
			return map[string]any{"lldpNeighbors": nbrs}
		},
	},
	{
		domain: BGPNeighborTestCase,
		build: func(states []int) map[string]any {
			names := []string{"Established", "Active", "Idle", "Established"}
			peers := map[string]any{}
			for i, s := range states {
				peers[fmt.Sprintf("10.0.0.%d", i+1)] = map[string]any{"peerState": names[s%len(names)], "asn": "65000"}
			}
			return map[string]any{"vrfs": map[string]any{"default": map[string]any{"peers": peers}}}
		},
	},
	{
		domain: MLAGStatusTestCase,
		build: func(states []int) map[string]any {
			stateNames := []string{"active", "inactive", "disabled"}
			negNames := []string{"connected", "disconnected"}
			var st, neg int
			if len(states) > 0 {
				st = states[0]
			}
			if len(states) > 1 {
				neg = states[1]
			}
			return map[string]any{
				"state":          stateNames[st%len(stateNames)],
				"negStatus":      negNames[neg%len(negNames)],
				"domainId":       "mlag1",
				"localInterface": "Vlan4094",
				"peerLink":       "Port-Channel2000",
				"peerAddress":    "10.255.255.2",
			}
		},
	},
	{
		domain: OpticInventoryTestCase,
		build: func(states []int) map[string]any {
			models := []string{"QSFP28-LR4-100G", "QSFP28-SR4-100G", "", "SFP-10G-LR"}
			slots := map[string]any{}
			for i, s := range states {
				slots[fmt.Sprintf("%d", i+1)] = map[string]any{"modelName": models[s%len(models)]}
			}
			return map[string]any{"xcvrSlots": slots}
		},
	},
}

func TestGeneratedCasesValidate(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)
	reg := DefaultRegistry()

	for _, b := range snapshotBuilders {
		b := b
		d, err := reg.Resolve(b.domain)
		if err != nil {
			t.Fatalf("Resolve(%s): %v", b.domain, err)
		}

		properties.Property(b.domain+" baseline validates against its own snapshot", prop.ForAll(
			func(states []int) bool {
				data, err := json.Marshal(b.build(states))
				if err != nil {
					return false
				}
				cases, err := d.Generate(data, "dut")
				if err != nil {
					t.Logf("Generate: %v", err)
					return false
				}
				for _, tc := range cases {
					if err := d.Validate(data, tc); err != nil {
						t.Logf("%s: %v", d.Label(tc), err)
						return false
					}
				}
				return true
			},
			gen.SliceOf(gen.IntRange(0, 3)),
		))

		properties.Property(b.domain+" generation is deterministic", prop.ForAll(
			func(states []int) bool {
				data, err := json.Marshal(b.build(states))
				if err != nil {
					return false
				}
				first, err1 := d.Generate(data, "dut")
				second, err2 := d.Generate(data, "dut")
				return err1 == nil && err2 == nil && reflect.DeepEqual(first, second)
			},
			gen.SliceOf(gen.IntRange(0, 3)),
		))

		properties.Property(b.domain+" validation is repeatable", prop.ForAll(
			func(states []int) bool {
				data, err := json.Marshal(b.build(states))
				if err != nil {
					return false
				}
				cases, err := d.Generate(data, "dut")
				if err != nil {
					return false
				}
				for _, tc := range cases {
					for _, c := range []TestCase{tc, flipExpected(tc)} {
						first := outcomeOf(d.Validate(data, c))
						second := outcomeOf(d.Validate(data, c))
						if !reflect.DeepEqual(first, second) {
							t.Logf("%s: %+v then %+v", d.Label(c), first, second)
							return false
						}
					}
				}
				return true
			},
			gen.SliceOf(gen.IntRange(0, 3)),
		))
	}

	properties.TestingRun(t)
}

// validation is the comparable result of one Validate call.
type validation struct {
	failed  bool
	kind    Kind
	message string
	fields  map[string]any
}

func outcomeOf(err error) validation {
	if err == nil {
		return validation{}
	}
	kind, _ := KindOf(err)
	return validation{failed: true, kind: kind, message: Message(err), fields: Fields(err)}
}

// flipExpected returns a copy of tc whose expectation no longer matches
// what it was generated from.
func flipExpected(tc TestCase) TestCase {
	expected := make(map[string]any, len(tc.Expected))
	for k, v := range tc.Expected {
		expected[k] = v
	}
	if state, ok := expected["state"].(string); ok {
		if state == "up" {
			expected["state"] = "down"
		} else {
			expected["state"] = "up"
		}
	}
	if optic, ok := expected["optic"].(string); ok {
		if optic == "" {
			expected["optic"] = "QSFP28-SR4-100G"
		} else {
			expected["optic"] = ""
		}
	}
	out := tc
	out.Expected = expected
	return out
}
