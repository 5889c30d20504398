package nrfu

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func loadSnapshot(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("read %s: %v", name, err)
	}
	return data
}

// checkResult compares a validation result with an expected kind; an empty
// kind means the test case must pass.
func checkResult(t *testing.T, err error, want Kind) {
	t.Helper()
	if want == "" {
		if err != nil {
			t.Fatalf("expected pass, got %v", err)
		}
		return
	}
	got, ok := KindOf(err)
	if !ok {
		t.Fatalf("expected %s error, got %v", want, err)
	}
	if got != want {
		t.Fatalf("expected %s error, got %s: %v", want, got, err)
	}
}

func TestValidateInterfaceStatus(t *testing.T) {
	snap, err := ParseInterfaces(loadSnapshot(t, "show-interfaces.json"))
	if err != nil {
		t.Fatalf("ParseInterfaces: %v", err)
	}

	tests := []struct {
		name    string
		ifName  string
		state   string
		want    Kind
		message string
	}{
		{"up and connected", "Ethernet49/1", "up", "", ""},
		{"down and disabled", "Ethernet1", "down", "", ""},
		{"down but connected", "Management1", "down", KindMismatch, "Interface Management1 not down as expected"},
		{"up but notconnect", "Ethernet50/1", "up", KindMismatch, "Interface Ethernet50/1 not up as expected"},
		{"up but disabled", "Ethernet1", "up", KindMismatch, "Interface Ethernet1 not up as expected"},
		{"unknown interface", "Ethernet99", "up", KindMissing, "No status for interface"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateInterfaceStatus(snap, MakeInterfaceStatusTestCase("dut", tt.ifName, tt.state))
			checkResult(t, err, tt.want)
			if tt.message != "" && Message(err) != tt.message {
				t.Errorf("message = %q, want %q", Message(err), tt.message)
			}
		})
	}
}

func TestGenerateInterfaceStatus(t *testing.T) {
	snap, err := ParseInterfaces(loadSnapshot(t, "show-interfaces.json"))
	if err != nil {
		t.Fatalf("ParseInterfaces: %v", err)
	}

	cases := GenerateInterfaceStatus(snap, "lf01")
	var labels []string
	for _, tc := range cases {
		labels = append(labels, LabelInterfaceStatus(tc))
		if tc.DUT != "lf01" {
			t.Errorf("dut = %q, want lf01", tc.DUT)
		}
	}
	want := []string{"Ethernet1:down", "Ethernet49/1:up", "Management1:up"}
	if !reflect.DeepEqual(labels, want) {
		t.Errorf("labels = %v, want %v", labels, want)
	}
}

func TestValidateCabling(t *testing.T) {
	snap, err := ParseLLDPNeighbors(loadSnapshot(t, "show-lldp-neighbors.json"))
	if err != nil {
		t.Fatalf("ParseLLDPNeighbors: %v", err)
	}

	tests := []struct {
		name     string
		ifName   string
		host     string
		port     string
		want     Kind
		message  string
		expected string
	}{
		{"exact", "Ethernet49/1", "switch-21.BLD1", "Ethernet1", "", "", ""},
		{"case insensitive", "Ethernet49/1", "SWITCH-21.bld1", "ethernet1", "", "", ""},
		{"wrong device", "Ethernet49/1", "switch-99.BLD1", "Ethernet1", KindMismatch,
			"Wrong remote-device: switch-21.BLD1", "switch-99.BLD1:Ethernet1"},
		{"wrong both", "Ethernet49/1", "switch-99.BLD1", "Ethernet2", KindMismatch,
			"Wrong remote-device: switch-21.BLD1, Wrong remote-interface: Ethernet1", ""},
		{"no neighbor", "Ethernet3", "switch-21.BLD1", "Ethernet1", KindMissing, "Interface not found", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCabling(snap, MakeCablingTestCase("dut", tt.ifName, tt.host, tt.port, ""))
			checkResult(t, err, tt.want)
			if tt.message != "" && Message(err) != tt.message {
				t.Errorf("message = %q, want %q", Message(err), tt.message)
			}
			if tt.expected != "" && Fields(err)["expected"] != tt.expected {
				t.Errorf("expected field = %v, want %q", Fields(err)["expected"], tt.expected)
			}
		})
	}
}

func TestCablingDuplicatePort(t *testing.T) {
	data := []byte(`{"lldpNeighbors": [
		{"port": "Ethernet1", "neighborDevice": "a", "neighborPort": "Ethernet1"},
		{"port": "Ethernet1", "neighborDevice": "b", "neighborPort": "Ethernet2"}
	]}`)
	snap, err := ParseLLDPNeighbors(data)
	if err != nil {
		t.Fatalf("ParseLLDPNeighbors: %v", err)
	}

	cases := GenerateCabling(snap, "dut")
	if len(cases) != 1 {
		t.Fatalf("expected 1 test case, got %d", len(cases))
	}
	if got := LabelCabling(cases[0]); got != "Ethernet1<[role=na]->a:Ethernet1" {
		t.Errorf("label = %q", got)
	}
	if err := ValidateCabling(snap, cases[0]); err != nil {
		t.Errorf("generated test case failed: %v", err)
	}
}

func TestValidateLAGStatus(t *testing.T) {
	snap, err := ParseLACPNeighbors(loadSnapshot(t, "show-lacp-neighbor.json"))
	if err != nil {
		t.Fatalf("ParseLACPNeighbors: %v", err)
	}

	t.Run("pass", func(t *testing.T) {
		tc := MakeLAGStatusTestCase("dut", "Port-Channel2000", []string{"Ethernet52", "Ethernet51"})
		checkResult(t, ValidateLAGStatus(snap, tc), "")
	})

	t.Run("surplus member", func(t *testing.T) {
		tc := MakeLAGStatusTestCase("dut", "Port-Channel2000", []string{"Ethernet51"})
		err := ValidateLAGStatus(snap, tc)
		checkResult(t, err, KindUnexpected)
		var ue *UnexpectedError
		if !errors.As(err, &ue) || !reflect.DeepEqual(ue.Unexpected, []string{"Ethernet52"}) {
			t.Errorf("unexpected = %v", err)
		}
	})

	t.Run("missing member", func(t *testing.T) {
		tc := MakeLAGStatusTestCase("dut", "Port-Channel2000", []string{"Ethernet51", "Ethernet53"})
		err := ValidateLAGStatus(snap, tc)
		checkResult(t, err, KindMismatch)
		f := Fields(err)
		if !reflect.DeepEqual(f["expected"], []string{"Ethernet51", "Ethernet53"}) {
			t.Errorf("expected = %v", f["expected"])
		}
		if !reflect.DeepEqual(f["actual"], []string{"Ethernet51", "Ethernet52"}) {
			t.Errorf("actual = %v", f["actual"])
		}
	})

	t.Run("unknown lag", func(t *testing.T) {
		tc := MakeLAGStatusTestCase("dut", "Port-Channel9", []string{"Ethernet1"})
		checkResult(t, ValidateLAGStatus(snap, tc), KindMissing)
	})

	t.Run("member not bundled", func(t *testing.T) {
		tc := MakeLAGStatusTestCase("dut", "Port-Channel10", []string{"Ethernet10"})
		err := ValidateLAGStatus(snap, tc)
		checkResult(t, err, KindMismatch)
		if f := Fields(err); f["expected"] != "bundled" || f["actual"] != "noAgg" {
			t.Errorf("fields = %v", f)
		}
	})

	t.Run("empty lag", func(t *testing.T) {
		tc := MakeLAGStatusTestCase("dut", "Port-Channel20", nil)
		err := ValidateLAGStatus(snap, tc)
		checkResult(t, err, KindMismatch)
		if Message(err) != "No interfaces found in LAG" {
			t.Errorf("message = %q", Message(err))
		}
	})
}

func TestGenerateLAGStatus(t *testing.T) {
	snap, err := ParseLACPNeighbors(loadSnapshot(t, "show-lacp-neighbor.json"))
	if err != nil {
		t.Fatalf("ParseLACPNeighbors: %v", err)
	}

	cases := GenerateLAGStatus(snap, "dut")
	if len(cases) != 1 {
		t.Fatalf("expected only the healthy LAG, got %d test cases", len(cases))
	}
	if LabelLAGStatus(cases[0]) != "Port-Channel2000" {
		t.Errorf("label = %q", LabelLAGStatus(cases[0]))
	}
	members, _ := cases[0].ExpectedList("interfaces")
	if !reflect.DeepEqual(members, []string{"Ethernet51", "Ethernet52"}) {
		t.Errorf("members = %v", members)
	}
}

func TestValidateMLAGStatus(t *testing.T) {
	snap, err := ParseMLAG(loadSnapshot(t, "show-mlag.json"))
	if err != nil {
		t.Fatalf("ParseMLAG: %v", err)
	}

	tc := MakeMLAGStatusTestCase("dut", "MLAG_CTRLVLAN", "Vlan4094", "Port-Channel2000", "192.168.255.2")
	checkResult(t, ValidateMLAGStatus(snap, tc), "")

	down := MakeMLAGStatusTestCase("dut", "", "", "", "")
	down.Expected["state"] = "down"
	if err := ValidateMLAGStatus(snap, down); !errors.Is(err, ErrUnsupportedExpectation) {
		t.Errorf("expected ErrUnsupportedExpectation, got %v", err)
	}

	inactive, err := ParseMLAG([]byte(`{"state": "inactive", "negStatus": "connected"}`))
	if err != nil {
		t.Fatalf("ParseMLAG: %v", err)
	}
	err = ValidateMLAGStatus(inactive, tc)
	checkResult(t, err, KindMismatch)
	if got := Fields(err)["actual"]; !reflect.DeepEqual(got, []string{"inactive", "connected"}) {
		t.Errorf("actual = %v", got)
	}

	disabled, err := ParseMLAG([]byte(`{"state": "disabled"}`))
	if err != nil {
		t.Fatalf("ParseMLAG: %v", err)
	}
	checkResult(t, ValidateMLAGStatus(disabled, tc), KindMissing)
	if len(GenerateMLAGStatus(disabled, "dut")) != 0 {
		t.Error("disabled MLAG should generate nothing")
	}
}

func TestGenerateMLAGStatus(t *testing.T) {
	snap, err := ParseMLAG(loadSnapshot(t, "show-mlag.json"))
	if err != nil {
		t.Fatalf("ParseMLAG: %v", err)
	}

	cases := GenerateMLAGStatus(snap, "dut")
	if len(cases) != 1 {
		t.Fatalf("expected 1 test case, got %d", len(cases))
	}
	tc := cases[0]
	if tc.ParamOr("domain", "") != "MLAG_CTRLVLAN" || tc.ParamOr("peer_ip", "") != "192.168.255.2" {
		t.Errorf("params = %v", tc.Params)
	}
	if LabelMLAGStatus(tc) != "Port-Channel2000" {
		t.Errorf("label = %q", LabelMLAGStatus(tc))
	}
}

func TestValidateMLAGInterfaceStatus(t *testing.T) {
	snap, err := ParseMLAGInterfaces(loadSnapshot(t, "show-mlag-interfaces.json"))
	if err != nil {
		t.Fatalf("ParseMLAGInterfaces: %v", err)
	}

	tests := []struct {
		id, state string
		want      Kind
	}{
		{"300", "up", ""},
		{"301", "down", ""},
		{"301", "up", KindMismatch},
		{"300", "down", KindMismatch},
		{"302", "up", KindMismatch},
		{"302", "down", KindMismatch},
		{"999", "up", KindMissing},
	}

	for _, tt := range tests {
		t.Run(tt.id+"/"+tt.state, func(t *testing.T) {
			tc := MakeMLAGInterfaceStatusTestCase("dut", tt.id, "Port-Channel"+tt.id, "", tt.state)
			checkResult(t, ValidateMLAGInterfaceStatus(snap, tc), tt.want)
		})
	}

	err = ValidateMLAGInterfaceStatus(snap, MakeMLAGInterfaceStatusTestCase("dut", "999", "", "", ""))
	if Message(err) != "MLAG 999 not found" {
		t.Errorf("message = %q", Message(err))
	}
}

func TestMakeMLAGInterfaceStatusDefaults(t *testing.T) {
	tc := MakeMLAGInterfaceStatusTestCase("dut", "300", "Port-Channel300", "", "")
	if tc.ParamOr("peer_interface", "") != "Port-Channel300" {
		t.Errorf("peer_interface = %v", tc.Params["peer_interface"])
	}
	if LabelMLAGInterfaceStatus(tc) != "300:up" {
		t.Errorf("label = %q", LabelMLAGInterfaceStatus(tc))
	}
}

func TestValidateOpticInventory(t *testing.T) {
	snap, err := ParseInventory(loadSnapshot(t, "show-inventory.json"))
	if err != nil {
		t.Fatalf("ParseInventory: %v", err)
	}

	tests := []struct {
		name    string
		ifName  string
		optic   string
		want    Kind
		message string
	}{
		{"match", "Ethernet60", "QSFP28-LR4-100G", "", ""},
		{"sub-port name", "Ethernet49/1", "QSFP28-SR4-100G", "", ""},
		{"empty slot expected", "Ethernet61", "", "", ""},
		{"wrong optic", "Ethernet60", "QSFP28-SR4-100G", KindMismatch, "Wrong optic found on interface Ethernet60"},
		{"optic absent", "Ethernet61", "QSFP28-LR4-100G", KindMismatch, "No optic found on interface Ethernet61"},
		{"optic unwanted", "Ethernet60", "", KindMismatch, "No optic expected, but found on interface Ethernet60"},
		{"no slot", "Ethernet7", "QSFP28-LR4-100G", KindMissing, "Interface not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOpticInventory(snap, MakeOpticInventoryTestCase("dut", tt.ifName, tt.optic))
			checkResult(t, err, tt.want)
			if tt.message != "" && Message(err) != tt.message {
				t.Errorf("message = %q, want %q", Message(err), tt.message)
			}
		})
	}
}

func TestLabelOpticInventory(t *testing.T) {
	if got := LabelOpticInventory(MakeOpticInventoryTestCase("dut", "Ethernet61", "")); got != "Ethernet61:none" {
		t.Errorf("label = %q", got)
	}
	if got := LabelOpticInventory(MakeOpticInventoryTestCase("dut", "Ethernet60", "QSFP28-LR4-100G")); got != "Ethernet60:QSFP28-LR4-100G" {
		t.Errorf("label = %q", got)
	}
}

func TestValidateBGPNeighbor(t *testing.T) {
	snap, err := ParseBGPSummary(loadSnapshot(t, "show-ip-bgp-summary.json"))
	if err != nil {
		t.Fatalf("ParseBGPSummary: %v", err)
	}
	if snap.RouterID != "10.127.0.9" {
		t.Errorf("router id = %q", snap.RouterID)
	}

	checkResult(t, ValidateBGPNeighbor(snap, MakeBGPNeighborTestCase("dut", "10.127.1.0", "", "", "")), "")
	checkResult(t, ValidateBGPNeighbor(snap, MakeBGPNeighborTestCase("dut", "10.127.1.2", "", "", "")), KindMismatch)
	checkResult(t, ValidateBGPNeighbor(snap, MakeBGPNeighborTestCase("dut", "10.127.1.4", "", "", "")), KindMissing)

	cases := GenerateBGPNeighbor(snap, "dut")
	if len(cases) != 1 {
		t.Fatalf("expected 1 test case, got %d", len(cases))
	}
	if got := LabelBGPNeighbor(cases[0]); got != "spine1 role=na via=10.127.1.0" {
		t.Errorf("label = %q", got)
	}
	if cases[0].ParamOr("peer_asn", "") != "65000" {
		t.Errorf("peer_asn = %v", cases[0].Params["peer_asn"])
	}
}

func TestMissingAttribute(t *testing.T) {
	snap, err := ParseInterfaces([]byte(`{"interfaces": {"Ethernet1": {"description": "x"}}}`))
	if err != nil {
		t.Fatalf("ParseInterfaces: %v", err)
	}

	err = ValidateInterfaceStatus(snap, MakeInterfaceStatusTestCase("dut", "Ethernet1", "up"))
	checkResult(t, err, KindMissing)
	if got := Fields(err)["missing"]; got != "Ethernet1.interfaceStatus" {
		t.Errorf("missing = %v", got)
	}
}

func TestParseBadSnapshot(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `{"interfaces":`},
		{"no container", `{"other": {}}`},
		{"container is a list", `{"interfaces": []}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseInterfaces([]byte(tt.data))
			if !errors.Is(err, ErrBadSnapshot) {
				t.Errorf("expected ErrBadSnapshot, got %v", err)
			}
		})
	}

	if _, err := ParseLLDPNeighbors([]byte(`{"lldpNeighbors": {}}`)); !errors.Is(err, ErrBadSnapshot) {
		t.Errorf("expected ErrBadSnapshot for object neighbor list, got %v", err)
	}
	if _, err := ParseMLAG([]byte(`[]`)); !errors.Is(err, ErrBadSnapshot) {
		t.Errorf("expected ErrBadSnapshot for list document, got %v", err)
	}
}

func TestDomainAdapter(t *testing.T) {
	reg := DefaultRegistry()
	d, err := reg.Resolve(InterfaceStatusTestCase)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if d.Command() != InterfaceStatusCommand {
		t.Errorf("command = %q", d.Command())
	}

	data := loadSnapshot(t, "show-interfaces.json")

	wrong := MakeCablingTestCase("dut", "Ethernet1", "a", "b", "")
	if err := d.Validate(data, wrong); !errors.Is(err, ErrInvalidTestCase) {
		t.Errorf("expected ErrInvalidTestCase for foreign test case, got %v", err)
	}

	if err := d.Validate([]byte("{"), MakeInterfaceStatusTestCase("dut", "Ethernet1", "down")); !errors.Is(err, ErrBadSnapshot) {
		t.Errorf("expected ErrBadSnapshot, got %v", err)
	}

	cases, err := d.Generate(data, "dut")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for _, tc := range cases {
		if err := d.Validate(data, tc); err != nil {
			t.Errorf("%s: %v", d.Label(tc), err)
		}
	}
}
