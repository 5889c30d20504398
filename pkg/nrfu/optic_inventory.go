package nrfu

import (
	"fmt"

	"github.com/tidwall/gjson"
)

// Optic inventory: the transceiver model in an interface's slot must equal
// expected.optic exactly. An empty expected optic means the slot must be
// empty.
const (
	OpticInventoryTestCase = "test-optic-inventory"
	OpticInventoryCommand  = "show inventory"
)

// XcvrSlot is one transceiver slot of "show inventory".
type XcvrSlot struct {
	Slot        string
	ModelName   Field
	SerialNum   string
	MfgName     string
	HardwareRev string
}

// InventorySnapshot is the parsed "xcvrSlots" section of "show inventory".
type InventorySnapshot struct {
	Slots []XcvrSlot
	index map[string]int
}

// ParseInventory parses the JSON output of "show inventory".
func ParseInventory(data []byte) (*InventorySnapshot, error) {
	obj, err := parseDocument(data, "xcvrSlots", false)
	if err != nil {
		return nil, err
	}
	snap := &InventorySnapshot{index: make(map[string]int)}
	eachEntry(obj, func(slot string, rec gjson.Result) {
		snap.index[slot] = len(snap.Slots)
		snap.Slots = append(snap.Slots, XcvrSlot{
			Slot:        slot,
			ModelName:   fieldOf(rec, "modelName"),
			SerialNum:   rec.Get("serialNum").String(),
			MfgName:     rec.Get("mfgName").String(),
			HardwareRev: rec.Get("hardwareRev").String(),
		})
	})
	return snap, nil
}

// Lookup returns the slot for a verbose interface name.
func (s *InventorySnapshot) Lookup(ifName string) (XcvrSlot, bool) {
	i, ok := s.index[InventorySlot(ifName)]
	if !ok {
		return XcvrSlot{}, false
	}
	return s.Slots[i], true
}

// ValidateOpticInventory checks the optic in params.interface's slot.
func ValidateOpticInventory(snap *InventorySnapshot, tc TestCase) error {
	ifName, err := tc.Param("interface")
	if err != nil {
		return err
	}
	expected, err := tc.ExpectedString("optic")
	if err != nil {
		return err
	}

	slot, ok := snap.Lookup(ifName)
	if !ok {
		return &MissingError{Message: "Interface not found", Missing: ifName}
	}
	if !slot.ModelName.Set {
		return missingField(ifName, "modelName")
	}

	actual := slot.ModelName.Value
	if actual == expected {
		return nil
	}

	// Wrong, absent and unwanted optics are all mismatches; only the message
	// tells them apart.
	var msg string
	switch {
	case expected == "":
		msg = fmt.Sprintf("No optic expected, but found on interface %s", ifName)
	case actual == "":
		msg = fmt.Sprintf("No optic found on interface %s", ifName)
	default:
		msg = fmt.Sprintf("Wrong optic found on interface %s", ifName)
	}
	return &MismatchError{Message: msg, Expected: expected, Actual: actual}
}

// MakeOpticInventoryTestCase builds an optic inventory test case.
func MakeOpticInventoryTestCase(dut, ifName, optic string) TestCase {
	return NewTestCase(OpticInventoryTestCase, dut,
		map[string]any{"interface": ifName},
		map[string]any{"optic": optic})
}

// GenerateOpticInventory emits one test case per slot, naming the interface
// "Ethernet<slot>". Slots whose key does not round-trip through
// InventorySlot are skipped.
func GenerateOpticInventory(snap *InventorySnapshot, dut string) []TestCase {
	var out []TestCase
	for _, s := range snap.Slots {
		if !s.ModelName.Set {
			continue
		}
		ifName := "Ethernet" + s.Slot
		if InventorySlot(ifName) != s.Slot {
			continue
		}
		out = append(out, MakeOpticInventoryTestCase(dut, ifName, s.ModelName.Value))
	}
	return out
}

// LabelOpticInventory renders "<interface>:<optic>", with "none" for an
// empty slot.
func LabelOpticInventory(tc TestCase) string {
	optic := tc.ExpectedOr("optic", "")
	if optic == "" {
		optic = "none"
	}
	return fmt.Sprintf("%s:%s", tc.ParamOr("interface", "?"), optic)
}
