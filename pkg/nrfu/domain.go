package nrfu

import "fmt"

// Domain is one category of device state that can be verified. The harness
// drives every domain through this interface: fetch the output of Command,
// then Validate each test case against it, or Generate a baseline from it.
type Domain interface {
	// Name is the test-case tag, e.g. "test-interface-status".
	Name() string
	// Command is the show command whose JSON output is the snapshot.
	Command() string

	// Validate checks one test case against a raw snapshot. It returns nil
	// when the test case passes, a *MissingError, *UnexpectedError or
	// *MismatchError when the device differs from the expectation, and any
	// other error when the snapshot or test case itself is unusable.
	Validate(snapshot []byte, tc TestCase) error
	// Generate turns a raw snapshot into the test cases describing it.
	Generate(snapshot []byte, dut string) ([]TestCase, error)
	// Label returns a short name for reports.
	Label(tc TestCase) string
}

// domain adapts a typed parse/validate/generate/label set to Domain.
type domain[S any] struct {
	name     string
	command  string
	parse    func([]byte) (S, error)
	validate func(S, TestCase) error
	generate func(S, string) []TestCase
	label    func(TestCase) string
}

func (d *domain[S]) Name() string    { return d.name }
func (d *domain[S]) Command() string { return d.command }

func (d *domain[S]) Validate(snapshot []byte, tc TestCase) error {
	if tc.TestCase != "" && tc.TestCase != d.name {
		return fmt.Errorf("%w: test-case %q given to %s", ErrInvalidTestCase, tc.TestCase, d.name)
	}
	snap, err := d.parse(snapshot)
	if err != nil {
		return fmt.Errorf("%s: %w", d.command, err)
	}
	return d.validate(snap, tc)
}

func (d *domain[S]) Generate(snapshot []byte, dut string) ([]TestCase, error) {
	snap, err := d.parse(snapshot)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", d.command, err)
	}
	return d.generate(snap, dut), nil
}

func (d *domain[S]) Label(tc TestCase) string { return d.label(tc) }

// Domains returns the built-in domains in their conventional run order.
func Domains() []Domain {
	return []Domain{
		&domain[*InventorySnapshot]{
			name:     OpticInventoryTestCase,
			command:  OpticInventoryCommand,
			parse:    ParseInventory,
			validate: ValidateOpticInventory,
			generate: GenerateOpticInventory,
			label:    LabelOpticInventory,
		},
		&domain[*InterfacesSnapshot]{
			name:     InterfaceStatusTestCase,
			command:  InterfaceStatusCommand,
			parse:    ParseInterfaces,
			validate: ValidateInterfaceStatus,
			generate: GenerateInterfaceStatus,
			label:    LabelInterfaceStatus,
		},
		&domain[*LLDPSnapshot]{
			name:     CablingTestCase,
			command:  CablingCommand,
			parse:    ParseLLDPNeighbors,
			validate: ValidateCabling,
			generate: GenerateCabling,
			label:    LabelCabling,
		},
		&domain[*LACPSnapshot]{
			name:     LAGStatusTestCase,
			command:  LAGStatusCommand,
			parse:    ParseLACPNeighbors,
			validate: ValidateLAGStatus,
			generate: GenerateLAGStatus,
			label:    LabelLAGStatus,
		},
		&domain[*MLAGSnapshot]{
			name:     MLAGStatusTestCase,
			command:  MLAGStatusCommand,
			parse:    ParseMLAG,
			validate: ValidateMLAGStatus,
			generate: GenerateMLAGStatus,
			label:    LabelMLAGStatus,
		},
		&domain[*MLAGInterfacesSnapshot]{
			name:     MLAGInterfaceStatusTestCase,
			command:  MLAGInterfaceStatusCommand,
			parse:    ParseMLAGInterfaces,
			validate: ValidateMLAGInterfaceStatus,
			generate: GenerateMLAGInterfaceStatus,
			label:    LabelMLAGInterfaceStatus,
		},
		&domain[*BGPSummarySnapshot]{
			name:     BGPNeighborTestCase,
			command:  BGPNeighborCommand,
			parse:    ParseBGPSummary,
			validate: ValidateBGPNeighbor,
			generate: GenerateBGPNeighbor,
			label:    LabelBGPNeighbor,
		},
	}
}
