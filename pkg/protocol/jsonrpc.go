package protocol

import (
	"encoding/json"

	"github.com/cgast/nrfu/pkg/nrfu"
)

// JSON-RPC 2.0 message types for agent mode communication.

// Request is a JSON-RPC 2.0 request.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id,omitempty"` // string or int; nil for notifications
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response is a JSON-RPC 2.0 response.
type Response struct {
	JSONRPC string `json:"jsonrpc"`
	ID      any    `json:"id,omitempty"`
	Result  any    `json:"result,omitempty"`
	Error   *Error `json:"error,omitempty"`
}

// Error is a JSON-RPC 2.0 error object.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return e.Message
}

// Standard JSON-RPC 2.0 error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// Application-specific error codes.
const (
	CodeDomainNotFound         = -32000
	CodeBadSnapshot            = -32001
	CodeInvalidTestCase        = -32002
	CodeUnsupportedExpectation = -32003
)

// Method constants for all supported JSON-RPC methods.
const (
	// Domain discovery.
	MethodDomainsList = "domains.list"

	// Verification.
	MethodValidate = "nrfu.validate"
	MethodGenerate = "nrfu.generate"
	MethodLabel    = "nrfu.label"

	// Interface name helpers.
	MethodShorten = "nrfu.shorten"
)

// NewResponse creates a successful response.
func NewResponse(id any, result any) Response {
	return Response{
		JSONRPC: "2.0",
		ID:      id,
		Result:  result,
	}
}

// NewErrorResponse creates an error response.
func NewErrorResponse(id any, code int, message string, data any) Response {
	return Response{
		JSONRPC: "2.0",
		ID:      id,
		Error: &Error{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// Parameter types.

// ValidateParams holds parameters for "nrfu.validate". Domain may be left
// empty when the test case carries its own test-case tag.
type ValidateParams struct {
	Domain   string          `json:"domain,omitempty"`
	Snapshot json.RawMessage `json:"snapshot"`
	TestCase nrfu.TestCase   `json:"testcase"`
}

// GenerateParams holds parameters for "nrfu.generate".
type GenerateParams struct {
	Domain   string          `json:"domain"`
	Snapshot json.RawMessage `json:"snapshot"`
	DUT      string          `json:"dut"`
}

// LabelParams holds parameters for "nrfu.label".
type LabelParams struct {
	Domain   string        `json:"domain,omitempty"`
	TestCase nrfu.TestCase `json:"testcase"`
}

// ShortenParams holds parameters for "nrfu.shorten".
type ShortenParams struct {
	Names []string `json:"names"`
}

// Result types.

// DomainInfo describes a domain in the domains.list response.
type DomainInfo struct {
	Name    string `json:"name"`
	Command string `json:"command"`
}

// ValidateResult holds the outcome of one test case. Kind is empty when the
// case passed.
type ValidateResult struct {
	Label   string         `json:"label"`
	Passed  bool           `json:"passed"`
	Kind    nrfu.Kind      `json:"kind,omitempty"`
	Message string         `json:"message,omitempty"`
	Fields  map[string]any `json:"fields,omitempty"`
}

// GenerateResult holds the test cases generated from a snapshot.
type GenerateResult struct {
	TestCases []nrfu.TestCase `json:"testcases"`
}

// LabelResult holds a report label.
type LabelResult struct {
	Label string `json:"label"`
}

// ShortenResult maps each given name to its canonical short form.
type ShortenResult struct {
	Names map[string]string `json:"names"`
}
