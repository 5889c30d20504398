package protocol

import (
	"encoding/json"
	"errors"

	"github.com/cgast/nrfu/pkg/nrfu"
	"github.com/cgast/nrfu/pkg/verify"
)

// NewNRFUHandler creates a handler serving the verification methods backed
// by reg.
func NewNRFUHandler(reg *nrfu.Registry) *Handler {
	h := NewHandler()
	RegisterNRFU(h, reg)
	return h
}

// RegisterNRFU registers the domain, validate, generate, label and shorten
// methods on h.
func RegisterNRFU(h *Handler, reg *nrfu.Registry) {
	// domains.list
	h.Register(MethodDomainsList, func(params json.RawMessage) (any, *Error) {
		domains := reg.List()
		infos := make([]DomainInfo, len(domains))
		for i, d := range domains {
			infos[i] = DomainInfo{Name: d.Name(), Command: d.Command()}
		}
		return infos, nil
	})

	// nrfu.validate
	h.Register(MethodValidate, func(params json.RawMessage) (any, *Error) {
		p, perr := ParseParams[ValidateParams](params)
		if perr != nil {
			return nil, perr
		}
		d, rpcErr := resolveDomain(reg, p.Domain, p.TestCase)
		if rpcErr != nil {
			return nil, rpcErr
		}

		cr := verify.Check(d, p.Snapshot, p.TestCase)
		if cr.Status == verify.StatusError {
			return nil, errorFor(cr.Err)
		}
		return ValidateResult{
			Label:   cr.Label,
			Passed:  cr.Status == verify.StatusPass,
			Kind:    cr.Kind,
			Message: cr.Message,
			Fields:  cr.Fields,
		}, nil
	})

	// nrfu.generate
	h.Register(MethodGenerate, func(params json.RawMessage) (any, *Error) {
		p, perr := ParseParams[GenerateParams](params)
		if perr != nil {
			return nil, perr
		}
		d, rpcErr := resolveDomain(reg, p.Domain, nrfu.TestCase{})
		if rpcErr != nil {
			return nil, rpcErr
		}
		cases, err := d.Generate(p.Snapshot, p.DUT)
		if err != nil {
			return nil, errorFor(err)
		}
		if cases == nil {
			cases = []nrfu.TestCase{}
		}
		return GenerateResult{TestCases: cases}, nil
	})

	// nrfu.label
	h.Register(MethodLabel, func(params json.RawMessage) (any, *Error) {
		p, perr := ParseParams[LabelParams](params)
		if perr != nil {
			return nil, perr
		}
		d, rpcErr := resolveDomain(reg, p.Domain, p.TestCase)
		if rpcErr != nil {
			return nil, rpcErr
		}
		return LabelResult{Label: d.Label(p.TestCase)}, nil
	})

	// nrfu.shorten
	h.Register(MethodShorten, func(params json.RawMessage) (any, *Error) {
		p, perr := ParseParams[ShortenParams](params)
		if perr != nil {
			return nil, perr
		}
		out := make(map[string]string, len(p.Names))
		for _, name := range p.Names {
			out[name] = nrfu.ShortenIfName(name)
		}
		return ShortenResult{Names: out}, nil
	})
}

// resolveDomain picks the domain named explicitly, falling back to the test
// case's own tag.
func resolveDomain(reg *nrfu.Registry, name string, tc nrfu.TestCase) (nrfu.Domain, *Error) {
	if name == "" {
		name = tc.TestCase
	}
	if name == "" {
		return nil, &Error{Code: CodeInvalidParams, Message: "domain is required"}
	}
	d, err := reg.Resolve(name)
	if err != nil {
		return nil, &Error{Code: CodeDomainNotFound, Message: err.Error()}
	}
	return d, nil
}

// errorFor maps a validation error outside the failure taxonomy to an RPC
// error.
func errorFor(err error) *Error {
	code := CodeInternalError
	switch {
	case errors.Is(err, nrfu.ErrBadSnapshot):
		code = CodeBadSnapshot
	case errors.Is(err, nrfu.ErrInvalidTestCase):
		code = CodeInvalidTestCase
	case errors.Is(err, nrfu.ErrUnsupportedExpectation):
		code = CodeUnsupportedExpectation
	}
	return &Error{Code: code, Message: err.Error()}
}
