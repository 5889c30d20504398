// Package testcases persists NRFU test cases, one document per domain.
package testcases

import (
	"errors"

	log "github.com/sirupsen/logrus"

	"github.com/cgast/nrfu/pkg/nrfu"
)

var logger = log.WithFields(log.Fields{
	"package": "testcases",
})

// ErrNotFound is returned by Load when a domain has no test case document.
var ErrNotFound = errors.New("no test cases for domain")

// Store loads and saves the test cases of each domain.
type Store interface {
	// Load returns the domain's test cases, or ErrNotFound.
	Load(domain string) ([]nrfu.TestCase, error)
	// Save replaces the domain's test cases.
	Save(domain string, cases []nrfu.TestCase) error
	// Domains lists the domains that have a document, sorted.
	Domains() ([]string, error)
	Close() error
}
