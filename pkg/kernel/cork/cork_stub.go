//go:build !cork

// Package cork provides a CGo-based remeshing backend binding the Cork
// boolean library. When the "cork" build tag is not set, this stub package
// is compiled instead, returning an error from New().
//
// Build with: go build -tags=cork
package cork

import (
	"errors"

	"github.com/chazu/callus/pkg/kernel"
)

// New returns an error indicating Cork is not available.
// Build with -tags=cork to enable.
func New() (kernel.Remesher, error) {
	return nil, errors.New("cork remesher not available: build with -tags=cork")
}
