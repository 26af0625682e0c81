//go:build tools

package tools

import (
	// Mock generation, see `go:generate` directives.
	_ "go.uber.org/mock/mockgen"
)
