//go:build tools

// Package tools pins build-time tool dependencies.
package tools

import (
	_ "go.uber.org/mock/mockgen"
)
