// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "github.com/nishantjr/kninja/internal/adapters/config"
	_ "github.com/nishantjr/kninja/internal/adapters/logger"
	_ "github.com/nishantjr/kninja/internal/adapters/proc"
	// Register the app node.
	_ "github.com/nishantjr/kninja/internal/app"
)
