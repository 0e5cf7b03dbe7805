package app

import (
	"context"

	"github.com/grindlemire/graft"

	"github.com/nishantjr/kninja/internal/adapters/config"
	"github.com/nishantjr/kninja/internal/adapters/logger"
	"github.com/nishantjr/kninja/internal/adapters/proc"
	"github.com/nishantjr/kninja/internal/core/ports"
)

// NodeID is the unique identifier for the main App graft node.
const NodeID graft.ID = "app.main"

func init() {
	graft.Register(graft.Node[*App]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			logger.NodeID,
			proc.NodeID,
		},
		Run: func(ctx context.Context) (*App, error) {
			loader, err := graft.Dep[ports.ConfigLoader](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			launcher, err := graft.Dep[ports.Launcher](ctx)
			if err != nil {
				return nil, err
			}
			return New(loader, log, launcher), nil
		},
	})
}
