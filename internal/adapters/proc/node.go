package proc

import (
	"context"

	"github.com/grindlemire/graft"

	"github.com/nishantjr/kninja/internal/core/ports"
)

const NodeID graft.ID = "adapter.launcher"

func init() {
	graft.Register(graft.Node[ports.Launcher]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(ctx context.Context) (ports.Launcher, error) {
			return NewLauncher(), nil
		},
	})
}
