package ports

import (
	"context"

	"github.com/nishantjr/kninja/internal/core/domain"
)

// ConfigLoader parses a project configuration file into a validated project
// description, with suite globs already resolved.
//
//go:generate go run go.uber.org/mock/mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	Load(ctx context.Context, path string) (*domain.ProjectSpec, error)
}
