package core

import (
	"embed"

	"github.com/replyhub/replyhub/modules/core/infrastructure/persistence"
	"github.com/replyhub/replyhub/modules/core/services"
	"github.com/replyhub/replyhub/pkg/application"
)

//go:embed infrastructure/persistence/schema/core-schema.sql
var MigrationFiles embed.FS

func NewModule() application.Module {
	return &Module{}
}

type Module struct {
}

func (m *Module) Register(app application.Application) error {
	tenantRepo := persistence.NewTenantRepository()
	app.RegisterServices(
		services.NewTenantService(tenantRepo),
	)
	app.RegisterSchema(&MigrationFiles)
	return nil
}

func (m *Module) Name() string {
	return "core"
}
