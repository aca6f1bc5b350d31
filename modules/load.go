package modules

import (
	"github.com/replyhub/replyhub/modules/autoreply"
	"github.com/replyhub/replyhub/modules/core"
	"github.com/replyhub/replyhub/pkg/application"
)

var BuiltInModules = []application.Module{
	core.NewModule(),
	autoreply.NewModule(),
}

// Load registers every built-in module with the application.
func Load(app application.Application, externalModules ...application.Module) error {
	for _, module := range append(BuiltInModules, externalModules...) {
		if err := module.Register(app); err != nil {
			return err
		}
	}
	return nil
}
