package autoreply

import (
	"embed"

	"github.com/replyhub/replyhub/modules/autoreply/infrastructure/delivery"
	"github.com/replyhub/replyhub/modules/autoreply/infrastructure/llm"
	"github.com/replyhub/replyhub/modules/autoreply/infrastructure/persistence"
	"github.com/replyhub/replyhub/modules/autoreply/presentation/controllers"
	"github.com/replyhub/replyhub/modules/autoreply/services"
	"github.com/replyhub/replyhub/pkg/application"
	"github.com/replyhub/replyhub/pkg/configuration"
)

//go:embed infrastructure/persistence/schema/autoreply-schema.sql
var MigrationFiles embed.FS

func NewModule() application.Module {
	return &Module{}
}

type Module struct {
}

func (m *Module) Register(app application.Application) error {
	conf := configuration.Use()

	kbRepo := persistence.NewKnowledgeBaseRepository()
	settingsRepo := persistence.NewSettingsRepository()
	threadRepo := persistence.NewThreadRepository(app.Redis())

	settingsService := services.NewSettingsService(settingsRepo)
	kbService := services.NewKnowledgeBaseService(kbRepo)
	threadService := services.NewThreadService(threadRepo)

	provider := llm.NewOpenAIProvider(llm.OpenAIConfig{
		APIKey:      conf.OpenAI.APIKey,
		BaseURL:     conf.OpenAI.BaseURL,
		Model:       conf.OpenAI.Model,
		CallTimeout: conf.OpenAI.CallTimeout,
	})
	dispatcher := m.dispatcher(app, conf)

	engineOpts := []services.AutoReplyServiceOption{
		services.WithDispatchTimeout(conf.Delivery.Timeout),
	}
	if conf.ReplyCache.Enabled {
		engineOpts = append(engineOpts, services.WithReplyCache(
			services.NewReplyCache(app.Redis(), conf.ReplyCache.Prefix, conf.ReplyCache.TTL),
		))
	}

	app.RegisterServices(
		settingsService,
		kbService,
		threadService,
		services.NewAutoReplyService(
			settingsService,
			kbService,
			threadRepo,
			provider,
			dispatcher,
			app.EventPublisher(),
			engineOpts...,
		),
	)
	app.RegisterControllers(
		controllers.NewInboundAPIController(controllers.InboundAPIControllerConfig{App: app}),
	)
	app.RegisterSchema(&MigrationFiles)
	return nil
}

// dispatcher picks the HTTP delivery client when an endpoint is
// configured and falls back to log-only delivery otherwise.
func (m *Module) dispatcher(app application.Application, conf *configuration.Configuration) delivery.Dispatcher {
	if conf.Delivery.Endpoint != "" {
		return delivery.NewHTTPDispatcher(delivery.HTTPDispatcherConfig{
			Endpoint: conf.Delivery.Endpoint,
			Token:    conf.Delivery.Token,
			Timeout:  conf.Delivery.Timeout,
		})
	}
	return delivery.NewLogDispatcher(app.Logger())
}

func (m *Module) Name() string {
	return "autoreply"
}
