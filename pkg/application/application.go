package application

import (
	"context"
	"embed"
	"io/fs"
	"path"
	"reflect"
	"strings"

	"github.com/go-faster/errors"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/replyhub/replyhub/pkg/eventbus"
	"github.com/sirupsen/logrus"
)

// Controller is a routable unit registered by a module.
type Controller interface {
	Key() string
	Register(r *mux.Router)
}

// Module wires its repositories, services and controllers into the application.
type Module interface {
	Name() string
	Register(app Application) error
}

type Application interface {
	Pool() *pgxpool.Pool
	Redis() *redis.Client
	Logger() *logrus.Logger
	EventPublisher() eventbus.EventBus

	RegisterServices(services ...interface{})
	Service(service interface{}) interface{}
	RegisterControllers(controllers ...Controller)
	Controllers() []Controller
	RegisterSchema(fs *embed.FS)
	SchemaFS() []*embed.FS
	ApplySchemas(ctx context.Context) error
}

type ApplicationOptions struct {
	Pool     *pgxpool.Pool
	Redis    *redis.Client
	EventBus eventbus.EventBus
	Logger   *logrus.Logger
}

func New(opts *ApplicationOptions) Application {
	return &application{
		pool:     opts.Pool,
		rdb:      opts.Redis,
		eventBus: opts.EventBus,
		logger:   opts.Logger,
		services: map[reflect.Type]interface{}{},
	}
}

type application struct {
	pool        *pgxpool.Pool
	rdb         *redis.Client
	eventBus    eventbus.EventBus
	logger      *logrus.Logger
	services    map[reflect.Type]interface{}
	controllers []Controller
	schemaFS    []*embed.FS
}

func (a *application) Pool() *pgxpool.Pool {
	return a.pool
}

func (a *application) Redis() *redis.Client {
	return a.rdb
}

func (a *application) Logger() *logrus.Logger {
	return a.logger
}

func (a *application) EventPublisher() eventbus.EventBus {
	return a.eventBus
}

func (a *application) RegisterServices(services ...interface{}) {
	for _, service := range services {
		a.services[reflect.TypeOf(service)] = service
	}
}

// Service resolves a registered service by example value or type.
func (a *application) Service(service interface{}) interface{} {
	t := reflect.TypeOf(service)
	if svc, ok := a.services[t]; ok {
		return svc
	}
	if t.Kind() != reflect.Ptr {
		if svc, ok := a.services[reflect.PointerTo(t)]; ok {
			return svc
		}
	}
	return nil
}

func (a *application) RegisterControllers(controllers ...Controller) {
	a.controllers = append(a.controllers, controllers...)
}

func (a *application) Controllers() []Controller {
	return a.controllers
}

func (a *application) RegisterSchema(fs *embed.FS) {
	a.schemaFS = append(a.schemaFS, fs)
}

func (a *application) SchemaFS() []*embed.FS {
	return a.schemaFS
}

// ApplySchemas executes every registered schema file against the pool
// in module registration order. Schema files are written idempotent,
// so reapplying on every boot is safe.
func (a *application) ApplySchemas(ctx context.Context) error {
	for _, fsys := range a.schemaFS {
		statements, err := collectSchemaStatements(fsys)
		if err != nil {
			return err
		}
		for _, stmt := range statements {
			if _, err := a.pool.Exec(ctx, stmt); err != nil {
				return errors.Wrapf(err, "failed to apply schema statement %q", firstLine(stmt))
			}
		}
	}
	return nil
}

// collectSchemaStatements reads the .sql files of a schema FS and
// splits them into single statements. The split is on semicolons;
// schema files must not embed them inside literals.
func collectSchemaStatements(fsys fs.FS) ([]string, error) {
	var statements []string
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || path.Ext(p) != ".sql" {
			return nil
		}
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return errors.Wrapf(err, "failed to read schema file %s", p)
		}
		for _, chunk := range strings.Split(string(data), ";") {
			if stmt := strings.TrimSpace(chunk); stmt != "" {
				statements = append(statements, stmt)
			}
		}
		return nil
	})
	return statements, err
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
