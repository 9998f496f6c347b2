// Package hilt is a type-safe dependency injection container whose lifecycle
// follows construction order.
//
// Singletons are built lazily, on first resolution. Each one is recorded the
// moment its provider returns, before any caller sees it. A dependency is
// always finished before the component that needs it, so the record is a
// valid dependency order no matter which component was requested first.
// Start runs start hooks along that record and Stop runs stop hooks along it
// in reverse. Every hook runs at most once.
//
// # Quick Start
//
//	c := hilt.New()
//
//	hilt.Provide(c, func(ctx context.Context, r hilt.Resolver) (*Config, error) {
//	    return &Config{Port: 8080}, nil
//	})
//
//	hilt.Provide(c, func(ctx context.Context, r hilt.Resolver) (*Server, error) {
//	    cfg, err := hilt.InvokeCtx[*Config](ctx, c)
//	    if err != nil {
//	        return nil, err
//	    }
//	    return &Server{config: cfg}, nil
//	})
//
//	server := hilt.MustInvoke[*Server](c) // builds *Config, then *Server
//	c.Run(ctx)
//
// Providers should pass their own ctx to nested Invoke calls. The context
// carries the resolution chain used to report circular dependencies.
//
// # Providers
//
//	hilt.Provide[T](c, provider)           // Register a provider
//	hilt.ProvideValue[T](c, value)         // Register an existing value
//	hilt.ProvideNamed[T](c, "name", prov)  // Register a named provider
//
// A value registered with ProvideValue joins the lifecycle the first time it
// is resolved.
//
// # Auto-Wiring
//
// Constructor auto-wiring resolves function parameters by type:
//
//	func NewUserService(db *Database, log *Logger) *UserService {
//	    return &UserService{db: db, log: log}
//	}
//	hilt.ProvideFunc[*UserService](c, NewUserService)
//
// Struct tag injection uses the `hilt` tag:
//
//	type UserService struct {
//	    DB     *Database `hilt:""`           // inject by type
//	    Log    *Logger   `hilt:"appLogger"`  // inject by name
//	    Cache  *Cache    `hilt:",optional"`  // optional dependency
//	}
//	hilt.ProvideStruct[*UserService](c)
//
// # Resolution
//
//	svc, err := hilt.Invoke[*Service](c)
//	svc := hilt.MustInvoke[*Service](c)
//	cache := hilt.InvokeOptional[*Cache](c).OrElse(defaultCache)
//
// # Lifecycle
//
// A singleton gets hooks from three places, in this order: WithOnStart and
// WithOnStop options, a Lifecycle() method (LifecycleAware), and its own
// Start(ctx) error and Stop(ctx) error methods (Starter, Stopper):
//
//	hilt.ProvideFunc[*Server](c, NewServer,
//	    hilt.WithOnStart(func(ctx context.Context) error {
//	        return server.Listen()
//	    }),
//	)
//
//	c.Start(ctx)  // start hooks in construction order
//	c.Stop(ctx)   // stop hooks in reverse construction order
//	c.Run(ctx)    // Start, wait for SIGINT/SIGTERM or ctx, Stop
//
// Start stops at the first failing hook and rolls nothing back. Stop visits
// every component and returns all failures together; StopFailures lists them.
// The container moves from NotStarted to Started to Stopped and never back.
//
// A singleton built after Start has returned, even after a failed Start, runs
// its start hooks right away, before it is handed to the caller. If one of
// them fails, that resolution and every later one for the same key return the
// startup error. Building a singleton after Stop has begun fails with a
// CONTAINER_STOPPED error.
//
// Use WithEager to construct every singleton in dependency order before the
// start hooks run. Only singletons take part in the lifecycle; hook options
// on Transient or Request providers are rejected.
//
// # Timeouts
//
//	c := hilt.New(hilt.WithStartTimeout(10*time.Second), hilt.WithShutdownTimeout(30*time.Second))
//
// The deadline is carried by the context handed to hooks. Hooks decide how to
// honor it.
//
// # Modules
//
//	var ConfigModule = hilt.NewModule("config")
//	hilt.ModuleProvideValue(ConfigModule, &Config{Port: 8080})
//
//	var AppModule = hilt.NewModule("app").Include(ConfigModule)
//	c.Apply(AppModule)
//
// # Interface Binding
//
//	hilt.Bind[UserRepository, *PostgresUserRepo](c)
//
// A binding shares the implementation's instance and its lifecycle position.
//
// # Decorators
//
//	hilt.Decorate(c, func(ctx context.Context, r hilt.Resolver, log *Logger) (*Logger, error) {
//	    return log.Named("app"), nil
//	})
//
// The decorated value is the one recorded, so its hooks are the ones that run.
//
// # Scopes
//
//	hilt.ProvideFunc[*Service](c, NewService, hilt.WithScope(hilt.Transient))
//	hilt.ProvideFunc[*Service](c, NewService, hilt.WithScope(hilt.Request))
//
// # Health Checks
//
//	err := c.Live(ctx)        // HealthChecker on constructed singletons
//	err := c.Ready(ctx)       // ReadinessChecker on constructed singletons
//	reports := c.Health(ctx)
//
// # Observability
//
// WithLogger sets the slog logger; every record carries the container ID.
// WithTracerProvider emits a span per lifecycle walk and per component hook
// run. The observer options (WithResolveObserver, WithProvideObserver,
// WithConstructObserver, WithStartObserver, WithStopObserver) feed metrics;
// package hiltprom implements them with Prometheus collectors.
//
// # Debugging
//
//	c.PrintGraph()             // dependency graph
//	c.PrintGraphDOT()          // Graphviz
//	fmt.Print(c.SprintLedger()) // construction order
package hilt
