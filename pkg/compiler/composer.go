package compiler

import (
	"path/filepath"

	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"

	"github.com/starconf/starconf/pkg/telemetry"
)

// EnvName is the binding under which the composed environment is visible to
// application overlay scripts.
const EnvName = "env"

// Composer builds the two-level scope composition used for one
// (application, environment) pair: the environment script runs first in its
// own Scope, and its binding table is injected into a fresh application
// Scope as the single structured variable `env`.
type Composer struct {
	loader  *Loader
	envsDir string
	appsDir string
	logger  *telemetry.Logger
}

// NewComposer creates a Composer reading environment scripts from envsDir
// and application overlays from appsDir, with fragments resolved through
// loader.
func NewComposer(loader *Loader, envsDir, appsDir string, logger *telemetry.Logger) *Composer {
	if logger == nil {
		logger = telemetry.NewLogger(telemetry.DefaultLoggingConfig())
	}
	return &Composer{
		loader:  loader,
		envsDir: envsDir,
		appsDir: appsDir,
		logger:  logger.NewComponentLogger("composer"),
	}
}

// EnvironmentPath returns the script path for the named environment.
func (c *Composer) EnvironmentPath(env string) string {
	return filepath.Join(c.envsDir, env+ScriptExt)
}

// OverlayPath returns the overlay script path for the named application and
// environment. The overlay is optional; callers skip the pair entirely when
// it does not exist.
func (c *Composer) OverlayPath(app, env string) string {
	return filepath.Join(c.appsDir, app, env+ScriptExt)
}

// Compose evaluates the environment script and then the application overlay
// and returns the overlay's resulting binding table, ready for conversion.
//
// The two executions are independently scoped: the overlay sees the
// environment only through the injected `env` struct, and because struct
// fields are frozen after environment execution, it cannot mutate
// environment internals. The environment's own top-level bindings never
// leak into the overlay's binding table.
func (c *Composer) Compose(env, app string) (starlark.StringDict, error) {
	log := c.logger.WithEnvironment(env).WithApp(app)
	log.Debug("composing scopes")

	envBindings, err := c.loader.LoadScope(c.EnvironmentPath(env))
	if err != nil {
		return nil, err
	}

	// The environment's own name is stamped into its binding table after
	// the script has finished, overwriting any `name` the script set.
	envBindings["name"] = starlark.String(env)

	appScope := starlark.StringDict{
		EnvName: starlarkstruct.FromStringDict(starlarkstruct.Default, envBindings),
	}
	return c.loader.loadFile(c.OverlayPath(app, env), appScope)
}
