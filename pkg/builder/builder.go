// Package builder drives whole-tree builds: it enumerates environment
// files and application directories, invokes the compiler once per
// (application, environment) pair, and writes one YAML document per pair.
package builder

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/starconf/starconf/pkg/compiler"
	"github.com/starconf/starconf/pkg/telemetry"
)

// OutputExt is the extension of emitted documents.
const OutputExt = ".yaml"

// Options configures a build.
type Options struct {
	// InputDir is the root of the input tree (see Layout).
	InputDir string `validate:"required,dir"`

	// OutputDir receives one document per built pair. Created on demand.
	OutputDir string `validate:"required"`
}

// Result summarizes a completed build.
type Result struct {
	// RunID correlates log lines produced by this run.
	RunID string

	// Documents is the number of documents written.
	Documents int

	// Skipped is the number of (app, env) pairs without an overlay.
	Skipped int
}

// Builder compiles every (application, environment) pair under one input
// tree. Pairs are processed sequentially and independently; the first error
// of any kind aborts the run, leaving documents from earlier pairs on disk.
type Builder struct {
	opts     Options
	layout   Layout
	composer *compiler.Composer
	logger   *telemetry.Logger
}

// New creates a Builder after validating the options.
func New(opts Options, logger *telemetry.Logger) (*Builder, error) {
	if err := validator.New().Struct(opts); err != nil {
		return nil, fmt.Errorf("invalid build options: %w", err)
	}
	if logger == nil {
		logger = telemetry.NewLogger(telemetry.DefaultLoggingConfig())
	}

	layout := NewLayout(opts.InputDir)
	loader := compiler.NewLoader(layout.VarsDir(), logger)
	return &Builder{
		opts:     opts,
		layout:   layout,
		composer: compiler.NewComposer(loader, layout.EnvironmentsDir(), layout.AppsDir(), logger),
		logger:   logger.NewComponentLogger("builder"),
	}, nil
}

// Run builds every pair that has an overlay file. Documents are written
// incrementally, one per successful pair, so outputs from pairs built
// before a failure remain on disk.
func (b *Builder) Run(ctx context.Context) (*Result, error) {
	result := &Result{RunID: uuid.NewString()}
	log := b.logger.WithRunID(result.RunID)

	envs, err := b.layout.Environments()
	if err != nil {
		return result, err
	}
	apps, err := b.layout.Apps()
	if err != nil {
		return result, err
	}
	log.Infof("building %d app(s) across %d environment(s)", len(apps), len(envs))

	if err := os.MkdirAll(b.opts.OutputDir, 0o755); err != nil {
		return result, compiler.NewIOError(b.opts.OutputDir, err)
	}

	for _, app := range apps {
		for _, env := range envs {
			if err := ctx.Err(); err != nil {
				return result, err
			}
			built, err := b.buildPair(app, env, log)
			if err != nil {
				return result, err
			}
			if built {
				result.Documents++
			} else {
				result.Skipped++
			}
		}
	}

	log.Infof("wrote %d document(s), skipped %d pair(s)", result.Documents, result.Skipped)
	return result, nil
}

// buildPair compiles one (app, env) pair and writes its document. It
// reports false without error when the pair has no overlay file.
func (b *Builder) buildPair(app, env string, log *telemetry.Logger) (bool, error) {
	overlay := b.composer.OverlayPath(app, env)
	if _, err := os.Stat(overlay); err != nil {
		if os.IsNotExist(err) {
			log.WithApp(app).WithEnvironment(env).Debug("no overlay, skipping pair")
			return false, nil
		}
		return false, compiler.NewIOError(overlay, err)
	}

	bindings, err := b.composer.Compose(env, app)
	if err != nil {
		return false, err
	}
	doc, err := compiler.ConvertBindings(bindings, app+"."+env)
	if err != nil {
		return false, err
	}

	out := filepath.Join(b.opts.OutputDir, app+"_"+env+OutputExt)
	if err := WriteDocument(out, doc); err != nil {
		return false, err
	}
	log.WithApp(app).WithEnvironment(env).WithField("output", out).Info("document written")
	return true, nil
}
