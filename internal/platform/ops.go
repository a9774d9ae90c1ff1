package platform

import (
	"context"
	"os"
	"path/filepath"

	"github.com/aretw0/remindme/pkg/adapters/fs"
	"github.com/aretw0/remindme/pkg/core"
)

// DefaultSystemDir is the hidden directory of a vault.
const DefaultSystemDir = ".remindme"

// Init prepares the vault at path and returns its repository.
func Init(ctx context.Context, path string, opts ...Option) (core.Repository, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return initRepository(ctx, path, o)
}

func initRepository(ctx context.Context, path string, o *options) (core.Repository, error) {
	if o.repository != nil {
		if err := o.repository.Initialize(ctx); err != nil {
			return nil, err
		}
		return o.repository, nil
	}

	repo := fs.NewRepository(fsConfig(path, o))
	if err := repo.Initialize(ctx); err != nil {
		return nil, err
	}
	return repo, nil
}

func fsConfig(path string, o *options) fs.Config {
	if path == "" {
		path = "."
	}

	// Without an explicit choice, use Git only where it already is, or for a
	// fresh vault being created.
	var gitless bool
	if o.gitless != nil {
		gitless = *o.gitless
	} else if _, err := os.Stat(filepath.Join(path, ".git")); err == nil {
		gitless = false
	} else if o.autoInit {
		_, err := os.Stat(filepath.Join(path, o.systemDir))
		gitless = err == nil
	} else {
		gitless = true
	}
	if gitless && o.logger != nil {
		o.logger.Debug("gitless mode", "path", path)
	}

	return fs.Config{
		Path:         path,
		AutoInit:     o.autoInit,
		Gitless:      gitless,
		MustExist:    o.mustExist || !o.autoInit,
		ReadOnly:     o.readOnly,
		Logger:       o.logger,
		SystemDir:    o.systemDir,
		ErrorHandler: o.errorHandler,
		Debounce:     o.debounce,
	}
}
