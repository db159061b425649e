package release

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/beelot/tooling/pkg/adapters/command"
	"github.com/beelot/tooling/pkg/adapters/git"
	"github.com/beelot/tooling/pkg/apperr"
	"github.com/beelot/tooling/pkg/version"
	"github.com/beelot/tooling/pkg/versionfile"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// HotfixOptions controls a hotfix release.
type HotfixOptions struct {
	DryRun bool
}

// Hotfix releases the version currently checked out on the main branch.
type Hotfix struct {
	settings  Settings
	dir       string
	runner    command.Runner
	git       *git.Client
	confirmer Confirmer
	logger    *otelzap.Logger
}

// NewHotfix creates a Hotfix working in dir.
func NewHotfix(settings Settings, dir string, runner command.Runner, confirmer Confirmer, logger *otelzap.Logger) *Hotfix {
	return &Hotfix{
		settings:  settings,
		dir:       dir,
		runner:    runner,
		git:       git.New(runner),
		confirmer: confirmer,
		logger:    logger,
	}
}

// Run tags the working tree version on main, pushes it and merges main back into dev.
func (h *Hotfix) Run(ctx context.Context, opts HotfixOptions) error {
	logger := h.logger.Ctx(ctx)

	if err := checkProjectRoot(h.dir, h.settings.RootName); err != nil {
		return err
	}
	branch, err := h.git.CurrentBranch(ctx)
	if err != nil {
		return err
	}
	if branch != h.settings.MainBranch {
		return apperr.Precondition("current branch is '%s'. Switch to '%s' first", branch, h.settings.MainBranch)
	}

	raw, err := versionfile.ReadJS(filepath.Join(h.dir, h.settings.VersionJS))
	if err != nil {
		return err
	}
	v, err := version.Parse(raw)
	if err != nil {
		return err
	}
	logger.Info("Extracted version", zap.String("version", v.String()))

	if err := warnIfNotNewer(ctx, h.git, h.logger, v.String()); err != nil {
		return err
	}

	ok, err := h.confirmer.Confirm(fmt.Sprintf("Continue with hotfix release %s?", TagName(v.String())))
	if err != nil {
		return err
	}
	if !ok {
		logger.Info("Aborted by user.")
		return nil
	}

	if err := NewExecutor(h.runner, h.logger, opts.DryRun).Run(ctx, h.plan(v.String())); err != nil {
		return fmt.Errorf("hotfix release failed: %w", err)
	}

	logger.Info("Hotfix released", zap.String("tag", TagName(v.String())), zap.Bool("dryrun", opts.DryRun))
	return nil
}

func (h *Hotfix) plan(v string) Plan {
	s := h.settings
	tag := TagName(v)
	return Plan{
		Git("commit", "-m", hotfixCommitMessage(v), "."),
		Git("tag", "-a", tag, "-m", hotfixTagMessage(v)),
		Git("push", s.Remote, s.MainBranch),
		Git("push", s.Remote, tag),
		Git("checkout", s.DevBranch),
		Git("merge", s.MainBranch),
		Git("push", s.Remote, s.DevBranch),
	}
}
