package release

import (
	"context"
	"fmt"

	"github.com/beelot/tooling/pkg/adapters/command"
	"github.com/beelot/tooling/pkg/adapters/git"
	"github.com/beelot/tooling/pkg/adapters/github"
	"github.com/beelot/tooling/pkg/apperr"
	"github.com/beelot/tooling/pkg/version"
	"github.com/beelot/tooling/pkg/versionfile"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// FromDevOptions controls a dev promotion.
type FromDevOptions struct {
	DryRun bool
}

// FromDev promotes the development branch to main and tags the result.
type FromDev struct {
	settings Settings
	dir      string
	runner   command.Runner
	git      *git.Client
	github   github.Client
	logger   *otelzap.Logger
}

// NewFromDev creates a FromDev working in dir. gh may be nil to skip GitHub releases.
func NewFromDev(settings Settings, dir string, runner command.Runner, gh github.Client, logger *otelzap.Logger) *FromDev {
	return &FromDev{
		settings: settings,
		dir:      dir,
		runner:   runner,
		git:      git.New(runner),
		github:   gh,
		logger:   logger,
	}
}

// Run merges dev into main, commits the synchronized version files, tags, pushes
// and merges main back into dev.
func (f *FromDev) Run(ctx context.Context, opts FromDevOptions) error {
	logger := f.logger.Ctx(ctx)
	s := f.settings

	v, err := f.prepare(ctx)
	if err != nil {
		return fmt.Errorf("error preparing release: %w", err)
	}
	tag := TagName(v.String())
	logger.Info("Releasing version", zap.String("version", v.String()), zap.Bool("dryrun", opts.DryRun))

	executor := NewExecutor(f.runner, f.logger, opts.DryRun)

	logger.Info("Checking out dev branch")
	if err := executor.Run(ctx, Plan{
		Git("checkout", s.DevBranch),
		Git("pull"),
	}); err != nil {
		return releaseFailed(err)
	}

	if err := f.syncVersions(ctx, executor, opts.DryRun); err != nil {
		return releaseFailed(err)
	}

	logger.Info("Merging dev into main")
	if err := executor.Run(ctx, Plan{
		Git("checkout", s.MainBranch),
		Git("pull"),
		Git("merge", s.DevBranch),
	}); err != nil {
		return releaseFailed(err)
	}

	logger.Info("Committing version update if needed")
	clean, err := f.git.IsClean(ctx)
	if err != nil {
		return releaseFailed(err)
	}
	if clean {
		logger.Warn("No version file changes to commit")
	} else if err := executor.Run(ctx, Plan{
		Git("add", s.VersionJS, s.PackageJSON),
		Git("commit", "-m", releaseCommitMessage(v.String())),
	}); err != nil {
		return releaseFailed(err)
	}

	logger.Info("Creating tag", zap.String("tag", tag))
	exists, err := f.git.LocalTagExists(ctx, tag)
	if err != nil {
		return releaseFailed(err)
	}
	if exists {
		logger.Warn("Tag already exists, skipping tag creation", zap.String("tag", tag))
	} else if err := executor.Run(ctx, Plan{
		Git("tag", "-a", tag, "-m", releaseTagMessage(v.String())),
	}); err != nil {
		return releaseFailed(err)
	}

	logger.Info("Pushing main branch")
	if err := executor.Run(ctx, Plan{Git("push")}); err != nil {
		return releaseFailed(err)
	}

	logger.Info("Pushing tag", zap.String("tag", tag))
	pushed, err := f.git.RemoteTagExists(ctx, s.Remote, tag)
	if err != nil {
		return releaseFailed(err)
	}
	if pushed {
		logger.Warn("Tag already exists on remote, skipping push",
			zap.String("tag", tag),
			zap.String("remote", s.Remote))
	} else if err := executor.Run(ctx, Plan{Git("push", s.Remote, tag)}); err != nil {
		return releaseFailed(err)
	}

	if err := f.publishRelease(ctx, v, opts.DryRun); err != nil {
		return releaseFailed(err)
	}

	logger.Info("Merging main back into dev")
	if err := executor.Run(ctx, Plan{
		Git("checkout", s.DevBranch),
		Git("merge", s.MainBranch),
		Git("push"),
	}); err != nil {
		return releaseFailed(err)
	}

	logger.Info("Release completed successfully", zap.String("tag", tag))
	return nil
}

// prepare runs every precondition and returns the version found on the dev branch.
func (f *FromDev) prepare(ctx context.Context) (version.Version, error) {
	if err := checkProjectRoot(f.dir, f.settings.RootName); err != nil {
		return version.Version{}, err
	}

	content, err := f.git.ShowFile(ctx, f.settings.DevBranch, f.settings.VersionJS)
	if err != nil {
		return version.Version{}, err
	}
	raw, err := versionfile.ParseJS(content)
	if err != nil {
		return version.Version{}, err
	}
	v, err := version.Parse(raw)
	if err != nil {
		return version.Version{}, err
	}

	clean, err := f.git.IsClean(ctx)
	if err != nil {
		return version.Version{}, err
	}
	if !clean {
		return version.Version{}, apperr.Precondition("working tree not clean. Commit or stash changes first")
	}

	if err := warnIfNotNewer(ctx, f.git, f.logger, v.String()); err != nil {
		return version.Version{}, err
	}
	return v, nil
}

// syncVersions runs the synchronizer on the dev branch. It always runs: in dry run
// it is passed --dryrun instead of being skipped.
func (f *FromDev) syncVersions(ctx context.Context, executor *Executor, dryRun bool) error {
	cmd := f.settings.SyncCommand
	if len(cmd) == 0 {
		f.logger.Ctx(ctx).Warn("No version sync command configured, skipping synchronization")
		return nil
	}

	args := append([]string{}, cmd[1:]...)
	if dryRun {
		args = append(args, "--dryrun")
	}

	f.logger.Ctx(ctx).Info("Synchronizing version files")
	if err := executor.Run(ctx, Plan{{Name: cmd[0], Args: args, ReadOnly: true}}); err != nil {
		return fmt.Errorf("version synchronization failed: %w", err)
	}
	return nil
}

func (f *FromDev) publishRelease(ctx context.Context, v version.Version, dryRun bool) error {
	logger := f.logger.Ctx(ctx)
	if f.github == nil || f.settings.GitHubRepository == "" {
		logger.Debug("GitHub release publishing disabled")
		return nil
	}

	tag := TagName(v.String())
	existing, err := f.github.GetReleaseByTag(ctx, github.GetReleaseByTagParams{
		Repository: f.settings.GitHubRepository,
		Tag:        tag,
	})
	if err != nil {
		return fmt.Errorf("failed to look up GitHub release %s: %w", tag, err)
	}
	if existing != nil {
		logger.Warn("GitHub release already exists, skipping",
			zap.String("tag", tag),
			zap.String("url", existing.HTMLURL))
		return nil
	}

	params := github.CreateReleaseParams{
		Repository: f.settings.GitHubRepository,
		Tag:        tag,
		Name:       tag,
		Body:       releaseNotes(v.String(), f.settings.DevBranch, f.settings.MainBranch),
		Prerelease: !v.IsRelease(),
	}
	if dryRun {
		logger.Info("DRYRUN create GitHub release",
			zap.String("repository", params.Repository),
			zap.String("tag", tag))
		return nil
	}

	rel, err := f.github.CreateRelease(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to create GitHub release %s: %w", tag, err)
	}
	logger.Info("GitHub release created", zap.String("url", rel.HTMLURL))
	return nil
}

func releaseFailed(err error) error {
	return fmt.Errorf("release failed: %w", err)
}
