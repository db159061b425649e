// Package release promotes beelot versions through git: hotfixes released straight
// from the stable branch, and promotions of the development branch.
package release

import (
	"context"
	"path/filepath"

	"github.com/beelot/tooling/pkg/adapters/git"
	"github.com/beelot/tooling/pkg/apperr"
	"github.com/beelot/tooling/pkg/config"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Settings holds the project layout and branch names a release works with.
type Settings struct {
	RootName    string
	VersionJS   string
	PackageJSON string
	Remote      string
	MainBranch  string
	DevBranch   string
	SyncCommand []string
	// GitHubRepository is "owner/name"; empty disables GitHub releases.
	GitHubRepository string
}

// SettingsFromConfig extracts the release settings from the tooling configuration.
func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		RootName:         cfg.Project.RootName,
		VersionJS:        cfg.Project.VersionJS,
		PackageJSON:      cfg.Project.PackageJSON,
		Remote:           cfg.Git.Remote,
		MainBranch:       cfg.Git.MainBranch,
		DevBranch:        cfg.Git.DevBranch,
		SyncCommand:      cfg.Release.SyncCommand,
		GitHubRepository: cfg.Release.GitHub.Repository,
	}
}

func checkProjectRoot(dir, rootName string) error {
	if filepath.Base(filepath.Clean(dir)) != rootName {
		return apperr.Precondition("you must run this from the ../%s directory (current: %s)", rootName, dir)
	}
	return nil
}

// warnIfNotNewer logs a warning when the version does not sort above the latest release tag.
func warnIfNotNewer(ctx context.Context, client *git.Client, logger *otelzap.Logger, v string) error {
	latest, err := client.LatestReleaseTag(ctx)
	if err != nil {
		return err
	}
	tag := TagName(v)
	if !git.IsNewerTag(tag, latest) {
		logger.Ctx(ctx).Warn("Version is not newer than the latest release tag",
			zap.String("tag", tag),
			zap.String("latest", latest))
	}
	return nil
}
