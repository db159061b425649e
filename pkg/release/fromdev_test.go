//go:build unit
// +build unit

package release

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/beelot/tooling/pkg/adapters/command"
	"github.com/beelot/tooling/pkg/adapters/github"
	"github.com/beelot/tooling/pkg/apperr"
	"github.com/beelot/tooling/pkg/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type fromDevRepo struct {
	version      string
	dirtyAtStart bool
	dirtyOnMain  bool
	tagExists    bool
	tagPushed    bool
	failOn       string

	statusCalls int
}

func (r *fromDevRepo) respond(line string) (command.Output, error) {
	switch line {
	case "git show dev:assets/js/version.js":
		return command.Output{Stdout: "// assets/js/version.js\nexport const VERSION = \"" + r.version + "\";\n"}, nil
	case "git status --porcelain":
		r.statusCalls++
		if (r.statusCalls == 1 && r.dirtyAtStart) || (r.statusCalls > 1 && r.dirtyOnMain) {
			return command.Output{Stdout: " M package.json\n"}, nil
		}
		return command.Output{}, nil
	case "git tag --list":
		return command.Output{Stdout: "v1.3.0\n"}, nil
	case "git rev-parse -q --verify refs/tags/v" + r.version:
		if r.tagExists {
			return command.Output{Stdout: "abc123\n"}, nil
		}
		return command.Output{}, &apperr.CommandError{Command: []string{"git", "rev-parse"}, ExitCode: 1}
	case "git ls-remote --tags origin refs/tags/v" + r.version:
		if r.tagPushed {
			return command.Output{Stdout: "abc123\trefs/tags/v" + r.version + "\n"}, nil
		}
		return command.Output{}, nil
	case r.failOn:
		return command.Output{Stderr: "boom"}, &apperr.CommandError{Command: []string{line}, ExitCode: 2}
	}
	return command.Output{}, nil
}

func newProjectRoot(t *testing.T) string {
	return filepath.Join(t.TempDir(), "beelot")
}

func TestFromDev_Run(t *testing.T) {
	repo := &fromDevRepo{version: "1.4.0", dirtyOnMain: true}
	runner, calls := newRecordingRunner(t, repo.respond)

	ctrl := gomock.NewController(t)
	gh := github.NewMockClient(ctrl)
	gh.EXPECT().GetReleaseByTag(gomock.Any(), github.GetReleaseByTagParams{
		Repository: "beelot/beelot",
		Tag:        "v1.4.0",
	}).Return(nil, nil)
	gh.EXPECT().CreateRelease(gomock.Any(), github.CreateReleaseParams{
		Repository: "beelot/beelot",
		Tag:        "v1.4.0",
		Name:       "v1.4.0",
		Body:       "Release 1.4.0, promoted from `dev` to `main`.",
	}).Return(&github.Release{ID: 1, TagName: "v1.4.0", HTMLURL: "https://github.com/beelot/beelot/releases/v1.4.0"}, nil)

	f := NewFromDev(testSettings(), newProjectRoot(t), runner, gh, logging.Nop())
	require.NoError(t, f.Run(context.Background(), FromDevOptions{}))

	assert.Equal(t, []string{
		"git show dev:assets/js/version.js",
		"git status --porcelain",
		"git tag --list",
		"git checkout dev",
		"git pull",
		"sync-versions --source version-js",
		"git checkout main",
		"git pull",
		"git merge dev",
		"git status --porcelain",
		"git add assets/js/version.js package.json",
		`git commit -m "Release version 1.4.0"`,
		"git rev-parse -q --verify refs/tags/v1.4.0",
		`git tag -a v1.4.0 -m "Release 1.4.0"`,
		"git push",
		"git ls-remote --tags origin refs/tags/v1.4.0",
		"git push origin v1.4.0",
		"git checkout dev",
		"git merge main",
		"git push",
	}, *calls)
}

func TestFromDev_DryRunIssuesNoMutatingCommand(t *testing.T) {
	repo := &fromDevRepo{version: "1.4.0"}
	runner, calls := newRecordingRunner(t, repo.respond)

	ctrl := gomock.NewController(t)
	gh := github.NewMockClient(ctrl)
	gh.EXPECT().GetReleaseByTag(gomock.Any(), gomock.Any()).Return(nil, nil)

	f := NewFromDev(testSettings(), newProjectRoot(t), runner, gh, logging.Nop())
	require.NoError(t, f.Run(context.Background(), FromDevOptions{DryRun: true}))

	assert.Equal(t, []string{
		"git show dev:assets/js/version.js",
		"git status --porcelain",
		"git tag --list",
		"sync-versions --source version-js --dryrun",
		"git status --porcelain",
		"git rev-parse -q --verify refs/tags/v1.4.0",
		"git ls-remote --tags origin refs/tags/v1.4.0",
	}, *calls)
	for _, c := range *calls {
		assert.False(t, isMutating(c), c)
	}
}

func TestFromDev_ExistingTagIsSkipped(t *testing.T) {
	repo := &fromDevRepo{version: "1.4.0", tagExists: true, tagPushed: true}
	runner, calls := newRecordingRunner(t, repo.respond)

	ctrl := gomock.NewController(t)
	gh := github.NewMockClient(ctrl)
	gh.EXPECT().GetReleaseByTag(gomock.Any(), gomock.Any()).
		Return(&github.Release{ID: 7, TagName: "v1.4.0"}, nil)

	f := NewFromDev(testSettings(), newProjectRoot(t), runner, gh, logging.Nop())
	require.NoError(t, f.Run(context.Background(), FromDevOptions{}))

	for _, c := range *calls {
		assert.NotContains(t, c, "git tag -a")
		assert.NotEqual(t, "git push origin v1.4.0", c)
		assert.NotContains(t, c, "git commit")
	}
	assert.Equal(t, "git push", (*calls)[len(*calls)-1])
}

func TestFromDev_DirtyTree(t *testing.T) {
	repo := &fromDevRepo{version: "1.4.0", dirtyAtStart: true}
	runner, calls := newRecordingRunner(t, repo.respond)

	f := NewFromDev(testSettings(), newProjectRoot(t), runner, nil, logging.Nop())
	err := f.Run(context.Background(), FromDevOptions{DryRun: true})
	require.ErrorIs(t, err, apperr.ErrPrecondition)
	assert.Equal(t, []string{"git show dev:assets/js/version.js", "git status --porcelain"}, *calls)
}

func TestFromDev_WrongDirectory(t *testing.T) {
	runner, calls := newRecordingRunner(t, nil)

	f := NewFromDev(testSettings(), t.TempDir(), runner, nil, logging.Nop())
	err := f.Run(context.Background(), FromDevOptions{})
	require.ErrorIs(t, err, apperr.ErrPrecondition)
	assert.Empty(t, *calls)
}

func TestFromDev_SyncFailureAborts(t *testing.T) {
	repo := &fromDevRepo{version: "1.4.0", failOn: "sync-versions --source version-js"}
	runner, calls := newRecordingRunner(t, repo.respond)

	f := NewFromDev(testSettings(), newProjectRoot(t), runner, nil, logging.Nop())
	err := f.Run(context.Background(), FromDevOptions{})
	require.ErrorIs(t, err, apperr.ErrExternalCommand)
	assert.Contains(t, err.Error(), "version synchronization failed")
	assert.Equal(t, "sync-versions --source version-js", (*calls)[len(*calls)-1])
}

func TestFromDev_MergeFailureAborts(t *testing.T) {
	repo := &fromDevRepo{version: "1.4.0", failOn: "git merge dev"}
	runner, calls := newRecordingRunner(t, repo.respond)

	f := NewFromDev(testSettings(), newProjectRoot(t), runner, nil, logging.Nop())
	err := f.Run(context.Background(), FromDevOptions{})
	require.ErrorIs(t, err, apperr.ErrExternalCommand)
	assert.Equal(t, "git merge dev", (*calls)[len(*calls)-1])
}

func TestFromDev_PrereleaseIsPublishedAsPrerelease(t *testing.T) {
	repo := &fromDevRepo{version: "1.4.0-rc.1"}
	runner, _ := newRecordingRunner(t, repo.respond)

	ctrl := gomock.NewController(t)
	gh := github.NewMockClient(ctrl)
	gh.EXPECT().GetReleaseByTag(gomock.Any(), gomock.Any()).Return(nil, nil)
	gh.EXPECT().CreateRelease(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, params github.CreateReleaseParams) (*github.Release, error) {
			assert.True(t, params.Prerelease)
			assert.Equal(t, "v1.4.0-rc.1", params.Tag)
			return &github.Release{ID: 2, TagName: params.Tag}, nil
		})

	f := NewFromDev(testSettings(), newProjectRoot(t), runner, gh, logging.Nop())
	require.NoError(t, f.Run(context.Background(), FromDevOptions{}))
}
