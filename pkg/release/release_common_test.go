//go:build unit
// +build unit

package release

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/beelot/tooling/pkg/adapters/command"
	"github.com/beelot/tooling/pkg/versionfile"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// responder answers one intercepted command line.
type responder func(line string) (command.Output, error)

// newRecordingRunner returns a mock runner that records every command line it is asked to run.
func newRecordingRunner(t *testing.T, respond responder) (*command.MockRunner, *[]string) {
	ctrl := gomock.NewController(t)
	runner := command.NewMockRunner(ctrl)
	calls := &[]string{}
	runner.EXPECT().Run(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, name string, args ...string) (command.Output, error) {
			line := command.String(name, args...)
			*calls = append(*calls, line)
			if respond == nil {
				return command.Output{}, nil
			}
			return respond(line)
		}).
		AnyTimes()
	return runner, calls
}

func testSettings() Settings {
	return Settings{
		RootName:         "beelot",
		VersionJS:        "assets/js/version.js",
		PackageJSON:      "package.json",
		Remote:           "origin",
		MainBranch:       "main",
		DevBranch:        "dev",
		SyncCommand:      []string{"sync-versions", "--source", "version-js"},
		GitHubRepository: "beelot/beelot",
	}
}

// newProjectDir creates <tmp>/beelot holding a version.js with v.
func newProjectDir(t *testing.T, v string) string {
	dir := filepath.Join(t.TempDir(), "beelot")
	path := filepath.Join(dir, "assets", "js", "version.js")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, versionfile.WriteJS(path, v))
	return dir
}

// mutating lists the git subcommands that change a repository or a remote.
var mutating = map[string]bool{
	"commit":   true,
	"tag -a":   true,
	"push":     true,
	"checkout": true,
	"merge":    true,
	"pull":     true,
	"add":      true,
}

func isMutating(line string) bool {
	for sub := range mutating {
		prefix := "git " + sub
		if line == prefix || strings.HasPrefix(line, prefix+" ") {
			return true
		}
	}
	return false
}
