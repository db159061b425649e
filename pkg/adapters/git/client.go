// Package git wraps the read-only git queries used by the release orchestrators.
// Mutating commands are not issued here; they go through the release step plan.
package git

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/beelot/tooling/pkg/adapters/command"
	"github.com/beelot/tooling/pkg/apperr"
	"golang.org/x/mod/semver"
)

// Client runs git queries through a command.Runner.
type Client struct {
	runner command.Runner
}

// New returns a Client that invokes git through runner.
func New(runner command.Runner) *Client {
	return &Client{runner: runner}
}

func (c *Client) git(ctx context.Context, args ...string) (string, error) {
	out, err := c.runner.Run(ctx, "git", args...)
	if err != nil {
		return "", err
	}
	return out.Stdout, nil
}

// CurrentBranch returns the abbreviated name of HEAD.
func (c *Client) CurrentBranch(ctx context.Context) (string, error) {
	out, err := c.git(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", fmt.Errorf("unable to determine current branch: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// IsClean reports whether `git status --porcelain` prints nothing.
func (c *Client) IsClean(ctx context.Context) (bool, error) {
	out, err := c.git(ctx, "status", "--porcelain")
	if err != nil {
		return false, fmt.Errorf("unable to read working tree status: %w", err)
	}
	return strings.TrimSpace(out) == "", nil
}

// ShowFile returns the content of path at ref.
func (c *Client) ShowFile(ctx context.Context, ref, path string) (string, error) {
	out, err := c.git(ctx, "show", ref+":"+path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s from branch '%s': %w", path, ref, err)
	}
	return out, nil
}

// ListTags returns every local tag name.
func (c *Client) ListTags(ctx context.Context) ([]string, error) {
	out, err := c.git(ctx, "tag", "--list")
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	var tags []string
	for _, line := range strings.Split(out, "\n") {
		if t := strings.TrimSpace(line); t != "" {
			tags = append(tags, t)
		}
	}
	return tags, nil
}

// LatestReleaseTag returns the highest vMAJOR.MINOR.PATCH tag, ignoring pre-releases and
// non-semver tags. It returns "" when there is none.
func (c *Client) LatestReleaseTag(ctx context.Context) (string, error) {
	tags, err := c.ListTags(ctx)
	if err != nil {
		return "", err
	}
	return latestSemverTag(tags), nil
}

// LocalTagExists reports whether refs/tags/<tag> resolves.
func (c *Client) LocalTagExists(ctx context.Context, tag string) (bool, error) {
	_, err := c.git(ctx, "rev-parse", "-q", "--verify", "refs/tags/"+tag)
	if err == nil {
		return true, nil
	}
	var cmdErr *apperr.CommandError
	// rev-parse --verify -q exits 1 without output when the ref is missing.
	if errors.As(err, &cmdErr) && cmdErr.ExitCode == 1 {
		return false, nil
	}
	return false, fmt.Errorf("failed to look up tag %s: %w", tag, err)
}

// RemoteTagExists reports whether remote advertises refs/tags/<tag>.
func (c *Client) RemoteTagExists(ctx context.Context, remote, tag string) (bool, error) {
	out, err := c.git(ctx, "ls-remote", "--tags", remote, "refs/tags/"+tag)
	if err != nil {
		return false, fmt.Errorf("failed to query tag %s on %s: %w", tag, remote, err)
	}
	return strings.TrimSpace(out) != "", nil
}

var releaseTagRE = regexp.MustCompile(`^v[0-9]+\.[0-9]+\.[0-9]+$`)

func latestSemverTag(tags []string) string {
	var versions []string
	for _, name := range tags {
		if releaseTagRE.MatchString(name) && semver.IsValid(name) && semver.Prerelease(name) == "" {
			versions = append(versions, name)
		}
	}
	if len(versions) == 0 {
		return ""
	}
	sort.Slice(versions, func(i, j int) bool {
		return semver.Compare(versions[i], versions[j]) > 0 // descending
	})
	return versions[0]
}

// IsNewerTag reports whether tag sorts above latest. An empty latest is always older.
// Tags that are not valid semver are never considered newer.
func IsNewerTag(tag, latest string) bool {
	if !semver.IsValid(tag) {
		return false
	}
	if latest == "" {
		return true
	}
	return semver.Compare(tag, latest) > 0
}
