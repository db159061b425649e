//go:generate go run go.uber.org/mock/mockgen@v0.5.2 -source=client.go -destination=mock.gen.go -package=github
package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/go-github/v55/github"
	"golang.org/x/oauth2"
)

// GetReleaseByTagParams contains parameters for GetReleaseByTag.
type GetReleaseByTagParams struct {
	Repository string
	Tag        string
}

// CreateReleaseParams contains parameters for CreateRelease.
type CreateReleaseParams struct {
	Repository string
	Tag        string
	Name       string
	Body       string
	Prerelease bool
}

// Release is the subset of a GitHub release the tooling cares about.
type Release struct {
	ID      int64
	TagName string
	HTMLURL string
}

// Client defines the interface for interacting with GitHub.
type Client interface {
	// GetReleaseByTag returns nil and no error when the tag has no release.
	GetReleaseByTag(ctx context.Context, params GetReleaseByTagParams) (*Release, error)
	CreateRelease(ctx context.Context, params CreateReleaseParams) (*Release, error)
}

// client implements Client using go-github.
type client struct {
	gh *github.Client
}

// New creates a new GitHub client with the given token.
func New(token string) Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	gh := github.NewClient(oauth2.NewClient(context.Background(), ts))
	return &client{gh: gh}
}

// GetReleaseByTag looks up the release attached to a tag.
func (c *client) GetReleaseByTag(ctx context.Context, params GetReleaseByTagParams) (*Release, error) {
	owner, repo, err := extractOwnerAndRepo(params.Repository)
	if err != nil {
		return nil, err
	}

	rel, resp, err := c.gh.Repositories.GetReleaseByTag(ctx, owner, repo, params.Tag)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		var ghErr *github.ErrorResponse
		if errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get release for tag %s: %w", params.Tag, err)
	}
	return toRelease(rel), nil
}

// CreateRelease publishes a release for an existing tag.
func (c *client) CreateRelease(ctx context.Context, params CreateReleaseParams) (*Release, error) {
	owner, repo, err := extractOwnerAndRepo(params.Repository)
	if err != nil {
		return nil, err
	}

	rel, _, err := c.gh.Repositories.CreateRelease(ctx, owner, repo, &github.RepositoryRelease{
		TagName:    github.String(params.Tag),
		Name:       github.String(params.Name),
		Body:       github.String(params.Body),
		Prerelease: github.Bool(params.Prerelease),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create release %s: %w", params.Tag, err)
	}
	return toRelease(rel), nil
}

func toRelease(rel *github.RepositoryRelease) *Release {
	if rel == nil {
		return nil
	}
	return &Release{
		ID:      rel.GetID(),
		TagName: rel.GetTagName(),
		HTMLURL: rel.GetHTMLURL(),
	}
}

// extractOwnerAndRepo accepts "owner/repo" or a GitHub URL like "https://github.com/owner/repo.git".
func extractOwnerAndRepo(repository string) (string, string, error) {
	clean := strings.TrimPrefix(repository, "https://")
	clean = strings.TrimPrefix(clean, "github.com/")
	clean = strings.TrimSuffix(clean, ".git")
	parts := strings.Split(clean, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repository format: %s", repository)
	}
	return parts[0], parts[1], nil
}
