package github

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/go-github/v81/github"
)

// Classrooms commonly stay under this; a hard cap keeps a misconfigured
// prefix from walking an entire large organization.
const defaultListingLimit = 1000

// AssignmentRepo is one student repository enumerated for an assignment.
type AssignmentRepo struct {
	Name     string
	CloneURL string
}

// ListAssignmentRepos enumerates the repositories in org whose name starts
// with "{assignment}-". No retry is performed here; callers treat a failure
// as fatal for the invocation.
func (c *Client) ListAssignmentRepos(ctx context.Context, org, assignment string) ([]AssignmentRepo, error) {
	prefix := assignment + "-"
	repos := make([]AssignmentRepo, 0, 32)

	opts := &github.RepositoryListByOrgOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	}
	for {
		page, resp, err := c.Client.Repositories.ListByOrg(ctx, org, opts)
		if err != nil {
			return nil, fmt.Errorf("list repositories for %s: %w", org, err)
		}
		for _, repo := range page {
			if !strings.HasPrefix(repo.GetName(), prefix) {
				continue
			}
			repos = append(repos, AssignmentRepo{
				Name:     repo.GetName(),
				CloneURL: repo.GetCloneURL(),
			})
			if len(repos) >= defaultListingLimit {
				return repos, nil
			}
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return repos, nil
}

// VerifyOrgAccess checks that the client can see the organization. configure
// runs this before persisting settings so a bad token or org name fails fast.
func (c *Client) VerifyOrgAccess(ctx context.Context, org string) error {
	if _, _, err := c.Client.Organizations.Get(ctx, org); err != nil {
		return fmt.Errorf("could not access github.com/%s: %w", org, err)
	}
	return nil
}
