package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Selector describes the assignment scope for one invocation. It is immutable
// once constructed.
type Selector struct {
	// Organization is the GitHub organization owning the student repos.
	Organization string

	// Assignment is the repository name prefix shared by all student copies.
	Assignment string

	// WorkingDir is where local working copies live.
	WorkingDir string
}

// RepoListing is one remote repository enumerated for an assignment.
type RepoListing struct {
	Name     string
	CloneURL string
}

// Lister enumerates the repositories belonging to an assignment. The GitHub
// API backs it for sync operations; DirLister backs it for purely local ones.
type Lister interface {
	ListAssignment(ctx context.Context, assignment string) ([]RepoListing, error)
}

// Resolve maps a selector plus a selection (explicit student slugs, or all
// when students is empty) to the ordered target list for the batch. The
// returned order is canonical for all downstream reporting.
//
// Explicit selections are built without a listing call; whether the target
// actually exists is discovered at execution time.
func Resolve(ctx context.Context, sel Selector, students []string, lister Lister) ([]Target, error) {
	if strings.TrimSpace(sel.Assignment) == "" {
		return nil, fmt.Errorf("assignment name must not be empty")
	}
	if err := os.MkdirAll(sel.WorkingDir, 0o755); err != nil {
		return nil, fmt.Errorf("working directory %s: %w", sel.WorkingDir, err)
	}

	if len(students) == 0 {
		return resolveAll(ctx, sel, lister)
	}

	seen := make(map[string]struct{}, len(students))
	targets := make([]Target, 0, len(students))
	for _, student := range students {
		name := sel.Assignment + "-" + student
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		targets = append(targets, Target{
			Name:      name,
			RemoteURL: remoteURL(sel.Organization, name),
			Dir:       filepath.Join(sel.WorkingDir, name),
		})
	}
	return targets, nil
}

func resolveAll(ctx context.Context, sel Selector, lister Lister) ([]Target, error) {
	if lister == nil {
		return nil, fmt.Errorf("no repository listing available for %q", sel.Assignment)
	}
	repos, err := lister.ListAssignment(ctx, sel.Assignment)
	if err != nil {
		return nil, fmt.Errorf("list repositories for %q: %w", sel.Assignment, err)
	}

	prefix := sel.Assignment + "-"
	seen := make(map[string]struct{}, len(repos))
	targets := make([]Target, 0, len(repos))
	for _, repo := range repos {
		if !strings.HasPrefix(repo.Name, prefix) {
			continue
		}
		if _, ok := seen[repo.Name]; ok {
			continue
		}
		seen[repo.Name] = struct{}{}

		url := repo.CloneURL
		if url == "" {
			url = remoteURL(sel.Organization, repo.Name)
		}
		targets = append(targets, Target{
			Name:      repo.Name,
			RemoteURL: url,
			Dir:       filepath.Join(sel.WorkingDir, repo.Name),
		})
	}

	// Listing order is whatever the collaborator produced; reporting wants a
	// stable canonical order.
	sort.Slice(targets, func(i, j int) bool { return targets[i].Name < targets[j].Name })
	return targets, nil
}

func remoteURL(organization, name string) string {
	if organization == "" {
		return ""
	}
	return fmt.Sprintf("https://github.com/%s/%s.git", organization, name)
}

// DirLister enumerates assignment working copies already present in a local
// directory. Local operations (run, check, show, update-file) use it so they
// work offline.
type DirLister struct {
	Dir string
}

func NewDirLister(dir string) DirLister {
	return DirLister{Dir: dir}
}

func (l DirLister) ListAssignment(ctx context.Context, assignment string) ([]RepoListing, error) {
	entries, err := os.ReadDir(l.Dir)
	if err != nil {
		return nil, fmt.Errorf("read working directory %s: %w", l.Dir, err)
	}

	prefix := assignment + "-"
	var repos []RepoListing
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), prefix) {
			continue
		}
		repos = append(repos, RepoListing{Name: entry.Name()})
	}
	return repos, nil
}
