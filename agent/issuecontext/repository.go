/*
Copyright 2026 The linear-agent Authors
SPDX-License-Identifier: Apache-2.0
*/

package issuecontext

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tidegate/linear-agent/linear"
)

// repoLabelPrefix marks labels of the form repo:owner/name.
const repoLabelPrefix = "repo:"

// githubURLPattern matches the first GitHub repository URL in free
// text. A trailing .git suffix is tolerated and stripped.
var githubURLPattern = regexp.MustCompile(`https://github\.com/([A-Za-z0-9_.-]+)/([A-Za-z0-9_.-]+?)(?:\.git)?(?:[/\s]|$)`)

// Resolver derives a repository reference for an issue. Resolution
// priority: GitHub URL in the issue description, then a repo: label,
// then a team-key entry in the team map, then the configured default.
// When nothing matches the issue runs in standalone mode.
type Resolver struct {
	defaultRepo string
	teamRepos   map[string]string
}

// NewResolver constructs a Resolver. defaultRepo and teamRepos entries
// use the owner/name form; either may be empty.
func NewResolver(defaultRepo string, teamRepos map[string]string) *Resolver {
	return &Resolver{
		defaultRepo: defaultRepo,
		teamRepos:   teamRepos,
	}
}

// Resolve returns the repository reference for an issue, or nil when
// no reference can be derived.
func (r *Resolver) Resolve(issue *linear.Issue) *Repository {
	if m := githubURLPattern.FindStringSubmatch(issue.Description); m != nil {
		return newRepository(m[1], m[2])
	}

	for _, label := range issue.Labels {
		if !strings.HasPrefix(label, repoLabelPrefix) {
			continue
		}
		if owner, name, ok := splitOwnerName(strings.TrimPrefix(label, repoLabelPrefix)); ok {
			return newRepository(owner, name)
		}
	}

	if mapped, ok := r.teamRepos[issue.TeamKey]; ok {
		if owner, name, ok := splitOwnerName(mapped); ok {
			return newRepository(owner, name)
		}
	}

	if owner, name, ok := splitOwnerName(r.defaultRepo); ok {
		return newRepository(owner, name)
	}

	return nil
}

func newRepository(owner, name string) *Repository {
	return &Repository{
		URL:   fmt.Sprintf("https://github.com/%s/%s", owner, name),
		Owner: owner,
		Name:  name,
	}
}

func splitOwnerName(s string) (owner, name string, ok bool) {
	owner, name, found := strings.Cut(strings.TrimSpace(s), "/")
	if !found || owner == "" || name == "" || strings.Contains(name, "/") {
		return "", "", false
	}
	return owner, strings.TrimSuffix(name, ".git"), true
}

// teamReposFile is the on-disk shape of the team repository map.
type teamReposFile struct {
	Teams map[string]string `yaml:"teams"`
}

// LoadTeamRepos reads a YAML file mapping Linear team keys to
// owner/name repositories. An empty path yields an empty map.
func LoadTeamRepos(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading team repos file: %w", err)
	}

	var file teamReposFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parsing team repos file %s: %w", path, err)
	}

	for key, repo := range file.Teams {
		if _, _, ok := splitOwnerName(repo); !ok {
			return nil, fmt.Errorf("team repos file %s: entry %q is not owner/name form: %q", path, key, repo)
		}
	}

	return file.Teams, nil
}
