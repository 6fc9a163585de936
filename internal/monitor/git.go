package monitor

import (
	"github.com/go-git/go-git/v5"

	"github.com/majorcontext/watchprocess/internal/log"
	"github.com/majorcontext/watchprocess/internal/record"
)

// GitInfo records the HEAD commit and branch of the repository enclosing
// Dir. Outside a repository it records nothing.
type GitInfo struct {
	Dir string
}

func (g *GitInfo) Name() string { return "git" }

func (g *GitInfo) Start() error { return nil }

func (g *GitInfo) Finish(sink *record.Record) error {
	repo, err := git.PlainOpenWithOptions(g.Dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		log.Debug("no git repository", "dir", g.Dir, "error", err)
		return nil
	}
	head, err := repo.Head()
	if err != nil {
		log.Debug("reading git HEAD", "dir", g.Dir, "error", err)
		return nil
	}
	sink.GitCommit = head.Hash().String()
	if head.Name().IsBranch() {
		sink.GitBranch = head.Name().Short()
	}
	return nil
}
