package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"go.uber.org/zap"
)

// Git source defaults.
const (
	DefaultPollInterval = 30 * time.Second
	DefaultGitDataPath  = "data"
)

// GitOptions describes a repository holding sgciResources data files.
type GitOptions struct {
	// URL is the repository to clone. Local paths are accepted.
	URL string

	// Dir is the local clone directory. Anything already there is removed.
	Dir string

	// Branch is the branch to track; empty tracks the remote HEAD.
	Branch string

	// DataPath is the directory inside the repository holding data files.
	DataPath string
}

// GitSource keeps a local clone of a data repository and reloads the store
// whenever the checked out commit moves.
type GitSource struct {
	loader *Loader
	opts   GitOptions

	repo       *git.Repository
	loaded     plumbing.Hash
	lastFailed plumbing.Hash
}

// NewGitSource returns a source that loads through loader.
func NewGitSource(loader *Loader, opts GitOptions) (*GitSource, error) {
	if opts.URL == "" {
		return nil, errors.New("git repository URL is required")
	}
	if opts.Dir == "" {
		return nil, errors.New("git clone directory is required")
	}
	if opts.DataPath == "" {
		opts.DataPath = DefaultGitDataPath
	}
	return &GitSource{loader: loader, opts: opts}, nil
}

// DataDir returns the data directory inside the local clone.
func (g *GitSource) DataDir() string {
	return filepath.Join(g.opts.Dir, g.opts.DataPath)
}

// Clone replaces the local clone directory with a fresh clone.
func (g *GitSource) Clone(ctx context.Context) error {
	if err := os.RemoveAll(g.opts.Dir); err != nil {
		return fmt.Errorf("clearing clone directory %s: %w", g.opts.Dir, err)
	}

	opts := &git.CloneOptions{URL: g.opts.URL}
	if g.opts.Branch != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(g.opts.Branch)
		opts.SingleBranch = true
	}

	repo, err := git.PlainCloneContext(ctx, g.opts.Dir, false, opts)
	if err != nil {
		return fmt.Errorf("cloning %s: %w", g.opts.URL, err)
	}
	g.repo = repo
	g.loaded = plumbing.ZeroHash
	g.loader.logger.Info("cloned data repository", zap.String("url", g.opts.URL), zap.String("dir", g.opts.Dir))
	return nil
}

// Sync pulls from the remote and reloads the store when the head commit
// differs from the last one loaded. It reports whether a reload happened.
func (g *GitSource) Sync(ctx context.Context) (bool, error) {
	if g.repo == nil {
		return false, errors.New("repository not cloned")
	}

	wt, err := g.repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("opening worktree: %w", err)
	}
	pull := &git.PullOptions{RemoteName: git.DefaultRemoteName}
	if g.opts.Branch != "" {
		pull.ReferenceName = plumbing.NewBranchReferenceName(g.opts.Branch)
		pull.SingleBranch = true
	}
	if err := wt.PullContext(ctx, pull); err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return false, fmt.Errorf("pulling %s: %w", g.opts.URL, err)
	}

	head, err := g.head()
	if err != nil {
		return false, err
	}
	if head == g.loaded {
		return false, nil
	}

	g.loader.logger.Info("data repository moved",
		zap.String("from", shortHash(g.loaded)), zap.String("to", shortHash(head)))
	if _, err := g.loader.Load(ctx, g.DataDir()); err != nil {
		return false, err
	}
	g.loaded = head
	return true, nil
}

// Run clones the repository, loads it and then polls every interval until
// ctx is done. Failures are logged once per commit and leave the previous
// collection in place.
func (g *GitSource) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if err := g.Clone(ctx); err != nil {
		return err
	}
	if _, err := g.Sync(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			g.poll(ctx)
		}
	}
}

func (g *GitSource) poll(ctx context.Context) {
	if _, err := g.Sync(ctx); err != nil {
		g.report(err)
	}
}

// report logs err at error level the first time it is seen for the current
// head commit and at debug level afterwards.
func (g *GitSource) report(err error) {
	head, headErr := g.head()
	if headErr == nil && head == g.lastFailed {
		g.loader.logger.Debug("sync still failing", zap.String("commit", shortHash(head)), zap.Error(err))
		return
	}
	if headErr == nil {
		g.lastFailed = head
	}
	g.loader.logger.Error("sync failed, keeping previous collection",
		zap.String("commit", shortHash(head)), zap.Error(err))
}

func (g *GitSource) head() (plumbing.Hash, error) {
	ref, err := g.repo.Head()
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("resolving HEAD: %w", err)
	}
	return ref.Hash(), nil
}

func shortHash(h plumbing.Hash) string {
	if h.IsZero() {
		return ""
	}
	return h.String()[:7]
}
