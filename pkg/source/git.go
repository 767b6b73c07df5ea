package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"

	"calculette-hq/mtranspile/pkg/config"
)

// Repository keeps a local checkout of the Git repository holding the
// JSON AST files.
type Repository struct {
	config    *config.GitConfig
	localPath string
	auth      AuthProvider
	logger    *slog.Logger

	mu   sync.Mutex
	repo *gogit.Repository
}

// NewRepository creates a repository manager. Nothing is fetched until
// Sync is called.
func NewRepository(cfg *config.GitConfig) (*Repository, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.Repository == "" {
		return nil, fmt.Errorf("repository URL cannot be empty")
	}
	if cfg.Branch == "" {
		return nil, fmt.Errorf("branch cannot be empty")
	}

	auth, err := NewAuthProvider(&cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth provider: %w", err)
	}

	localPath := cfg.Clone.LocalPath
	if localPath == "" {
		localPath = config.DefaultGitLocalPath
	}

	return &Repository{
		config:    cfg,
		localPath: localPath,
		auth:      auth,
		logger:    slog.Default(),
	}, nil
}

// WithLogger sets the logger.
func (r *Repository) WithLogger(logger *slog.Logger) *Repository {
	if logger != nil {
		r.logger = logger
	}
	return r
}

// Sync clones the repository, or pulls when a checkout already exists,
// and returns the HEAD commit SHA.
func (r *Repository) Sync(ctx context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.config.Timeout)
		defer cancel()
	}

	auth, err := r.auth.Auth()
	if err != nil {
		return "", fmt.Errorf("failed to get auth: %w", err)
	}

	cloned := false
	if r.repo == nil {
		if cloned, err = r.open(ctx, auth); err != nil {
			return "", err
		}
	}
	if !cloned {
		if err := r.pull(ctx, auth); err != nil {
			return "", err
		}
	}

	ref, err := r.repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to get HEAD: %w", err)
	}
	sha := ref.Hash().String()
	r.logger.Info("AST repository synchronized",
		"repository", r.config.Repository,
		"branch", r.config.Branch,
		"revision", sha,
		"auth", r.auth.Type())
	return sha, nil
}

// open opens an existing checkout or clones a fresh one. It reports
// whether a clone was made.
func (r *Repository) open(ctx context.Context, auth transport.AuthMethod) (bool, error) {
	if r.config.Clone.CleanOnStart {
		if err := os.RemoveAll(r.localPath); err != nil {
			return false, fmt.Errorf("failed to clean existing repository: %w", err)
		}
	}

	if _, err := os.Stat(filepath.Join(r.localPath, ".git")); err == nil {
		repo, err := gogit.PlainOpen(r.localPath)
		if err != nil {
			return false, fmt.Errorf("failed to open existing repo: %w", err)
		}
		r.repo = repo
		return false, nil
	}

	if err := os.MkdirAll(r.localPath, 0755); err != nil {
		return false, fmt.Errorf("failed to create repository directory: %w", err)
	}

	repo, err := gogit.PlainCloneContext(ctx, r.localPath, false, &gogit.CloneOptions{
		URL:           r.config.Repository,
		ReferenceName: plumbing.NewBranchReferenceName(r.config.Branch),
		SingleBranch:  true,
		Depth:         r.config.Clone.Depth,
		Auth:          auth,
	})
	if err != nil {
		return false, fmt.Errorf("failed to clone repository: %w", err)
	}
	r.repo = repo
	return true, nil
}

func (r *Repository) pull(ctx context.Context, auth transport.AuthMethod) error {
	worktree, err := r.repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}
	err = worktree.PullContext(ctx, &gogit.PullOptions{
		RemoteName:    "origin",
		ReferenceName: plumbing.NewBranchReferenceName(r.config.Branch),
		SingleBranch:  true,
		Auth:          auth,
	})
	if err != nil && !errors.Is(err, gogit.NoErrAlreadyUpToDate) {
		return fmt.Errorf("failed to pull: %w", err)
	}
	return nil
}

// LocalPath returns the checkout directory.
func (r *Repository) LocalPath() string {
	return r.localPath
}

// Dir returns the directory holding the JSON AST files within the checkout.
func (r *Repository) Dir() string {
	return filepath.Join(r.localPath, r.config.Path)
}
