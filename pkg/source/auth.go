package source

import (
	"fmt"
	"os"

	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"

	"calculette-hq/mtranspile/pkg/config"
)

// AuthProvider handles Git authentication.
type AuthProvider interface {
	// Auth returns the git transport authentication method.
	Auth() (transport.AuthMethod, error)

	// Type returns the auth type for logging purposes.
	Type() string
}

// TokenAuth implements token-based HTTPS authentication.
type TokenAuth struct {
	token string
}

// Auth returns HTTP basic auth with the token as password.
func (a *TokenAuth) Auth() (transport.AuthMethod, error) {
	if a.token == "" {
		return nil, fmt.Errorf("token cannot be empty")
	}
	return &http.BasicAuth{Username: "git", Password: a.token}, nil
}

// Type returns "token".
func (a *TokenAuth) Type() string { return "token" }

// SSHAuth implements SSH key-based authentication.
type SSHAuth struct {
	keyPath    string
	passphrase string
}

// Auth loads the private key. The key file must not be readable by group
// or others.
func (a *SSHAuth) Auth() (transport.AuthMethod, error) {
	if a.keyPath == "" {
		return nil, fmt.Errorf("ssh key path cannot be empty")
	}
	info, err := os.Stat(a.keyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to access SSH key file: %w", err)
	}
	if mode := info.Mode().Perm(); mode&0077 != 0 {
		return nil, fmt.Errorf("SSH key file permissions too open (%o), should be 0600", mode)
	}

	auth, err := ssh.NewPublicKeysFromFile("git", a.keyPath, a.passphrase)
	if err != nil {
		return nil, fmt.Errorf("failed to load SSH key: %w", err)
	}
	return auth, nil
}

// Type returns "ssh".
func (a *SSHAuth) Type() string { return "ssh" }

// NoAuth is used for public repositories and local paths.
type NoAuth struct{}

// Auth returns nil.
func (a *NoAuth) Auth() (transport.AuthMethod, error) { return nil, nil }

// Type returns "none".
func (a *NoAuth) Type() string { return "none" }

// NewAuthProvider creates an auth provider from configuration.
// Supported types: "token", "ssh", "none".
func NewAuthProvider(cfg *config.GitAuthConfig) (AuthProvider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("auth config cannot be nil")
	}

	switch cfg.Type {
	case "token":
		if cfg.Token == "" {
			return nil, fmt.Errorf("token auth requires non-empty token")
		}
		return &TokenAuth{token: cfg.Token}, nil
	case "ssh":
		if cfg.SSHKeyPath == "" {
			return nil, fmt.Errorf("ssh auth requires ssh_key_path")
		}
		return &SSHAuth{keyPath: cfg.SSHKeyPath, passphrase: cfg.SSHKeyPassphrase}, nil
	case "none", "":
		return &NoAuth{}, nil
	default:
		return nil, fmt.Errorf("unknown auth type: %s", cfg.Type)
	}
}
