package secret

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// Provider resolves secrets by reference string.
//
// Implementations must be safe for concurrent use and must not log secret values.
type Provider interface {
	Name() string
	Resolve(ctx context.Context, ref string) (string, error)
	Close() error
}

// EnvProvider resolves references against the process environment. The
// ref is the variable name.
type EnvProvider struct{}

func (EnvProvider) Name() string { return "env" }

func (EnvProvider) Resolve(_ context.Context, ref string) (string, error) {
	v, ok := os.LookupEnv(ref)
	if !ok {
		return "", fmt.Errorf("environment variable %q is not set", ref)
	}
	return v, nil
}

func (EnvProvider) Close() error { return nil }

// FileProvider resolves references as file paths, returning the trimmed
// file contents. Suited to container secret mounts.
type FileProvider struct {
	// Root, when set, is prepended to every ref and refs may not escape it.
	Root string
}

func (FileProvider) Name() string { return "file" }

func (p FileProvider) Resolve(_ context.Context, ref string) (string, error) {
	path := ref
	if p.Root != "" {
		path = p.Root + "/" + strings.TrimPrefix(ref, "/")
		if strings.Contains(ref, "..") {
			return "", fmt.Errorf("secret path %q escapes provider root", ref)
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read secret file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func (FileProvider) Close() error { return nil }
