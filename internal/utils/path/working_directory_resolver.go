// Package pathutils resolves the working directories commands run in.
package pathutils

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	tildeSymbolConstant             = "~"
	tildeForwardSlashPrefixConstant = "~/"
)

var tildeWithPathSeparatorPrefix = tildeSymbolConstant + string(os.PathSeparator)

// HomeDirectoryProvider resolves the current user's home directory path.
type HomeDirectoryProvider func() (string, error)

// WorkingDirectoryResolver turns user-supplied directories into paths a command can run in.
// A leading tilde is expanded to the home directory and relative paths are anchored at the base directory.
type WorkingDirectoryResolver struct {
	baseDirectory         string
	homeDirectoryProvider HomeDirectoryProvider
	homeDirectory         string
	homeDirectoryError    error
	homeDirectoryOnce     sync.Once
}

// NewWorkingDirectoryResolver constructs a resolver anchored at baseDirectory using the operating system home lookup.
func NewWorkingDirectoryResolver(baseDirectory string) *WorkingDirectoryResolver {
	return NewWorkingDirectoryResolverWithProvider(baseDirectory, os.UserHomeDir)
}

// NewWorkingDirectoryResolverWithProvider constructs a resolver with a custom home directory provider.
func NewWorkingDirectoryResolverWithProvider(baseDirectory string, provider HomeDirectoryProvider) *WorkingDirectoryResolver {
	if provider == nil {
		provider = os.UserHomeDir
	}
	return &WorkingDirectoryResolver{baseDirectory: strings.TrimSpace(baseDirectory), homeDirectoryProvider: provider}
}

// Resolve returns the directory a command should run in. An empty candidate yields the base directory.
func (resolver *WorkingDirectoryResolver) Resolve(candidate string) string {
	trimmedCandidate := strings.TrimSpace(candidate)
	if resolver == nil {
		return trimmedCandidate
	}
	if len(trimmedCandidate) == 0 {
		return resolver.baseDirectory
	}

	expandedCandidate := resolver.expandHome(trimmedCandidate)
	if filepath.IsAbs(expandedCandidate) || len(resolver.baseDirectory) == 0 {
		return filepath.Clean(expandedCandidate)
	}
	return filepath.Join(resolver.baseDirectory, expandedCandidate)
}

func (resolver *WorkingDirectoryResolver) expandHome(candidate string) string {
	if !strings.HasPrefix(candidate, tildeSymbolConstant) {
		return candidate
	}

	homeDirectory := resolver.resolveHomeDirectory()
	if len(homeDirectory) == 0 {
		return candidate
	}

	switch {
	case candidate == tildeSymbolConstant:
		return homeDirectory
	case strings.HasPrefix(candidate, tildeForwardSlashPrefixConstant):
		return filepath.Join(homeDirectory, strings.TrimPrefix(candidate, tildeForwardSlashPrefixConstant))
	case strings.HasPrefix(candidate, tildeWithPathSeparatorPrefix):
		return filepath.Join(homeDirectory, strings.TrimPrefix(candidate, tildeWithPathSeparatorPrefix))
	default:
		return candidate
	}
}

func (resolver *WorkingDirectoryResolver) resolveHomeDirectory() string {
	resolver.homeDirectoryOnce.Do(func() {
		resolver.homeDirectory, resolver.homeDirectoryError = resolver.homeDirectoryProvider()
	})
	if resolver.homeDirectoryError != nil {
		return ""
	}
	return resolver.homeDirectory
}
