package cli

import (
	"runtime/debug"
	"strings"
)

const (
	developmentVersionConstant = "dev"
	develBuildVersionConstant  = "(devel)"
)

// Version is stamped at build time with -ldflags "-X github.com/temirov/gitconsole/cmd/cli.Version=v1.2.3".
var Version string

func resolveVersion() string {
	if trimmedVersion := strings.TrimSpace(Version); len(trimmedVersion) > 0 {
		return trimmedVersion
	}
	buildInformation, available := debug.ReadBuildInfo()
	if !available {
		return developmentVersionConstant
	}
	moduleVersion := strings.TrimSpace(buildInformation.Main.Version)
	if len(moduleVersion) == 0 || moduleVersion == develBuildVersionConstant {
		return developmentVersionConstant
	}
	return moduleVersion
}
