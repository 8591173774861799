package preflight

import (
	"witchcraft/internal/config"
	"witchcraft/internal/deps"
	"witchcraft/internal/ipc"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name     string
	Passed   bool
	Optional bool
	Detail   string
}

// Failed reports whether any required check did not pass.
func Failed(results []Result) bool {
	for _, r := range results {
		if !r.Passed && !r.Optional {
			return true
		}
	}
	return false
}

// Inputs bundles what RunAll inspects.
type Inputs struct {
	Config     *config.Config
	ConfigPath string
	ConfigSeen bool
	Resolver   ipc.Resolver
}

// RunAll executes every check in display order. The socket check is skipped
// when the path cannot be resolved.
func RunAll(in Inputs) []Result {
	cfg := in.Config
	if cfg == nil {
		defaults := config.Default()
		cfg = &defaults
	}

	var results []Result
	results = append(results, CheckConfigFile(in.ConfigPath, in.ConfigSeen))
	results = append(results, CheckDirectoryAccess("Music home", in.Resolver.MusicHome()))

	path, pathResult := CheckSocketPath(in.Resolver)
	results = append(results, pathResult)
	if pathResult.Passed {
		results = append(results, CheckSocket(path))
	}

	for _, status := range deps.CheckBinaries(deps.PlayerRequirements(cfg.Player)) {
		results = append(results, FromDependency(status))
	}
	return results
}

// FromDependency converts a dependency status into a Result.
func FromDependency(status deps.Status) Result {
	r := Result{Name: status.Name, Passed: status.Available, Optional: status.Optional}
	if status.Available {
		r.Detail = status.Path
	} else {
		r.Detail = status.Detail
	}
	return r
}
