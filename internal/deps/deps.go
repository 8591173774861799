// Package deps checks that external programs the client execs are installed.
package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"witchcraft/internal/config"
)

// Requirement names an external program.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports whether a requirement resolved on PATH.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	// Path is the resolved executable when Available.
	Path   string
	Detail string
}

// CheckBinaries resolves every requirement the same way the playback handoff
// does, so a pass here means exec will find the program.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		results = append(results, check(req))
	}
	return results
}

func check(req Requirement) Status {
	cmd := strings.TrimSpace(req.Command)
	status := Status{
		Name:        req.Name,
		Command:     cmd,
		Description: strings.TrimSpace(req.Description),
		Optional:    req.Optional,
	}
	if cmd == "" {
		status.Detail = "command not configured"
		return status
	}
	path, err := exec.LookPath(cmd)
	if err != nil {
		status.Detail = fmt.Sprintf("binary %q not found", cmd)
		return status
	}
	status.Available = true
	status.Path = path
	return status
}

// PlayerRequirements lists the programs a "play" handoff needs.
func PlayerRequirements(player config.Player) []Requirement {
	return []Requirement{{
		Name:        "Player",
		Command:     player.Program,
		Description: "Required for play",
	}}
}
