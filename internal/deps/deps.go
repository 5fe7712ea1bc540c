package deps

import (
	"strings"
)

// Requirement defines an external tool the converter relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	SearchPaths []string
}

// Status reports the availability of a tool.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// CheckBinaries evaluates the provided requirements and reports availability.
// The Command field of each result holds the resolved absolute path when the
// tool was found.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Available = false
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		resolved, err := Resolve(cmd, req.SearchPaths)
		if err != nil {
			status.Available = false
			status.Detail = err.Error()
			results = append(results, status)
			continue
		}
		status.Command = resolved
		status.Available = true
		results = append(results, status)
	}
	return results
}
