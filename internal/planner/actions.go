package planner

import (
	"regexp"
	"strings"

	"github.com/danielpatrickdp/coherence-planner/internal/intent"
)

const (
	// lowConfidence is the confidence below which a plan starts with a scan.
	lowConfidence = 0.3

	defaultReadPath    = "README.md"
	defaultGrepPattern = "TODO"
)

var filenamePattern = regexp.MustCompile(`[\w./]+\.\w+`)

// actionsFor maps an intent to its tool sequence. Parameters are taken from
// the query as typed, not lowercased.
func actionsFor(in intent.Intent, query string, confidence float64) []Action {
	actions := make([]Action, 0, 3)
	if confidence < lowConfidence {
		actions = append(actions, Tool("scan"))
	}

	switch in {
	case intent.Read:
		path := filenamePattern.FindString(query)
		if path == "" {
			path = defaultReadPath
		}
		actions = append(actions, Tool("read").With("path", path))

	case intent.Write:
		actions = append(actions,
			Tool("scan"),
			Tool("template").With("type", "new_file"),
		)

	case intent.Scan:
		actions = append(actions,
			Tool("scan"),
			Tool("tree").With("depth", 3),
		)

	case intent.Grep:
		actions = append(actions, Tool("grep").With("pattern", lastToken(query)))

	case intent.Mine:
		actions = append(actions,
			Tool("ccce").With("operation", "correlate"),
			Tool("qbyte").With("operation", "extract"),
		)

	case intent.Quantum:
		actions = append(actions, Tool("telemetry").With("metrics", "phi,lambda,gamma"))

	default: // fix, mesh, run, analyze
		actions = append(actions,
			Tool("scan"),
			Tool("tree").With("depth", 2),
		)
	}

	return actions
}

func lastToken(query string) string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return defaultGrepPattern
	}
	return fields[len(fields)-1]
}
