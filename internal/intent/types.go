package intent

// #region intent

// Intent is the coarse category a query is classified into.
type Intent string

const (
	Read    Intent = "read"
	Write   Intent = "write"
	Fix     Intent = "fix"
	Scan    Intent = "scan"
	Grep    Intent = "grep"
	Mesh    Intent = "mesh"
	Run     Intent = "run"
	Mine    Intent = "mine"
	Quantum Intent = "quantum"
	Analyze Intent = "analyze"
)

// #endregion
