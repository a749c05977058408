package domain

// ConfigSourceKind tells where a tool configuration file came from
type ConfigSourceKind int

const (
	ConfigSourceNone ConfigSourceKind = iota
	ConfigSourceExplicit
	ConfigSourceProjectDefault
	ConfigSourceDistributedDefault
)

// Label returns the adjective used in "Using <label> configuration file"
func (k ConfigSourceKind) Label() string {
	switch k {
	case ConfigSourceExplicit:
		return "custom"
	case ConfigSourceProjectDefault:
		return "project"
	case ConfigSourceDistributedDefault:
		return "distributed"
	default:
		return "default"
	}
}

// ConfigCandidates lists the file names a tool configuration may have
type ConfigCandidates struct {
	ProjectDefault     string
	DistributedDefault string
	// OverrideHint must appear in an explicit override for it to be accepted
	OverrideHint string
}

// ResolvedConfig is the single configuration source picked for a run.
// Kind None means built-in defaults apply.
type ResolvedConfig struct {
	Kind ConfigSourceKind `json:"kind"`
	// Path is absolute
	Path string `json:"path,omitempty"`
	// Name is the path as the user wrote it or as found on disk
	Name string `json:"name,omitempty"`
}

// Found reports whether a configuration file was selected
func (c ResolvedConfig) Found() bool {
	return c.Kind != ConfigSourceNone
}

// ConfigResolver picks the tool configuration file to use
type ConfigResolver interface {
	Resolve(override, searchRoot string, candidates ConfigCandidates) ResolvedConfig
}
