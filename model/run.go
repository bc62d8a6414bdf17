package model

import "time"

// Run represents a single recorded reviewgo batch (review or format).
type Run struct {
	// Unique ID for this run (UUID)
	ID string `json:"id"`
	// Phase that was run ("review" or "format")
	Phase string `json:"phase"`
	// Timestamp when the batch started
	Timestamp time.Time `json:"timestamp"`
	// Command-line arguments (including command name)
	Args []string `json:"args"`
	// Working directory where the batch ran (relative to repo root)
	WorkDir string `json:"workdir"`
	// Exit code reported by the batch
	ExitCode int `json:"exit_code"`
	// Duration of the whole batch
	Duration time.Duration `json:"duration"`
	// Git information
	Git *Git `json:"git,omitempty"`
	// Per tool outcomes, in run order
	Tools []ToolRun `json:"tools"`
	// Artifacts generated during this run
	Artifacts []Artifact `json:"artifacts,omitempty"`
}

// Git contains git repository information
type Git struct {
	// Git commit hash at time of execution
	Commit string `json:"commit,omitempty"`
	// Git branch at time of execution
	Branch string `json:"branch,omitempty"`
	// Repository name
	Repo string `json:"repo,omitempty"`
}

// ToolRun is the recorded outcome of one tool within a run.
type ToolRun struct {
	Key      string `json:"key"`
	Name     string `json:"name"`
	ExitCode int    `json:"exit_code"`
	// Severity tier: success, failure or total_failure
	Tier string `json:"tier"`
	// Strategy the tool ended the run with (quiet or verbose)
	Strategy string `json:"strategy"`
	// Preparation time, only when preparation ran
	Prep time.Duration `json:"prep,omitempty"`
	Main time.Duration `json:"main"`
}

// Failed returns true if the tool exited with a non-zero exit code.
func (t ToolRun) Failed() bool {
	return t.ExitCode != 0
}

// ArtifactType identifies the type of artifact
type ArtifactType uint8

const (
	ArtifactTypeTimingProfile ArtifactType = iota
)

// Artifact represents a file generated during a run
type Artifact struct {
	Type ArtifactType `json:"type"`
	Size uint64       `json:"size"`
	File string       `json:"file"` // relative to run dir
}
