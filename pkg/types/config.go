package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "excerpt-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SyncTransport selects how the companion repository is fetched.
type SyncTransport string

const (
	// TransportGit performs a shallow clone or fetch+reset with the git binary.
	TransportGit SyncTransport = "git"

	// TransportArchive downloads a repository tarball through the GitHub API.
	TransportArchive SyncTransport = "archive"
)

// SyncConfig holds settings for the companion-repository sync stage.
type SyncConfig struct {
	HTTPConfig `yaml:",inline"`

	// RepoURL is the companion repository, as a clone URL for the git
	// transport or an "owner/name" slug for the archive transport.
	RepoURL string `json:"repo_url" yaml:"repo_url"`

	// Branch is the branch (or ref, for archives) to check out.
	Branch string `json:"branch" yaml:"branch"`

	// Dir is the local checkout directory (default "TEI-curation").
	Dir string `json:"dir" yaml:"dir"`

	// Transport is the fetch mechanism: git or archive.
	Transport SyncTransport `json:"transport" yaml:"transport"`

	// Token authenticates against the companion repository. Never serialized.
	Token string `json:"-" yaml:"-"`
}

// ExtractConfig holds settings for the excerpt extraction stage.
type ExtractConfig struct {
	// Glob selects the TEI XML input files.
	Glob string `json:"glob" yaml:"glob"`

	// OutputCSV is the path of the excerpt table written by extraction.
	OutputCSV string `json:"output_csv" yaml:"output_csv"`
}

// CommitConfig holds settings for the conditional-commit stage.
type CommitConfig struct {
	// Dir is the repository worktree the commit runs in (default ".").
	Dir string `json:"dir" yaml:"dir"`

	// CSVPath is the artifact staged and committed, relative to Dir.
	CSVPath string `json:"csv_path" yaml:"csv_path"`

	// Remote is the git remote pushed to (default "origin").
	Remote string `json:"remote" yaml:"remote"`

	// Branch is the branch pushed to; empty means the current branch.
	Branch string `json:"branch" yaml:"branch"`

	// AuthorName and AuthorEmail set the commit identity.
	AuthorName  string `json:"author_name" yaml:"author_name"`
	AuthorEmail string `json:"author_email" yaml:"author_email"`

	// Token authenticates the push when no ambient credential helper is
	// available. Never serialized.
	Token string `json:"-" yaml:"-"`
}

// IndexConfig holds settings for the excerpt search index.
type IndexConfig struct {
	// DataDir is the base data directory (contains excerpts.csv and index/).
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// ScheduleConfig holds settings for the built-in cron scheduler.
type ScheduleConfig struct {
	// Cron is a five-field cron expression selecting pipeline run times.
	Cron string `json:"cron" yaml:"cron"`

	// Timezone interprets the cron expression (default "UTC").
	Timezone string `json:"timezone" yaml:"timezone"`
}

// PipelineConfig groups all stage configurations for the pipeline.
type PipelineConfig struct {
	Sync     SyncConfig     `json:"sync" yaml:"sync"`
	Extract  ExtractConfig  `json:"extract" yaml:"extract"`
	Commit   CommitConfig   `json:"commit" yaml:"commit"`
	Index    IndexConfig    `json:"index" yaml:"index"`
	Schedule ScheduleConfig `json:"schedule" yaml:"schedule"`
}
