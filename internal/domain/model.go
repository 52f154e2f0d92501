package domain

import "time"

// ServiceConfig is a tracked service as declared in config.yaml.
// Immutable for the duration of a dashboard session.
type ServiceConfig struct {
	// ID is the opaque Render service identifier (ex: srv-cabc123).
	ID string `yaml:"id"`

	// Name is the display label shown on the dashboard card.
	// Defaults to ID when omitted.
	Name string `yaml:"name"`

	// Aliases are shorthand strings for CLI lookup (ex: "chat").
	Aliases []string `yaml:"aliases,omitempty"`

	// Priority is the sort key for display ordering (lower first).
	Priority int `yaml:"priority,omitempty"`
}

// Service is the live state of a tracked service as observed from the
// remote API. Constructed fresh on every successful fetch and replaced
// wholesale in the display set; never mutated field-by-field.
type Service struct {
	// ─────────────────────────────
	// Identity
	// ─────────────────────────────

	// ID is the Render service identifier. Display-set identity key.
	ID string

	// Name is the service name reported by the API.
	Name string

	// Type is the free-form category string from the API
	// (ex: web_service, cron_job, static_site).
	Type string

	// ─────────────────────────────
	// Observed state
	// ─────────────────────────────

	// Status is the effective service status. Forced to
	// StatusDeploying whenever LatestDeploy is in progress, which is
	// a stronger signal than the API's own status field.
	Status ServiceStatus

	// URL is the platform-assigned address, if any.
	URL string

	// CustomDomain is the operator-assigned address, if any. Takes
	// display precedence over URL.
	CustomDomain string

	// LatestDeploy is the most recent deployment, nil when the
	// service has none or the deploy lookup failed.
	LatestDeploy *Deploy
}

// DisplayURL returns the address to show for the service: the custom
// domain when set, otherwise the platform URL. Empty when neither is
// known.
func (s *Service) DisplayURL() string {
	if s.CustomDomain != "" {
		return "https://" + s.CustomDomain
	}
	return s.URL
}

// Deploy is one deployment attempt of a service.
type Deploy struct {
	// ID is the deploy identifier. "unknown" when the payload carried
	// neither an id nor a deployId field.
	ID string

	// Status is the deploy state.
	Status DeployStatus

	// CreatedAt is when the deploy started. Always set; falls back to
	// fetch time when the payload timestamp is absent or unparsable.
	CreatedAt time.Time

	// FinishedAt is when the deploy completed, zero while in
	// progress or when unreported.
	FinishedAt time.Time

	// ─────────────────────────────
	// Commit metadata (best effort)
	// ─────────────────────────────

	CommitSHA     string
	CommitMessage string

	// RepoURL is the source repository, with any trailing ".git"
	// stripped so commit links can be built by concatenation.
	RepoURL string
}

// IsInProgress reports whether the deploy is still running.
func (d *Deploy) IsInProgress() bool {
	return d.Status.InProgress()
}

// ShortSHA returns the first 7 characters of the commit SHA, or ""
// when no commit is attached.
func (d *Deploy) ShortSHA() string {
	if len(d.CommitSHA) > 7 {
		return d.CommitSHA[:7]
	}
	return d.CommitSHA
}

// CommitURL returns a browsable link to the deployed commit, or ""
// when either the SHA or the repository URL is missing.
func (d *Deploy) CommitURL() string {
	if d.CommitSHA == "" || d.RepoURL == "" {
		return ""
	}
	return d.RepoURL + "/commit/" + d.CommitSHA
}

// EnvVar is a single environment variable of a service. Fetched on
// demand, never cached, never mutated locally.
type EnvVar struct {
	Key   string
	Value string
}
