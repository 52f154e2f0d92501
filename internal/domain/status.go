package domain

import "strings"

// ServiceStatus is the normalized state of a service.
type ServiceStatus string

const (
	StatusAvailable ServiceStatus = "available"
	StatusDeploying ServiceStatus = "deploying"
	StatusSuspended ServiceStatus = "suspended"
	StatusFailed    ServiceStatus = "failed"
	StatusUnknown   ServiceStatus = "unknown"
)

// serviceStatusTable maps case-folded API status strings to the
// normalized enum. "unavailable" is an older API spelling of failed.
var serviceStatusTable = map[string]ServiceStatus{
	"available":   StatusAvailable,
	"deploying":   StatusDeploying,
	"suspended":   StatusSuspended,
	"failed":      StatusFailed,
	"unavailable": StatusFailed,
}

// ParseServiceStatus normalizes a raw API status string. Unmapped
// values become StatusUnknown rather than an error.
func ParseServiceStatus(raw string) ServiceStatus {
	if s, ok := serviceStatusTable[strings.ToLower(raw)]; ok {
		return s
	}
	return StatusUnknown
}

// Title returns the status capitalized for display (ex: "Available").
func (s ServiceStatus) Title() string {
	if s == "" {
		return "Unknown"
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}

// DeployStatus is the normalized state of a deployment.
type DeployStatus string

const (
	DeployLive             DeployStatus = "live"
	DeployBuildFailed      DeployStatus = "build_failed"
	DeployCanceled         DeployStatus = "canceled"
	DeployCreated          DeployStatus = "created"
	DeployBuildInProgress  DeployStatus = "build_in_progress"
	DeployUpdateInProgress DeployStatus = "update_in_progress"
	DeployDeactivated      DeployStatus = "deactivated"
)

var deployStatusTable = map[string]DeployStatus{
	"live":               DeployLive,
	"build_failed":       DeployBuildFailed,
	"canceled":           DeployCanceled,
	"created":            DeployCreated,
	"build_in_progress":  DeployBuildInProgress,
	"update_in_progress": DeployUpdateInProgress,
	"deactivated":        DeployDeactivated,
}

// ParseDeployStatus normalizes a raw deploy status string. Unmapped
// values become DeployCreated, the conservative "not yet known" state.
func ParseDeployStatus(raw string) DeployStatus {
	if s, ok := deployStatusTable[strings.ToLower(raw)]; ok {
		return s
	}
	return DeployCreated
}

// InProgress reports whether the deploy has started but not finished.
func (d DeployStatus) InProgress() bool {
	switch d {
	case DeployBuildInProgress, DeployUpdateInProgress, DeployCreated:
		return true
	}
	return false
}

// Label returns the status with underscores replaced by spaces and
// each word capitalized (ex: "Build In Progress").
func (d DeployStatus) Label() string {
	words := strings.Split(string(d), "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
