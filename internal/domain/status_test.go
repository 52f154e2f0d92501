package domain

import "testing"

func TestParseServiceStatus(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want ServiceStatus
	}{
		{name: "available", raw: "available", want: StatusAvailable},
		{name: "case folded", raw: "Available", want: StatusAvailable},
		{name: "deploying", raw: "deploying", want: StatusDeploying},
		{name: "suspended", raw: "suspended", want: StatusSuspended},
		{name: "failed", raw: "failed", want: StatusFailed},
		{name: "unavailable maps to failed", raw: "unavailable", want: StatusFailed},
		{name: "unknown value", raw: "pre_deploy_in_progress", want: StatusUnknown},
		{name: "empty", raw: "", want: StatusUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseServiceStatus(tt.raw); got != tt.want {
				t.Errorf("ParseServiceStatus(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestParseDeployStatus(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want DeployStatus
	}{
		{name: "live", raw: "live", want: DeployLive},
		{name: "build failed", raw: "build_failed", want: DeployBuildFailed},
		{name: "case folded", raw: "LIVE", want: DeployLive},
		{name: "unknown value defaults to created", raw: "queued", want: DeployCreated},
		{name: "empty defaults to created", raw: "", want: DeployCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseDeployStatus(tt.raw); got != tt.want {
				t.Errorf("ParseDeployStatus(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestDeployStatusInProgress(t *testing.T) {
	inProgress := []DeployStatus{DeployBuildInProgress, DeployUpdateInProgress, DeployCreated}
	for _, s := range inProgress {
		if !s.InProgress() {
			t.Errorf("%v.InProgress() = false, want true", s)
		}
	}

	settled := []DeployStatus{DeployLive, DeployBuildFailed, DeployCanceled, DeployDeactivated}
	for _, s := range settled {
		if s.InProgress() {
			t.Errorf("%v.InProgress() = true, want false", s)
		}
	}
}

func TestDeployStatusLabel(t *testing.T) {
	if got := DeployBuildInProgress.Label(); got != "Build In Progress" {
		t.Errorf("Label() = %q, want %q", got, "Build In Progress")
	}
	if got := DeployLive.Label(); got != "Live" {
		t.Errorf("Label() = %q, want %q", got, "Live")
	}
}
