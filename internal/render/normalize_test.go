package render

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/renderdash/rdash/internal/domain"
)

func mustParse(t *testing.T, raw string) any {
	t.Helper()
	var payload any
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		t.Fatalf("bad test payload: %v", err)
	}
	return payload
}

func TestDecodeService(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    domain.Service
	}{
		{
			name: "bare payload",
			payload: `{"id": "srv-1", "name": "chat", "type": "web_service",
				"status": "available", "serviceDetails": {"url": "https://chat.onrender.com"}}`,
			want: domain.Service{
				ID: "srv-1", Name: "chat", Type: "web_service",
				Status: domain.StatusAvailable, URL: "https://chat.onrender.com",
			},
		},
		{
			name:    "enveloped payload",
			payload: `{"service": {"id": "srv-1", "name": "chat", "status": "suspended"}}`,
			want: domain.Service{
				ID: "srv-1", Name: "chat", Type: "unknown",
				Status: domain.StatusSuspended,
			},
		},
		{
			name:    "missing fields default",
			payload: `{"id": "srv-1"}`,
			want: domain.Service{
				ID: "srv-1", Name: "srv-1", Type: "unknown",
				Status: domain.StatusUnknown,
			},
		},
		{
			name:    "unknown status normalizes",
			payload: `{"id": "srv-1", "status": "pre_deploy"}`,
			want: domain.Service{
				ID: "srv-1", Name: "srv-1", Type: "unknown",
				Status: domain.StatusUnknown,
			},
		},
		{
			name: "top-level custom domain",
			payload: `{"id": "srv-1", "status": "available",
				"customDomains": [{"name": "chat.example.com"}]}`,
			want: domain.Service{
				ID: "srv-1", Name: "srv-1", Type: "unknown",
				Status: domain.StatusAvailable, CustomDomain: "chat.example.com",
			},
		},
		{
			name: "nested custom domain with alternate field name",
			payload: `{"id": "srv-1", "status": "available",
				"serviceDetails": {"customDomains": [{"domainName": "chat.example.com"}]}}`,
			want: domain.Service{
				ID: "srv-1", Name: "srv-1", Type: "unknown",
				Status: domain.StatusAvailable, CustomDomain: "chat.example.com",
			},
		},
		{
			name:    "empty custom domain array",
			payload: `{"id": "srv-1", "status": "available", "customDomains": []}`,
			want: domain.Service{
				ID: "srv-1", Name: "srv-1", Type: "unknown",
				Status: domain.StatusAvailable,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := decodeService(mustParse(t, tt.payload), "")
			if got.ID != tt.want.ID || got.Name != tt.want.Name ||
				got.Type != tt.want.Type || got.Status != tt.want.Status ||
				got.URL != tt.want.URL || got.CustomDomain != tt.want.CustomDomain {
				t.Errorf("decodeService() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestDecodeServiceFallbackID(t *testing.T) {
	got := decodeService(mustParse(t, `{"status": "available"}`), "srv-req")
	if got.ID != "srv-req" {
		t.Errorf("ID = %q, want fallback %q", got.ID, "srv-req")
	}
	if got.Name != "srv-req" {
		t.Errorf("Name = %q, want fallback %q", got.Name, "srv-req")
	}
}

func TestDecodeDeploy(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	t.Run("full payload", func(t *testing.T) {
		d := decodeDeploy(mustParse(t, `{
			"id": "dep-1", "status": "live",
			"createdAt": "2026-08-30T10:00:00Z",
			"finishedAt": "2026-08-30T10:05:00Z",
			"commit": {"id": "abc123", "message": "fix login", "repoUrl": "https://github.com/acme/chat.git"}
		}`), now)
		if d.ID != "dep-1" || d.Status != domain.DeployLive {
			t.Errorf("got id=%q status=%v", d.ID, d.Status)
		}
		if d.CreatedAt.Hour() != 10 {
			t.Errorf("CreatedAt = %v, want payload timestamp", d.CreatedAt)
		}
		if d.CommitSHA != "abc123" || d.CommitMessage != "fix login" {
			t.Errorf("commit = %q / %q", d.CommitSHA, d.CommitMessage)
		}
		if d.RepoURL != "https://github.com/acme/chat" {
			t.Errorf("RepoURL = %q, want .git suffix stripped", d.RepoURL)
		}
	})

	t.Run("deployId fallback", func(t *testing.T) {
		d := decodeDeploy(mustParse(t, `{"deployId": "dep-2", "status": "created"}`), now)
		if d.ID != "dep-2" {
			t.Errorf("ID = %q, want %q", d.ID, "dep-2")
		}
	})

	t.Run("missing id yields sentinel", func(t *testing.T) {
		d := decodeDeploy(mustParse(t, `{"status": "live"}`), now)
		if d.ID != "unknown" {
			t.Errorf("ID = %q, want %q", d.ID, "unknown")
		}
	})

	t.Run("unparsable createdAt defaults to now", func(t *testing.T) {
		d := decodeDeploy(mustParse(t, `{"id": "dep-3", "createdAt": "yesterday"}`), now)
		if !d.CreatedAt.Equal(now) {
			t.Errorf("CreatedAt = %v, want fetch time %v", d.CreatedAt, now)
		}
	})

	t.Run("unknown status defaults to created", func(t *testing.T) {
		d := decodeDeploy(mustParse(t, `{"id": "dep-4", "status": "queued"}`), now)
		if d.Status != domain.DeployCreated {
			t.Errorf("Status = %v, want %v", d.Status, domain.DeployCreated)
		}
	})

	t.Run("repo url from deploy payload", func(t *testing.T) {
		d := decodeDeploy(mustParse(t, `{"id": "dep-5", "repoUrl": "https://github.com/acme/auth"}`), now)
		if d.RepoURL != "https://github.com/acme/auth" {
			t.Errorf("RepoURL = %q", d.RepoURL)
		}
	})

	t.Run("missing commit block", func(t *testing.T) {
		d := decodeDeploy(mustParse(t, `{"id": "dep-6", "status": "live"}`), now)
		if d.CommitSHA != "" || d.CommitMessage != "" || d.RepoURL != "" {
			t.Errorf("commit fields = %q/%q/%q, want all empty", d.CommitSHA, d.CommitMessage, d.RepoURL)
		}
	})
}

func TestDecodeLatestDeploy(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		payload string
		wantNil bool
		wantID  string
	}{
		{name: "empty enveloped list", payload: `{"deploys": []}`, wantNil: true},
		{name: "empty bare list", payload: `[]`, wantNil: true},
		{name: "not a list", payload: `{"message": "oops"}`, wantNil: true},
		{
			name:    "enveloped elements",
			payload: `{"deploys": [{"deploy": {"id": "dep-1", "status": "live"}}]}`,
			wantID:  "dep-1",
		},
		{
			name:    "bare elements",
			payload: `[{"id": "dep-2", "status": "live"}, {"id": "dep-old"}]`,
			wantID:  "dep-2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := decodeLatestDeploy(mustParse(t, tt.payload), now)
			if tt.wantNil {
				if got != nil {
					t.Errorf("decodeLatestDeploy() = %+v, want nil", got)
				}
				return
			}
			if got == nil || got.ID != tt.wantID {
				t.Errorf("decodeLatestDeploy() = %+v, want id %q", got, tt.wantID)
			}
		})
	}
}

func TestDecodeServiceListSkipsBadElements(t *testing.T) {
	payload := mustParse(t, `{"services": [
		{"service": {"id": "srv-1", "name": "chat", "status": "available"}},
		"not an object",
		{"service": {"name": "no id here"}},
		{"id": "srv-2", "name": "auth", "status": "failed"}
	]}`)

	got := decodeServiceList(payload)
	if len(got) != 2 {
		t.Fatalf("decoded %d services, want 2", len(got))
	}
	if got[0].ID != "srv-1" || got[1].ID != "srv-2" {
		t.Errorf("ids = %q, %q", got[0].ID, got[1].ID)
	}
}

func TestDecodeEnvVars(t *testing.T) {
	payload := mustParse(t, `[
		{"envVar": {"key": "DATABASE_URL", "value": "postgres://x"}},
		{"key": "PORT", "value": "8080"},
		{"envVar": {"value": "orphan"}}
	]`)

	got := decodeEnvVars(payload)
	if len(got) != 2 {
		t.Fatalf("decoded %d env vars, want 2", len(got))
	}
	if got[0].Key != "DATABASE_URL" || got[0].Value != "postgres://x" {
		t.Errorf("first var = %+v", got[0])
	}
	if got[1].Key != "PORT" || got[1].Value != "8080" {
		t.Errorf("second var = %+v", got[1])
	}
}
