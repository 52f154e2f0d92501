package render

import (
	"strings"
	"time"

	"github.com/renderdash/rdash/internal/domain"
)

// Payload normalization. The API's response shapes are loosely typed
// and partially undocumented: objects may arrive wrapped in an
// envelope or bare, field names vary between endpoint versions, and
// optional blocks are frequently absent. Every field is decoded
// through an ordered fallback chain with a safe default, so a single
// odd payload degrades that field rather than failing the object.

// stringField returns the first of the named keys holding a non-empty
// string value.
func stringField(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// objectField returns the first of the named keys holding an object.
func objectField(m map[string]any, keys ...string) map[string]any {
	for _, k := range keys {
		if v, ok := m[k].(map[string]any); ok {
			return v
		}
	}
	return nil
}

// timeField parses the first of the named keys as an ISO-8601
// timestamp. Absent or unparsable values yield the zero time.
func timeField(m map[string]any, keys ...string) time.Time {
	for _, k := range keys {
		s, ok := m[k].(string)
		if !ok || s == "" {
			continue
		}
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t
		}
		if t, err := time.Parse("2006-01-02T15:04:05.999999Z07:00", s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// unwrap removes a single-key envelope ({"service": {...}}) when
// present, otherwise returns the object unchanged.
func unwrap(m map[string]any, key string) map[string]any {
	if inner, ok := m[key].(map[string]any); ok {
		return inner
	}
	return m
}

// listPayload extracts the array from a list response that may be
// either a bare array or wrapped in an envelope object.
func listPayload(payload any, key string) []any {
	switch v := payload.(type) {
	case []any:
		return v
	case map[string]any:
		if arr, ok := v[key].([]any); ok {
			return arr
		}
	}
	return nil
}

// decodeService normalizes a service payload. fallbackID fills in for
// a missing id field (the caller knows which service it asked for).
func decodeService(payload any, fallbackID string) *domain.Service {
	m, ok := payload.(map[string]any)
	if !ok {
		return &domain.Service{
			ID:     fallbackID,
			Name:   fallbackID,
			Type:   "unknown",
			Status: domain.StatusUnknown,
		}
	}
	m = unwrap(m, "service")

	id := stringField(m, "id")
	if id == "" {
		id = fallbackID
	}
	name := stringField(m, "name")
	if name == "" {
		name = id
	}
	typ := stringField(m, "type")
	if typ == "" {
		typ = "unknown"
	}

	details := objectField(m, "serviceDetails")

	svc := &domain.Service{
		ID:           id,
		Name:         name,
		Type:         typ,
		Status:       domain.ParseServiceStatus(stringField(m, "status")),
		CustomDomain: customDomain(m, details),
	}
	if details != nil {
		svc.URL = stringField(details, "url")
	}
	return svc
}

// customDomain extracts the operator-assigned domain. Observed in two
// places depending on endpoint: a top-level customDomains array, or
// one nested in serviceDetails. The first entry's name wins, trying
// the known field spellings in order.
func customDomain(m, details map[string]any) string {
	for _, holder := range []map[string]any{m, details} {
		if holder == nil {
			continue
		}
		arr, ok := holder["customDomains"].([]any)
		if !ok || len(arr) == 0 {
			continue
		}
		entry, ok := arr[0].(map[string]any)
		if !ok {
			continue
		}
		if d := stringField(entry, "name", "domain", "domainName"); d != "" {
			return d
		}
	}
	return ""
}

// decodeDeploy normalizes a deploy payload. now supplies the required
// CreatedAt when the payload timestamp is absent or unparsable.
func decodeDeploy(payload any, now time.Time) *domain.Deploy {
	m, ok := payload.(map[string]any)
	if !ok {
		return nil
	}
	m = unwrap(m, "deploy")

	id := stringField(m, "id", "deployId")
	if id == "" {
		id = "unknown"
	}

	d := &domain.Deploy{
		ID:         id,
		Status:     domain.ParseDeployStatus(stringField(m, "status")),
		CreatedAt:  timeField(m, "createdAt"),
		FinishedAt: timeField(m, "finishedAt"),
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = now
	}

	// Commit metadata is best effort: no commit block means no commit
	// fields, and the repo URL may live on the deploy itself or
	// inside the block.
	repoURL := stringField(m, "repoUrl", "repo")
	if commit := objectField(m, "commit"); commit != nil {
		d.CommitSHA = stringField(commit, "id", "sha")
		d.CommitMessage = stringField(commit, "message")
		if repoURL == "" {
			repoURL = stringField(commit, "repoUrl", "repo")
		}
	}
	d.RepoURL = strings.TrimSuffix(repoURL, ".git")
	return d
}

// decodeLatestDeploy extracts the newest deploy from a list response.
// Returns nil when the list is empty or structurally unusable; the
// caller treats that the same as "no deploys".
func decodeLatestDeploy(payload any, now time.Time) *domain.Deploy {
	arr := listPayload(payload, "deploys")
	if len(arr) == 0 {
		return nil
	}
	return decodeDeploy(arr[0], now)
}

// decodeServiceList normalizes a bulk service response. Elements that
// are not objects or lack any usable id are skipped, not errors:
// partial success beats all-or-nothing for list endpoints.
func decodeServiceList(payload any) []*domain.Service {
	arr := listPayload(payload, "services")
	services := make([]*domain.Service, 0, len(arr))
	for _, el := range arr {
		m, ok := el.(map[string]any)
		if !ok {
			continue
		}
		m = unwrap(m, "service")
		if stringField(m, "id") == "" {
			continue
		}
		services = append(services, decodeService(m, ""))
	}
	return services
}

// decodeEnvVars normalizes an environment-variable list. Elements may
// be wrapped ({"envVar": {...}}) or bare; entries without a key are
// skipped.
func decodeEnvVars(payload any) []domain.EnvVar {
	arr := listPayload(payload, "envVars")
	vars := make([]domain.EnvVar, 0, len(arr))
	for _, el := range arr {
		m, ok := el.(map[string]any)
		if !ok {
			continue
		}
		m = unwrap(m, "envVar")
		key := stringField(m, "key")
		if key == "" {
			continue
		}
		vars = append(vars, domain.EnvVar{
			Key:   key,
			Value: stringField(m, "value"),
		})
	}
	return vars
}
