package filecache

import (
	"fmt"
	"strings"
)

// ListServicesKey returns the cache key for a service list query.
// The limit is part of the key so differently sized queries never
// share an entry.
func ListServicesKey(limit int) string {
	return fmt.Sprintf("services_list_limit_%d", limit)
}

// SanitizeKey maps a cache key to a safe file name component.
func SanitizeKey(key string) string {
	r := strings.NewReplacer("/", "_", ":", "_")
	return r.Replace(key)
}
