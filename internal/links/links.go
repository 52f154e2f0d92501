package links

import (
	"fmt"

	"github.com/pkg/browser"
)

// DashboardBase is the web dashboard endpoint deep links point at.
const DashboardBase = "https://dashboard.render.com"

// Action is a dashboard page reachable for a service.
type Action string

const (
	ActionLogs     Action = "logs"
	ActionEvents   Action = "events"
	ActionMetrics  Action = "metrics"
	ActionDeploys  Action = "deploys"
	ActionSettings Action = "settings"
	ActionEnvVars  Action = "env_vars"
)

// suffixes maps an action to its URL path suffix. Settings is the
// service root; env_vars uses the dashboard's /env spelling.
var suffixes = map[Action]string{
	ActionLogs:     "/logs",
	ActionEvents:   "/events",
	ActionMetrics:  "/metrics",
	ActionDeploys:  "/deploys",
	ActionSettings: "",
	ActionEnvVars:  "/env",
}

// Valid reports whether a is a known action.
func Valid(a Action) bool {
	_, ok := suffixes[a]
	return ok
}

// ServiceURL builds the dashboard deep link for a service action.
// Unknown actions fall back to the service root.
func ServiceURL(serviceID string, action Action) string {
	return fmt.Sprintf("%s/web/%s%s", DashboardBase, serviceID, suffixes[action])
}

// Open launches the system browser on url. The error is advisory:
// callers print the URL as a fallback rather than failing.
func Open(url string) error {
	return browser.OpenURL(url)
}
