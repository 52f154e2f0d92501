package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/renderdash/rdash/internal/app"
	"github.com/renderdash/rdash/internal/config"
	"github.com/renderdash/rdash/internal/domain"
	"github.com/renderdash/rdash/internal/links"
	"github.com/renderdash/rdash/internal/logger"
	"github.com/renderdash/rdash/internal/render"
	"github.com/renderdash/rdash/internal/store/filecache"
	"github.com/renderdash/rdash/internal/version"
)

const usageText = `rdash - Render services dashboard and shortcuts

Usage:
  rdash                          open the dashboard
  rdash <alias> <action>         open a service page or print its status
  rdash service list             list configured services
  rdash service add <name|id>    add a service to the config
  rdash service remove <alias>   remove a service from the config

Actions:
  logs, events, metrics, settings, deploys, status

Flags:
  -c, --config <path>   config file (default: ./config.yaml, ~/.config/rdash/config.yaml)
      --no-browser      print the URL instead of opening a browser
      --no-cache        bypass the response cache
  -V, --version         print version and exit
`

// requestTimeout bounds one-shot CLI API calls.
const requestTimeout = 30 * time.Second

// Run parses arguments and dispatches: no positional args opens the
// dashboard, "service" routes to config management, anything else is
// an alias plus action. Returns the process exit code.
func Run(args []string) int {
	flags := pflag.NewFlagSet("rdash", pflag.ContinueOnError)
	flags.SetOutput(os.Stderr)
	flags.Usage = func() { fmt.Fprint(os.Stderr, usageText) }

	configPath := flags.StringP("config", "c", "", "config file path")
	noBrowser := flags.Bool("no-browser", false, "print the URL instead of opening a browser")
	noCache := flags.Bool("no-cache", false, "bypass the response cache")
	showVersion := flags.BoolP("version", "V", false, "print version and exit")

	if err := flags.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return 0
		}
		return 1
	}

	if *showVersion {
		fmt.Printf("rdash %s (commit=%s, built=%s, %s)\n",
			version.Version, version.Commit, version.BuildDate, version.GoVersion)
		return 0
	}

	rest := flags.Args()
	switch {
	case len(rest) == 0:
		if err := app.Run(app.Options{ConfigPath: *configPath, NoCache: *noCache}); err != nil {
			fmt.Fprintf(os.Stderr, "rdash: %v\n", err)
			return 1
		}
		return 0

	case rest[0] == "service":
		return runService(rest[1:], *configPath, *noCache)

	case len(rest) == 2:
		return runAction(rest[0], rest[1], *configPath, *noBrowser)

	default:
		flags.Usage()
		return 1
	}
}

// actionSet is what a bare `rdash <alias> <action>` accepts. The
// env_vars page has no shortcut here: it is a dashboard-modal concern.
var actionSet = map[string]links.Action{
	"logs":     links.ActionLogs,
	"events":   links.ActionEvents,
	"metrics":  links.ActionMetrics,
	"settings": links.ActionSettings,
	"deploys":  links.ActionDeploys,
}

func runAction(alias, action string, configPath string, noBrowser bool) int {
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rdash: %v\n", err)
		return 1
	}

	svc, err := config.FindServiceByAliasOrID(cfg, alias)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rdash: %v\n", err)
		return 1
	}
	if svc == nil {
		fmt.Fprintf(os.Stderr, "rdash: no service matches %q\n", alias)
		return 1
	}

	if action == "status" {
		return runStatus(cfg, svc)
	}

	linkAction, ok := actionSet[action]
	if !ok {
		fmt.Fprintf(os.Stderr, "rdash: unknown action %q (logs, events, metrics, settings, deploys, status)\n", action)
		return 1
	}

	url := links.ServiceURL(svc.ID, linkAction)
	if noBrowser {
		fmt.Println(url)
		return 0
	}
	if err := links.Open(url); err != nil {
		fmt.Fprintf(os.Stderr, "could not open a browser, visit: %s\n", url)
	}
	return 0
}

func runStatus(cfg *config.AppConfig, svcCfg *domain.ServiceConfig) int {
	client := newClient(cfg, false)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	svc, err := client.GetServiceWithDeploy(ctx, svcCfg.ID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rdash: %v\n", err)
		return 1
	}

	fmt.Print(formatStatus(svc, time.Now()))
	return 0
}

// statusIcons are the one-glyph summaries used in terminal output.
var statusIcons = map[domain.ServiceStatus]string{
	domain.StatusAvailable: "🟢",
	domain.StatusDeploying: "🟠",
	domain.StatusSuspended: "⚫",
	domain.StatusFailed:    "🔴",
	domain.StatusUnknown:   "⚪",
}

func statusIcon(s domain.ServiceStatus) string {
	if icon, ok := statusIcons[s]; ok {
		return icon
	}
	return statusIcons[domain.StatusUnknown]
}

// formatStatus renders the `rdash <alias> status` block.
func formatStatus(svc *domain.Service, now time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s (%s)\n", statusIcon(svc.Status), svc.Name, svc.ID)
	fmt.Fprintf(&b, "   Status:  %s\n", svc.Status.Title())
	if svc.Type != "" {
		fmt.Fprintf(&b, "   Type:    %s\n", svc.Type)
	}
	if url := svc.DisplayURL(); url != "" {
		fmt.Fprintf(&b, "   URL:     %s\n", url)
	}

	if d := svc.LatestDeploy; d != nil {
		line := d.Status.Label()
		if !d.CreatedAt.IsZero() {
			line += " · " + timeAgo(d.CreatedAt, now)
		}
		if sha := d.ShortSHA(); sha != "" {
			line += " · " + sha
		}
		fmt.Fprintf(&b, "   Deploy:  %s\n", line)
		if commit := d.CommitURL(); commit != "" {
			fmt.Fprintf(&b, "   Commit:  %s\n", commit)
		}
	} else {
		fmt.Fprintf(&b, "   Deploy:  none\n")
	}

	return b.String()
}

func timeAgo(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d >= 24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	case d >= time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d >= time.Minute:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	default:
		return fmt.Sprintf("%ds ago", int(d.Seconds()))
	}
}

// newClient builds the API client for one-shot CLI commands. Logs go
// to stderr at the level RDASH_LOG_LEVEL selects.
func newClient(cfg *config.AppConfig, useCache bool) *render.Client {
	log := logger.New(os.Getenv("RDASH_LOG_LEVEL"))

	opts := []render.Option{render.WithLogger(log)}
	if useCache {
		if cache, err := filecache.New(filecache.DefaultDir(), filecache.DefaultTTL); err == nil {
			opts = append(opts, render.WithCache(cache))
		}
	}
	return render.NewClient(cfg.Render.APIKey, opts...)
}
