package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/renderdash/rdash/internal/config"
	"github.com/renderdash/rdash/internal/domain"
)

// listServicesLimit is how many services an add-by-name search pulls.
const listServicesLimit = 100

func runService(args []string, configPath string, noCache bool) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "rdash service: expected list, add, or remove")
		return 1
	}

	switch args[0] {
	case "list":
		return runServiceList(configPath)
	case "add":
		if len(args) != 2 {
			fmt.Fprintln(os.Stderr, "usage: rdash service add <name|srv-id>")
			return 1
		}
		return runServiceAdd(args[1], configPath, noCache, os.Stdin)
	case "remove":
		if len(args) != 2 {
			fmt.Fprintln(os.Stderr, "usage: rdash service remove <alias>")
			return 1
		}
		return runServiceRemove(args[1], configPath, os.Stdin)
	default:
		fmt.Fprintf(os.Stderr, "rdash service: unknown subcommand %q\n", args[0])
		return 1
	}
}

func runServiceList(configPath string) int {
	cfg, err := config.LoadAllowEmpty(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rdash: %v\n", err)
		return 1
	}
	if len(cfg.Services) == 0 {
		fmt.Println("No services configured. Add one with: rdash service add <name|srv-id>")
		return 0
	}

	services := make([]domain.ServiceConfig, len(cfg.Services))
	copy(services, cfg.Services)
	sort.SliceStable(services, func(i, j int) bool {
		if services[i].Priority != services[j].Priority {
			return services[i].Priority < services[j].Priority
		}
		return services[i].Name < services[j].Name
	})

	for _, svc := range services {
		line := fmt.Sprintf("%3d  %-24s %s", svc.Priority, svc.Name, svc.ID)
		if len(svc.Aliases) > 0 {
			line += "  (" + strings.Join(svc.Aliases, ", ") + ")"
		}
		fmt.Println(line)
	}
	return 0
}

func runServiceAdd(term, configPath string, noCache bool, in io.Reader) int {
	cfg, err := config.LoadAllowEmpty(configPath)
	if err != nil {
		// A missing config is fine here: add bootstraps the file. The
		// API key then has to come from the environment.
		if os.Getenv("RENDER_API_KEY") == "" {
			fmt.Fprintf(os.Stderr, "rdash: %v (or set RENDER_API_KEY)\n", err)
			return 1
		}
		cfg = &config.AppConfig{
			Render: config.RenderConfig{APIKey: os.Getenv("RENDER_API_KEY")},
			Path:   configPath,
		}
	}

	client := newClient(cfg, !noCache)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	reader := bufio.NewReader(in)
	svc, code := resolveAddTarget(ctx, client, term, reader)
	if svc == nil {
		return code
	}

	aliases := promptAliases(reader, svc.Name)
	priority := promptPriority(reader)

	entry := domain.ServiceConfig{
		ID:       svc.ID,
		Name:     svc.Name,
		Aliases:  aliases,
		Priority: priority,
	}
	if err := config.AddService(cfg.Path, entry); err != nil {
		fmt.Fprintf(os.Stderr, "rdash: %v\n", err)
		return 1
	}

	fmt.Printf("Added %s (%s)\n", svc.Name, svc.ID)
	return 0
}

// serviceLookup is the slice of the API client add needs.
type serviceLookup interface {
	GetService(ctx context.Context, id string) (*domain.Service, error)
	ListServices(ctx context.Context, limit int, useCache bool) ([]*domain.Service, error)
}

// resolveAddTarget turns the add argument into a concrete service: a
// srv- prefixed term is looked up directly, anything else is a
// case-insensitive substring search over the account's services. A
// nil service means the command is done; code is the exit status.
func resolveAddTarget(ctx context.Context, client serviceLookup, term string, in *bufio.Reader) (*domain.Service, int) {
	if strings.HasPrefix(term, "srv-") {
		svc, err := client.GetService(ctx, term)
		if err != nil {
			fmt.Fprintf(os.Stderr, "rdash: %v\n", err)
			return nil, 1
		}
		return svc, 0
	}

	services, err := client.ListServices(ctx, listServicesLimit, true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rdash: %v\n", err)
		return nil, 1
	}

	q := strings.ToLower(term)
	var matches []*domain.Service
	for _, svc := range services {
		if strings.Contains(strings.ToLower(svc.Name), q) {
			matches = append(matches, svc)
		}
	}

	switch len(matches) {
	case 0:
		fmt.Fprintf(os.Stderr, "rdash: no service name contains %q\n", term)
		return nil, 1
	case 1:
		return matches[0], 0
	}

	fmt.Printf("%d services match %q:\n", len(matches), term)
	for i, svc := range matches {
		fmt.Printf("  %d) %s (%s)\n", i+1, svc.Name, svc.ID)
	}
	choice := promptLine(in, fmt.Sprintf("Select [1-%d]: ", len(matches)))
	n, err := strconv.Atoi(choice)
	if err != nil || n < 1 || n > len(matches) {
		fmt.Fprintln(os.Stderr, "rdash: invalid selection")
		return nil, 1
	}
	return matches[n-1], 0
}

func runServiceRemove(alias, configPath string, in io.Reader) int {
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

	answer := promptLine(bufio.NewReader(in), fmt.Sprintf("Remove %s (%s)? [y/N]: ", svc.Name, svc.ID))
	switch strings.ToLower(answer) {
	case "y", "yes":
	default:
		fmt.Println("Aborted.")
		return 0
	}

	if err := config.RemoveService(cfg.Path, svc.ID); err != nil {
		fmt.Fprintf(os.Stderr, "rdash: %v\n", err)
		return 1
	}
	fmt.Printf("Removed %s (%s)\n", svc.Name, svc.ID)
	return 0
}

func promptLine(r *bufio.Reader, prompt string) string {
	fmt.Print(prompt)
	line, err := r.ReadString('\n')
	if err != nil && line == "" {
		return ""
	}
	return strings.TrimSpace(line)
}

func promptAliases(r *bufio.Reader, name string) []string {
	raw := promptLine(r, fmt.Sprintf("Aliases for %s (comma-separated, optional): ", name))
	if raw == "" {
		return nil
	}
	var aliases []string
	for _, a := range strings.Split(raw, ",") {
		if a = strings.TrimSpace(a); a != "" {
			aliases = append(aliases, a)
		}
	}
	return aliases
}

func promptPriority(r *bufio.Reader) int {
	raw := promptLine(r, "Priority (lower shows first) [1]: ")
	if raw == "" {
		return 1
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		fmt.Fprintln(os.Stderr, "invalid priority, using 1")
		return 1
	}
	return n
}
