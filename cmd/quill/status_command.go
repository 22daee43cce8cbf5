package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"quill/internal/api"
	"quill/internal/config"
	"quill/internal/preflight"
	"quill/internal/queue"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon, tool, and queue health",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			for _, line := range renderSectionHeader("Daemon", colorize) {
				fmt.Fprintln(out, line)
			}
			daemonStatus, daemonErr := fetchDaemonStatus(cfg)
			switch {
			case daemonErr != nil:
				fmt.Fprintln(out, renderStatusLine("Daemon", statusWarn, "not reachable (is quilld running?)", colorize))
			case daemonStatus.Workflow.Running:
				fmt.Fprintln(out, renderStatusLine("Daemon", statusOK, fmt.Sprintf("running (pid %d)", daemonStatus.PID), colorize))
				for _, health := range daemonStatus.Workflow.StageHealth {
					kind := statusOK
					if !health.Ready {
						kind = statusError
					}
					fmt.Fprintln(out, renderStatusLine(health.Name, kind, health.Detail, colorize))
				}
			default:
				fmt.Fprintln(out, renderStatusLine("Daemon", statusWarn, "running but workflow stopped", colorize))
			}

			for _, line := range renderSectionHeader("Tools", colorize) {
				fmt.Fprintln(out, line)
			}
			for _, dep := range preflight.CheckSystemDeps(cfg) {
				kind := statusOK
				message := dep.Command
				if !dep.Available {
					kind = statusError
					if dep.Optional {
						kind = statusWarn
					}
					message = dep.Detail
				}
				fmt.Fprintln(out, renderStatusLine(dep.Name, kind, message, colorize))
			}

			for _, line := range renderSectionHeader("Paths", colorize) {
				fmt.Fprintln(out, line)
			}
			for _, result := range preflight.RunAll(cmd.Context(), cfg) {
				kind := statusOK
				if !result.Passed {
					kind = statusError
				}
				fmt.Fprintln(out, renderStatusLine(result.Name, kind, result.Detail, colorize))
			}

			for _, line := range renderSectionHeader("Queue", colorize) {
				fmt.Fprintln(out, line)
			}
			return ctx.withStore(func(_ *config.Config, store *queue.Store) error {
				stats, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}
				parts := make([]string, 0, len(stats))
				total := 0
				for _, status := range queue.AllStatuses() {
					if count := stats[status]; count > 0 {
						parts = append(parts, fmt.Sprintf("%d %s", count, status))
						total += count
					}
				}
				message := "empty"
				if total > 0 {
					message = strings.Join(parts, ", ")
				}
				fmt.Fprintln(out, renderStatusLine("Jobs", statusInfo, message, colorize))
				return nil
			})
		},
	}
}

// fetchDaemonStatus asks the running daemon for its status over the HTTP API.
func fetchDaemonStatus(cfg *config.Config) (*api.DaemonStatus, error) {
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil, fmt.Errorf("api disabled")
	}

	client := &http.Client{Timeout: 2 * time.Second}
	req, err := http.NewRequest(http.MethodGet, "http://"+bind+"/api/status", nil)
	if err != nil {
		return nil, err
	}
	if token := strings.TrimSpace(cfg.Paths.APIToken); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status endpoint returned %d", resp.StatusCode)
	}

	var status api.DaemonStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, err
	}
	return &status, nil
}
