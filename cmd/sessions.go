package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kastheco/arbor/app"
	"github.com/kastheco/arbor/config/auditlog"
	"github.com/kastheco/arbor/config/planstate"
	"github.com/kastheco/arbor/config/planstore"
	"github.com/kastheco/arbor/session"
	"github.com/kastheco/arbor/ui"
	"github.com/spf13/cobra"
)

const defaultWidth = 80

// resolveSession finds a session by full id or unique id prefix.
func resolveSession(store planstore.Store, idOrPrefix string) (planstore.SessionEntry, error) {
	entry, err := store.Get(idOrPrefix)
	if err == nil {
		return entry, nil
	}
	if !errors.Is(err, planstore.ErrNotFound) {
		return planstore.SessionEntry{}, err
	}

	all, err := store.List()
	if err != nil {
		return planstore.SessionEntry{}, err
	}
	var matches []planstore.SessionEntry
	for _, e := range all {
		if strings.HasPrefix(e.ID, idOrPrefix) {
			matches = append(matches, e)
		}
	}
	switch len(matches) {
	case 0:
		return planstore.SessionEntry{}, fmt.Errorf("%w: %s", planstore.ErrNotFound, idOrPrefix)
	case 1:
		return matches[0], nil
	default:
		return planstore.SessionEntry{}, fmt.Errorf("ambiguous session id %q matches %d sessions", idOrPrefix, len(matches))
	}
}

// executeSessionsList lists saved sessions, optionally only those for goal.
func executeSessionsList(store planstore.Store, goal string, width int) (string, error) {
	var (
		entries []planstore.SessionEntry
		err     error
	)
	if goal != "" {
		entries, err = store.FindByGoal(goal)
	} else {
		entries, err = store.List()
	}
	if err != nil {
		return "", err
	}
	return ui.RenderSessionList(entries, width) + "\n", nil
}

// executeSessionsShow prints a session's snapshot as JSON, or as rendered
// markdown when markdown is set.
func executeSessionsShow(store planstore.Store, id string, markdown bool, width int, now time.Time) (string, error) {
	entry, err := resolveSession(store, id)
	if err != nil {
		return "", err
	}
	if !markdown {
		data, err := planstate.Marshal(entry.Snapshot)
		if err != nil {
			return "", err
		}
		return string(data) + "\n", nil
	}

	md := ui.SnapshotMarkdown(entry.Snapshot)
	md += fmt.Sprintf("\n_session %s, updated %s_\n", entry.ID, ui.Age(entry.UpdatedAt, now))
	return ui.RenderMarkdown(md, width)
}

// executeSessionsHistory replays a session's interactions from the audit log.
func executeSessionsHistory(store planstore.Store, audit auditlog.Logger, id string) (string, error) {
	entry, err := resolveSession(store, id)
	if err != nil {
		return "", err
	}
	events, err := auditlog.QueryAll(audit, auditlog.QueryFilter{SessionID: entry.ID, Oldest: true})
	if err != nil {
		return "", fmt.Errorf("query audit log: %w", err)
	}
	interactions := session.ReplayHistory(events)
	if len(interactions) == 0 {
		return "no recorded interactions\n", nil
	}
	var sb strings.Builder
	for i, in := range interactions {
		first, _, _ := strings.Cut(in.Content, "\n")
		sb.WriteString(fmt.Sprintf("%3d  %-6s  %s\n", i+1, in.Type, first))
	}
	return sb.String(), nil
}

// executeSessionsImport imports a snapshot file, or every snapshot in a
// directory.
func executeSessionsImport(store planstore.Store, path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("import: %w", err)
	}
	if info.IsDir() {
		n, err := planstore.ImportDir(store, path)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("imported %d session(s) from %s\n", n, path), nil
	}
	entry, created, err := planstore.ImportFile(store, path)
	if err != nil {
		return "", err
	}
	if !created {
		return fmt.Sprintf("already imported as %s\n", entry.ID), nil
	}
	return fmt.Sprintf("imported %s as %s\n", path, entry.ID), nil
}

// executeSessionsDelete removes a session.
func executeSessionsDelete(store planstore.Store, id string) (string, error) {
	entry, err := resolveSession(store, id)
	if err != nil {
		return "", err
	}
	if err := store.Delete(entry.ID); err != nil {
		return "", err
	}
	return fmt.Sprintf("deleted %s\n", entry.ID), nil
}

// withStore runs fn against the configured store and prints its output.
func withStore(cmd *cobra.Command, fn func(planstore.Store) (string, error)) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	out, err := fn(store)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}

// NewSessionsCmd builds the `arbor sessions` command tree.
func NewSessionsCmd() *cobra.Command {
	sessionsCmd := &cobra.Command{
		Use:   "sessions",
		Short: "Manage saved planning sessions",
	}

	var goalFilter string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List saved sessions, most recent first",
		RunE: func(cmd *cobra.Command, args []string) error {
			width := app.TerminalWidth(os.Stdout, defaultWidth)
			return withStore(cmd, func(s planstore.Store) (string, error) {
				return executeSessionsList(s, goalFilter, width)
			})
		},
	}
	listCmd.Flags().StringVar(&goalFilter, "goal", "", "only sessions with exactly this goal")
	sessionsCmd.AddCommand(listCmd)

	var markdownFlag bool
	showCmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print a session's snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			width := app.TerminalWidth(os.Stdout, defaultWidth)
			return withStore(cmd, func(s planstore.Store) (string, error) {
				return executeSessionsShow(s, args[0], markdownFlag, width, time.Now())
			})
		},
	}
	showCmd.Flags().BoolVar(&markdownFlag, "markdown", false, "render as markdown instead of JSON")
	sessionsCmd.AddCommand(showCmd)

	historyCmd := &cobra.Command{
		Use:   "history <id>",
		Short: "Replay a session's interactions from the audit log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			audit := openAudit(cfg)
			defer audit.Close()
			return withStore(cmd, func(s planstore.Store) (string, error) {
				return executeSessionsHistory(s, audit, args[0])
			})
		},
	}
	sessionsCmd.AddCommand(historyCmd)

	importCmd := &cobra.Command{
		Use:   "import <file-or-dir>",
		Short: "Import exported snapshot files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, func(s planstore.Store) (string, error) {
				return executeSessionsImport(s, args[0])
			})
		},
	}
	sessionsCmd.AddCommand(importCmd)

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a saved session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, func(s planstore.Store) (string, error) {
				return executeSessionsDelete(s, args[0])
			})
		},
	}
	sessionsCmd.AddCommand(deleteCmd)

	return sessionsCmd
}
