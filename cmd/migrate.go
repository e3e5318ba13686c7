// Copyright (c) 2025 Gridmove
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"gridmove/cli/internal/airtable"
	"gridmove/cli/internal/config"
	"gridmove/cli/internal/grist"
	"gridmove/cli/internal/logging"
	"gridmove/cli/internal/migrate"
	"gridmove/cli/internal/xdg"

	"atomicgo.dev/cursor"

	"github.com/google/uuid"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	migrateTables  []string
	migrateDocName string
	migrateBatch   int
)

// migrateCmd represents the migrate command that copies the configured
// Airtable base into a new Grist document. It creates the document, creates
// one Grist table per source table, then transfers records table by table,
// showing a live per-table progress list. A table whose transfer fails is
// reported and skipped; the remaining tables keep migrating.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate the configured Airtable base into a new Grist document",
	Long: `The migrate command copies the configured Airtable base into a brand new
Grist document: every table's schema is translated to Grist column types,
the tables are created in the destination workspace, and all records are
transferred in batches.

Tables are migrated one at a time, in base order (or the order given with
--tables). A failure while transferring one table's records does not stop
the run; the table is reported at the end and the others keep going.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if cfg.Airtable.BaseID == "" || cfg.Grist.WorkspaceID == 0 {
			fmt.Println("⚠️  No migration configured.")
			fmt.Println("   Please run 'gridmove connect' first.")
			return nil
		}
		airtableKey := resolveAirtableKey()
		gristKey := resolveGristKey()
		if airtableKey == "" || gristKey == "" {
			fmt.Println("⚠️  Missing API keys.")
			fmt.Println("   Please run 'gridmove connect' first.")
			return nil
		}

		docName := cfg.Grist.DocName
		if migrateDocName != "" {
			docName = migrateDocName
		}
		if docName == "" {
			// Suffix keeps repeated runs apart in the workspace listing.
			docName = "Airtable Import " + uuid.NewString()[:8]
		}

		pterm.Println()
		pterm.Println(pterm.NewStyle(pterm.FgLightCyan).Sprint("→ Base:      ") + pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint(cfg.Airtable.BaseID))
		pterm.Println(pterm.NewStyle(pterm.FgLightCyan).Sprint("→ Grist:     ") + pterm.NewStyle(pterm.FgLightBlue).Sprintf("%s (workspace %d)", cfg.Grist.ServerURL, cfg.Grist.WorkspaceID))
		pterm.Println(pterm.NewStyle(pterm.FgLightCyan).Sprint("→ Document:  ") + pterm.NewStyle(pterm.FgLightBlue).Sprint(docName))
		pterm.Println()

		ctx := cmd.Context()
		source := airtable.NewClient(airtableKey)
		dest := grist.NewClient(cfg.Grist.ServerURL, gristKey)

		// Resolve the table order up front; --tables selects a subset in the
		// order given on the command line.
		schema, err := source.BaseSchema(ctx, cfg.Airtable.BaseID)
		if err != nil {
			pterm.Printf("❌ Failed to read the base schema\n")
			pterm.Println(logging.PresentError("", err))
			return err
		}
		tableIDs, err := selectTables(schema, migrateTables)
		if err != nil {
			pterm.Printf("❌ %s\n", err)
			return err
		}
		if len(tableIDs) == 0 {
			pterm.Println("⚠️  The base has no tables to migrate.")
			return nil
		}

		startAt := time.Now()

		// Live progress area: one line per table, docker-compose style.
		// The ticker goroutine redraws while the migrator's synchronous
		// listener mutates the state, hence the mutex.
		frames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
		var (
			mu           sync.Mutex
			order        []string
			activeTable  string
			phaseLine    string
			completed    = map[string]struct{}{}
			failed       = map[string]string{}
			frameIdx     int
			maxLineLen   int
			lastRendered string
			area         *pterm.AreaPrinter
		)
		spinStop := make(chan struct{})
		var spinWG sync.WaitGroup

		updateArea := func() {
			if area == nil {
				return
			}
			mu.Lock()
			defer mu.Unlock()
			lines := make([]string, 0, len(order)+1)
			if phaseLine != "" {
				lines = append(lines, frames[frameIdx%len(frames)]+" "+phaseLine)
			}
			for _, name := range order {
				switch {
				case name == activeTable:
					lines = append(lines, frames[frameIdx%len(frames)]+" migrating "+name)
				case hasKey(completed, name):
					lines = append(lines, "✓ migrated "+name)
				default:
					if _, ok := failed[name]; ok {
						lines = append(lines, "✗ failed "+name)
					}
				}
			}
			for _, l := range lines {
				if n := utf8.RuneCountInString(l); n > maxLineLen {
					maxLineLen = n
				}
			}
			for i := range lines {
				if pad := maxLineLen - utf8.RuneCountInString(lines[i]); pad > 0 {
					lines[i] = lines[i] + strings.Repeat(" ", pad)
				}
			}
			text := strings.Join(lines, "\n")
			if text == lastRendered {
				return
			}
			lastRendered = text
			area.Update(text)
		}
		startArea := func() {
			if area != nil {
				return
			}
			cursor.Hide()
			area, _ = pterm.DefaultArea.WithRemoveWhenDone(true).Start()
			spinWG.Add(1)
			go func() {
				defer spinWG.Done()
				t := time.NewTicker(120 * time.Millisecond)
				defer t.Stop()
				for {
					select {
					case <-t.C:
						mu.Lock()
						frameIdx++
						mu.Unlock()
						updateArea()
					case <-spinStop:
						return
					}
				}
			}()
		}
		stopArea := func() {
			if area == nil {
				return
			}
			close(spinStop)
			spinWG.Wait()
			area.Stop()
			area = nil
			cursor.Show()
		}

		migrator := migrate.New(source, dest)
		migrator.SetBatchSize(migrateBatch)
		migrator.OnProgress(func(ev migrate.Event) {
			mu.Lock()
			switch ev.Phase {
			case migrate.PhaseCreating:
				phaseLine = "creating document"
				if len(order) > 0 || activeTable != "" {
					phaseLine = "creating tables"
				}
			case migrate.PhaseFetching:
				phaseLine = "fetching schemas"
			case migrate.PhaseMigrating:
				phaseLine = ""
				if activeTable != "" {
					completed[activeTable] = struct{}{}
				}
				activeTable = ev.TableName
				order = append(order, ev.TableName)
			case migrate.PhaseError:
				if ev.CurrentTable > 0 {
					// Per-table failure; the run continues.
					failed[ev.TableName] = ev.Err.Error()
					activeTable = ""
				}
			case migrate.PhaseComplete:
				phaseLine = ""
				if activeTable != "" {
					completed[activeTable] = struct{}{}
					activeTable = ""
				}
			}
			mu.Unlock()
			updateArea()
		})

		startArea()
		result, err := migrator.Run(ctx, migrate.Job{
			BaseID:      cfg.Airtable.BaseID,
			TableIDs:    tableIDs,
			WorkspaceID: cfg.Grist.WorkspaceID,
			DocName:     docName,
		})
		stopArea()

		elapsed := time.Since(startAt).Round(time.Millisecond)
		if result != nil {
			appendRunLog(result, elapsed)
		}
		if err != nil {
			title := pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprint("Migration Failed")
			details := fmt.Sprintf("Duration: %s\n\n%s", elapsed, logging.PresentError("", err))
			pterm.Println(pterm.DefaultBox.WithTitle(title).WithPadding(1).Sprint(details))
			return err
		}

		if len(result.Errors) > 0 {
			title := pterm.NewStyle(pterm.FgYellow, pterm.Bold).Sprint("Migration Completed with Errors")
			var b strings.Builder
			fmt.Fprintf(&b, "Duration: %s\nDocument: %s\nTables migrated: %d of %d\nRun id: %s\n\nFailed tables:",
				elapsed, result.DocID, len(result.Migrated), len(tableIDs), result.RunID)
			for _, te := range result.Errors {
				fmt.Fprintf(&b, "\n  ✗ %s: %s", te.TableName, logging.PresentError("", te.Err))
			}
			pterm.Println(pterm.DefaultBox.WithTitle(title).WithPadding(1).Sprint(b.String()))
			return nil
		}

		title := pterm.NewStyle(pterm.FgGreen, pterm.Bold).Sprint("Migration Completed")
		details := fmt.Sprintf("Duration: %s\nDocument: %s\nTables migrated: %d\nRun id: %s",
			elapsed, result.DocID, len(result.Migrated), result.RunID)
		pterm.Println(pterm.DefaultBox.WithTitle(title).WithPadding(1).Sprint(details))
		return nil
	},
}

// selectTables returns the table ids to migrate. With no selection, all
// tables in base order. With a selection, the named tables (ids or names) in
// the selection's order; naming a table the base does not have is an error.
func selectTables(schema []airtable.Table, selection []string) ([]string, error) {
	if len(selection) == 0 {
		ids := make([]string, len(schema))
		for i, t := range schema {
			ids[i] = t.ID
		}
		return ids, nil
	}
	byKey := make(map[string]string, len(schema)*2)
	for _, t := range schema {
		byKey[t.ID] = t.ID
		byKey[t.Name] = t.ID
	}
	ids := make([]string, 0, len(selection))
	for _, s := range selection {
		id, ok := byKey[s]
		if !ok {
			return nil, errors.New("table not found in base: " + s)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func hasKey(set map[string]struct{}, key string) bool {
	_, ok := set[key]
	return ok
}

// appendRunLog records a finished run in the state directory so doc ids and
// run ids survive past the terminal session. Best effort; a run log that
// cannot be written never fails the migration.
func appendRunLog(result *migrate.Result, elapsed time.Duration) {
	dir, err := xdg.StateDir()
	if err != nil {
		return
	}
	entry := map[string]any{
		"run_id":      result.RunID,
		"doc_id":      result.DocID,
		"migrated":    len(result.Migrated),
		"failed":      len(result.Errors),
		"duration_ms": elapsed.Milliseconds(),
		"finished_at": time.Now().UTC().Format(time.RFC3339),
	}
	line, err := json.Marshal(entry)
	if err != nil {
		return
	}
	f, err := os.OpenFile(filepath.Join(dir, "runs.jsonl"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return
	}
	defer f.Close()
	_, _ = f.Write(append(line, '\n'))
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.Flags().StringSliceVar(&migrateTables, "tables", nil, "Migrate only these tables (ids or names), in this order")
	migrateCmd.Flags().StringVar(&migrateDocName, "doc-name", "", "Name for the new Grist document")
	migrateCmd.Flags().IntVar(&migrateBatch, "batch-size", 0, "Records per insert request (default 100)")
}
