// Package check audits whether arbor can run: config, storage and, when asked,
// the model endpoint.
package check

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kastheco/arbor/config"
	"github.com/kastheco/arbor/config/auditlog"
	"github.com/kastheco/arbor/config/planparser"
	"github.com/kastheco/arbor/config/planstore"
	"github.com/kastheco/arbor/internal/llm"
	"github.com/kastheco/arbor/internal/prompt"
)

// Status is the outcome of one check.
type Status int

const (
	StatusOK Status = iota
	StatusFailed
	StatusSkipped
)

// Result is one line of the report.
type Result struct {
	Name   string
	Status Status
	Detail string
}

// Report collects every check result in run order.
type Report struct {
	Results []Result
}

// Summary returns how many checks passed out of those that ran.
func (r Report) Summary() (ok, total int) {
	for _, res := range r.Results {
		switch res.Status {
		case StatusOK:
			ok++
			total++
		case StatusFailed:
			total++
		}
	}
	return ok, total
}

func (r *Report) add(name string, err error, okDetail string) {
	if err != nil {
		r.Results = append(r.Results, Result{Name: name, Status: StatusFailed, Detail: err.Error()})
		return
	}
	r.Results = append(r.Results, Result{Name: name, Status: StatusOK, Detail: okDetail})
}

func (r *Report) skip(name, why string) {
	r.Results = append(r.Results, Result{Name: name, Status: StatusSkipped, Detail: why})
}

// modelCheckTimeout bounds the model round-trip.
const modelCheckTimeout = 30 * time.Second

// Audit runs every check. model may be nil, in which case the model check is
// skipped.
func Audit(ctx context.Context, cfg *config.Config, model llm.Completer) Report {
	var r Report

	r.add("config", cfg.Validate(), fmt.Sprintf("%s / %s", cfg.Backend, cfg.Model))

	_, err := prompt.NewFormatter(cfg.ChatTemplate)
	r.add("chat template", err, cfg.ChatTemplate)

	if cfg.StorePath == "" {
		r.skip("session store", "store_path not set")
	} else {
		r.add("session store", checkStore(cfg.StorePath), cfg.StorePath)
	}

	if cfg.AuditPath == "" {
		r.skip("audit log", "audit_path not set")
	} else {
		r.add("audit log", checkAudit(cfg.AuditPath), cfg.AuditPath)
	}

	exportPath := cfg.ExportPath
	if exportPath == "" {
		exportPath = filepath.Join(".", ".plan_info", "aplan.json")
	}
	r.add("export dir", checkWritableDir(filepath.Dir(exportPath)), filepath.Dir(exportPath))

	if model == nil {
		r.skip("model", "pass --model to send a test request")
	} else {
		n, err := checkModel(ctx, model)
		r.add("model", err, fmt.Sprintf("parsed %d candidate(s) from a test request", n))
	}

	return r
}

func checkStore(path string) error {
	store, err := planstore.NewStoreFromConfig(path)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.Ping()
}

func checkAudit(path string) error {
	l, err := auditlog.Open(path)
	if err != nil {
		return err
	}
	defer l.Close()
	_, err = l.Query(auditlog.QueryFilter{Limit: 1})
	return err
}

// checkWritableDir checks that dir exists and is writable, or that the
// closest existing parent is.
func checkWritableDir(dir string) error {
	for {
		info, err := os.Stat(dir)
		if err == nil {
			if !info.IsDir() {
				return fmt.Errorf("%s is not a directory", dir)
			}
			f, err := os.CreateTemp(dir, ".arbor-check-*")
			if err != nil {
				return fmt.Errorf("not writable: %w", err)
			}
			name := f.Name()
			f.Close()
			return os.Remove(name)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return err
		}
		dir = parent
	}
}

func checkModel(ctx context.Context, model llm.Completer) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, modelCheckTimeout)
	defer cancel()

	raw, err := model.Complete(ctx, prompt.PlanningRequest("Check that the planner works", []string{"Root"}, 2))
	if err != nil {
		return 0, err
	}
	n := len(planparser.ExtractCandidates(raw, 2))
	if n == 0 {
		return 0, fmt.Errorf("no numbered candidates in response %q", truncate(raw, 60))
	}
	return n, nil
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
