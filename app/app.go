// Package app runs the interactive planning loop.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/huh"
	"github.com/kastheco/arbor/config"
	"github.com/kastheco/arbor/config/auditlog"
	"github.com/kastheco/arbor/config/planstate"
	"github.com/kastheco/arbor/config/planstore"
	"github.com/kastheco/arbor/internal/llm"
	"github.com/kastheco/arbor/internal/prompt"
	"github.com/kastheco/arbor/internal/sentry"
	"github.com/kastheco/arbor/log"
	"github.com/kastheco/arbor/session"
	"github.com/kastheco/arbor/ui"
	"golang.org/x/term"
)

// ErrNotTerminal is returned when interactive mode is started without a TTY.
var ErrNotTerminal = errors.New("interactive mode needs a terminal (try `arbor generate`)")

// RequireTerminal fails unless f is a terminal.
func RequireTerminal(f *os.File) error {
	if !term.IsTerminal(int(f.Fd())) {
		return ErrNotTerminal
	}
	return nil
}

// TerminalWidth returns the width of f, or fallback when it is not a terminal.
func TerminalWidth(f *os.File, fallback int) int {
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil || w <= 0 {
		return fallback
	}
	return w
}

// Options wires the loop to its collaborators.
type Options struct {
	Config   *config.Config
	Model    llm.Completer
	Prompter Prompter
	// Store receives the session on every select and on exit. May be nil.
	Store planstore.Store
	Audit auditlog.Logger
	Out   io.Writer
	// ExportPath is where Export writes the snapshot. Defaults to
	// .plan_info/aplan.json in the working directory.
	ExportPath string
	// CopyToClipboard receives the markdown export. Defaults to the system clipboard.
	CopyToClipboard func(string) error
}

// App is one interactive planning run.
type App struct {
	opts    Options
	session *session.Session
}

// New builds the session for goal from opts.
func New(goal string, opts Options) (*App, error) {
	if opts.Config == nil {
		opts.Config = config.DefaultConfig()
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Audit == nil {
		opts.Audit = auditlog.NopLogger()
	}
	if opts.ExportPath == "" {
		opts.ExportPath = opts.Config.ExportPath
	}
	if opts.ExportPath == "" {
		opts.ExportPath = planstate.DefaultPath(".")
	}
	if opts.CopyToClipboard == nil {
		opts.CopyToClipboard = clipboard.WriteAll
	}

	formatter, err := prompt.NewFormatter(opts.Config.ChatTemplate)
	if err != nil {
		return nil, err
	}
	s := session.New(goal, opts.Model,
		session.WithFormatter(formatter),
		session.WithSystemPrompt(opts.Config.SystemPromptOrDefault()),
		session.WithMaxAttempts(opts.Config.MaxAttempts),
		session.WithAuditLogger(opts.Audit),
	)
	sentry.SetContext(opts.Config.Backend, opts.Config.Model, s.ID())
	return &App{opts: opts, session: s}, nil
}

// Session exposes the running session.
func (a *App) Session() *session.Session { return a.session }

// Run asks for a goal when goal is empty, then runs the loop until the user
// quits. The session is returned even when the loop ends with an error.
func Run(ctx context.Context, goal string, opts Options) (*session.Session, error) {
	if goal == "" {
		var err error
		if goal, err = opts.Prompter.Goal(); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil, nil
			}
			return nil, err
		}
	}
	a, err := New(goal, opts)
	if err != nil {
		return nil, err
	}
	return a.session, a.Loop(ctx)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.opts.Out, format, args...)
}

// generate asks for a round of candidates and attaches them. Model failures
// are reported and the loop carries on.
func (a *App) generate(ctx context.Context) {
	want := a.opts.Config.Candidates
	added, err := a.session.GeneratePlans(ctx, want)
	if err != nil {
		log.ErrorLog.Printf("generate plans: %v", err)
		a.printf("%s\n", ui.Error(fmt.Sprintf("could not generate plans: %v", err)))
		if len(added) > 0 {
			a.printf("%s\n", ui.Warning(fmt.Sprintf("kept %d plans from earlier rounds", len(added))))
		}
		return
	}
	if len(added) < want {
		a.printf("%s\n", ui.Warning(fmt.Sprintf("the model returned %d of %d plans", len(added), want)))
	}
}

func (a *App) render() {
	a.printf("\n%s %s\n", ui.Header("Goal:"), a.session.Goal())
	a.printf("%s %s\n\n", ui.Header("Path:"), ui.RenderPath(a.session.CurrentPath()))
	children := a.session.CurrentChildren()
	if len(children) == 0 {
		a.printf("%s\n", ui.Muted("no plans at this step yet"))
		return
	}
	a.printf("%s\n", ui.RenderColumns(children, a.opts.Config.Columns, a.opts.Config.ColumnWidth))
}

func (a *App) save() {
	if a.opts.Store == nil {
		return
	}
	if err := a.session.SaveTo(a.opts.Store); err != nil {
		log.WarningLog.Printf("autosave: %v", err)
		a.printf("%s\n", ui.Warning(fmt.Sprintf("could not save session: %v", err)))
	}
}

// Loop generates the first round of plans and then handles menu actions
// until the user quits or ctx is cancelled.
func (a *App) Loop(ctx context.Context) error {
	defer a.save()

	a.generate(ctx)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		a.render()

		children := a.session.CurrentChildren()
		action, err := a.opts.Prompter.Action(len(children) > 0)
		if err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil
			}
			return err
		}

		done, err := a.handle(ctx, action)
		if err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				continue
			}
			return err
		}
		if done {
			return nil
		}
	}
}

func (a *App) handle(ctx context.Context, action Action) (bool, error) {
	children := a.session.CurrentChildren()
	switch action {
	case ActionSelect:
		index, err := a.opts.Prompter.PlanIndex("Select a plan", children)
		if err != nil {
			return false, err
		}
		if _, err := a.session.SelectPlan(index); err != nil {
			a.printf("%s\n", ui.Error(err.Error()))
			return false, nil
		}
		a.generate(ctx)
		a.save()

	case ActionEdit:
		index, err := a.opts.Prompter.PlanIndex("Edit which plan?", children)
		if err != nil {
			return false, err
		}
		if index < 0 || index >= len(children) {
			a.printf("%s\n", ui.Error(fmt.Sprintf("no plan %d", index)))
			return false, nil
		}
		content, err := a.opts.Prompter.Text("New content", children[index].Content)
		if err != nil {
			return false, err
		}
		if err := a.session.EditPlan(index, content); err != nil {
			a.printf("%s\n", ui.Error(err.Error()))
		}

	case ActionGenerate:
		a.generate(ctx)

	case ActionAdd:
		plans, err := a.opts.Prompter.Plans()
		if err != nil {
			return false, err
		}
		a.session.AddPlans(plans)

	case ActionExport:
		a.export()

	case ActionQuit:
		return true, nil

	default:
		return false, fmt.Errorf("unknown action %q", action)
	}
	return false, nil
}

// export writes the snapshot file, stores the session and copies a markdown
// rendering to the clipboard. Only the file write is reported as a failure.
func (a *App) export() {
	if err := a.session.SaveFile(a.opts.ExportPath); err != nil {
		log.ErrorLog.Printf("export: %v", err)
		a.printf("%s\n", ui.Error(fmt.Sprintf("export failed: %v", err)))
		return
	}
	a.printf("Exported to %s\n", a.opts.ExportPath)

	a.save()

	md := ui.SnapshotMarkdown(a.session.ExportSnapshot())
	if err := a.opts.CopyToClipboard(md); err != nil {
		log.WarningLog.Printf("clipboard: %v", err)
		return
	}
	a.printf("%s\n", ui.Muted("copied markdown to clipboard"))
}
