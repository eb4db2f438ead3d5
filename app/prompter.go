package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/kastheco/arbor/config/plantree"
	"github.com/mattn/go-runewidth"
)

// Action is one entry of the main menu.
type Action string

const (
	ActionSelect   Action = "select"
	ActionEdit     Action = "edit"
	ActionGenerate Action = "generate"
	ActionAdd      Action = "add"
	ActionExport   Action = "export"
	ActionQuit     Action = "quit"
)

// Prompter asks the user for input. The interactive loop only talks to the
// terminal through it.
type Prompter interface {
	Goal() (string, error)
	Action(hasPlans bool) (Action, error)
	PlanIndex(title string, children []plantree.Child) (int, error)
	Text(title, initial string) (string, error)
	Plans() ([]string, error)
}

const optionWidth = 72

// HuhPrompter implements Prompter with huh forms.
type HuhPrompter struct{}

func run(fields ...huh.Field) error {
	return huh.NewForm(huh.NewGroup(fields...)).WithTheme(huh.ThemeCharm()).Run()
}

func notEmpty(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("cannot be empty")
	}
	return nil
}

func (HuhPrompter) Goal() (string, error) {
	var goal string
	err := run(
		huh.NewInput().
			Title("What are you planning?").
			Placeholder("Launch a product").
			Validate(notEmpty).
			Value(&goal),
	)
	return strings.TrimSpace(goal), err
}

// menuOptions lists the actions available; select and edit need plans.
func menuOptions(hasPlans bool) []huh.Option[Action] {
	var opts []huh.Option[Action]
	if hasPlans {
		opts = append(opts,
			huh.NewOption("Select a plan", ActionSelect),
			huh.NewOption("Edit a plan", ActionEdit),
		)
	}
	return append(opts,
		huh.NewOption("Generate more plans", ActionGenerate),
		huh.NewOption("Add plans manually", ActionAdd),
		huh.NewOption("Export", ActionExport),
		huh.NewOption("Quit", ActionQuit),
	)
}

func (HuhPrompter) Action(hasPlans bool) (Action, error) {
	var action Action
	err := run(
		huh.NewSelect[Action]().
			Title("Next").
			Options(menuOptions(hasPlans)...).
			Value(&action),
	)
	return action, err
}

// planOptions labels each child "index: content", truncated to fit a line.
func planOptions(children []plantree.Child) []huh.Option[int] {
	opts := make([]huh.Option[int], len(children))
	for i, c := range children {
		label := runewidth.Truncate(fmt.Sprintf("%d: %s", c.Index, c.Content), optionWidth, "...")
		opts[i] = huh.NewOption(label, c.Index)
	}
	return opts
}

func (HuhPrompter) PlanIndex(title string, children []plantree.Child) (int, error) {
	var index int
	err := run(
		huh.NewSelect[int]().
			Title(title).
			Options(planOptions(children)...).
			Value(&index),
	)
	return index, err
}

func (HuhPrompter) Text(title, initial string) (string, error) {
	value := initial
	err := run(
		huh.NewInput().
			Title(title).
			Validate(notEmpty).
			Value(&value),
	)
	return strings.TrimSpace(value), err
}

func (HuhPrompter) Plans() ([]string, error) {
	var text string
	err := run(
		huh.NewText().
			Title("New plans").
			Description("One per line.").
			Value(&text),
	)
	if err != nil {
		return nil, err
	}
	return splitPlans(text), nil
}

// splitPlans turns one-per-line input into plans, dropping blank lines.
func splitPlans(text string) []string {
	var plans []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			plans = append(plans, line)
		}
	}
	return plans
}
