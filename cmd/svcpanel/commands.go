package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/modoterra/svcpanel/pkg/core"
	"github.com/modoterra/svcpanel/pkg/factory"
	"github.com/modoterra/svcpanel/pkg/settings"
	"github.com/modoterra/svcpanel/pkg/watch"
)

// --- Status ---

var (
	statusJSON    bool
	statusSection string
	statusWatch   time.Duration
)

// sectionStatus is one section's listing as printed by `status`.
type sectionStatus struct {
	Section core.Section `json:"section"`
	Items   []itemStatus `json:"items,omitempty"`
	Error   string       `json:"error,omitempty"`
}

type itemStatus struct {
	core.Item
	Label   string            `json:"label"`
	Actions []core.ActionType `json:"actions,omitempty"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "List the items of every active section",
	RunE: func(cmd *cobra.Command, _ []string) error {
		e, err := setup()
		if err != nil {
			return err
		}
		defer e.closer.Close()

		if statusWatch > 0 {
			return runWatch(cmd, e, statusWatch)
		}

		sections := e.factory.ActiveSections()
		if statusSection != "" {
			section, err := core.ParseSection(statusSection)
			if err != nil {
				return err
			}
			sections = []core.Section{section}
		}

		statuses := collectStatus(cmd.Context(), e.factory, sections)
		if statusJSON {
			return writeStatusJSON(cmd.OutOrStdout(), statuses)
		}
		writeStatusTable(cmd.OutOrStdout(), statuses)
		return nil
	},
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "output as JSON")
	statusCmd.Flags().StringVar(&statusSection, "section", "", "only list this section")
	statusCmd.Flags().DurationVar(&statusWatch, "watch", 0, "keep polling at this interval and print changes")
}

func runWatch(cmd *cobra.Command, e *env, interval time.Duration) error {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	enc := json.NewEncoder(out)
	loop := watch.NewPollLoop(e.factory, interval, e.logger.With("component", "watch"))
	loop.Run(ctx, func(d watch.Delta) {
		if statusJSON {
			if err := enc.Encode(d); err != nil {
				e.logger.Warn("encode delta", "err", err)
			}
			return
		}
		writeDelta(out, d)
	})
	return nil
}

func writeDelta(w io.Writer, d watch.Delta) {
	for _, a := range d.Added {
		fmt.Fprintf(w, "+ %-8s %-9s %s\n", a.Section, stateOf(a.Item), factory.Label(a.Section, a.Item))
	}
	for _, u := range d.Updated {
		fmt.Fprintf(w, "~ %-8s %-9s %s\n", u.Section, stateOf(u.Item), factory.Label(u.Section, u.Item))
	}
	for _, r := range d.Removed {
		fmt.Fprintf(w, "- %-8s %-9s %s\n", r.Section, "gone", r.ID)
	}
}

func collectStatus(ctx context.Context, f *factory.Factory, sections []core.Section) []sectionStatus {
	if ctx == nil {
		ctx = context.Background()
	}
	var out []sectionStatus
	for _, section := range sections {
		st := sectionStatus{Section: section}
		items, err := f.Items(section)(ctx)
		if err != nil {
			st.Error = err.Error()
			out = append(out, st)
			continue
		}
		for _, item := range items {
			var actions []core.ActionType
			for _, t := range factory.ActionTypesFor(item) {
				if f.Action(section, t) != nil {
					actions = append(actions, t)
				}
			}
			st.Items = append(st.Items, itemStatus{Item: item, Label: factory.Label(section, item), Actions: actions})
		}
		out = append(out, st)
	}
	return out
}

func writeStatusJSON(w io.Writer, statuses []sectionStatus) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if statuses == nil {
		statuses = []sectionStatus{}
	}
	return enc.Encode(statuses)
}

func writeStatusTable(w io.Writer, statuses []sectionStatus) {
	if len(statuses) == 0 {
		fmt.Fprintln(w, "no active sections")
		return
	}
	table := uitable.New()
	table.MaxColWidth = 60
	table.AddRow("SECTION", "LABEL", "STATE", "ACTIONS", "ID")
	for _, st := range statuses {
		if st.Error != "" {
			table.AddRow(st.Section, st.Error, "-", "-", "-")
			continue
		}
		for _, it := range st.Items {
			table.AddRow(st.Section, it.Label, stateOf(it.Item), joinActions(it.Actions), it.ID)
		}
	}
	fmt.Fprintln(w, table)
}

func stateOf(item core.Item) string {
	switch {
	case item.IsRunning:
		return "running"
	case item.IsActive:
		return "active"
	case item.IsEnabled:
		return "stopped"
	default:
		return "disabled"
	}
}

func joinActions(actions []core.ActionType) string {
	if len(actions) == 0 {
		return "-"
	}
	s := make([]string, len(actions))
	for i, a := range actions {
		s[i] = string(a)
	}
	return strings.Join(s, ",")
}

// --- Actions ---

var actionVerbs = []string{"start", "stop", "restart", "enable", "disable", "remove"}

func newActionCmd(verb string) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " <section> <id>",
		Short: strings.ToUpper(verb[:1]) + verb[1:] + " an item",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			section, err := core.ParseSection(args[0])
			if err != nil {
				return err
			}
			t, err := core.ParseActionType(verb)
			if err != nil {
				return err
			}

			e, err := setup()
			if err != nil {
				return err
			}
			defer e.closer.Close()

			return runAction(cmd, e.factory, section, t, verb, args[1])
		},
	}
}

func runAction(cmd *cobra.Command, f *factory.Factory, section core.Section, t core.ActionType, verb, id string) error {
	fn := f.Action(section, t)
	if fn == nil {
		return fmt.Errorf("%s does not support %s", factory.SectionTitle(section), verb)
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := fn(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s → %s %s ✓\n", verb, section, id)
	return nil
}

// --- Settings ---

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Read and change preferences",
}

var settingsPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the settings file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		path := settingsPath
		if path == "" {
			p, err := settings.DefaultPath()
			if err != nil {
				return err
			}
			path = p
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

var settingsGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print one or all preferences",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup()
		if err != nil {
			return err
		}
		defer e.closer.Close()

		keys := settings.Keys()
		if len(args) == 1 {
			keys = args[:1]
		}
		out := cmd.OutOrStdout()
		for _, k := range keys {
			v, err := e.settings.Get(k)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				fmt.Fprintln(out, v)
			} else {
				fmt.Fprintf(out, "%s: %s\n", k, v)
			}
		}
		return nil
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a preference",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup()
		if err != nil {
			return err
		}
		defer e.closer.Close()

		if err := e.settings.Set(args[0], args[1]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", args[0], args[1])
		return nil
	},
}

var settingsValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the settings file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		e, err := setup()
		if err != nil {
			return err
		}
		defer e.closer.Close()

		errs := e.settings.Validate()
		if len(errs) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: valid\n", e.settings.Path())
			return nil
		}
		w := cmd.ErrOrStderr()
		fmt.Fprintf(w, "%s: %d error(s)\n", e.settings.Path(), len(errs))
		for _, err := range errs {
			fmt.Fprintf(w, "  • %s\n", err)
		}
		return fmt.Errorf("invalid settings")
	},
}

func init() {
	settingsCmd.AddCommand(settingsPathCmd)
	settingsCmd.AddCommand(settingsGetCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsValidateCmd)
}
