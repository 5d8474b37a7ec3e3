package main

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/albibenni/focus/internal/focus/common/log"
	"github.com/albibenni/focus/internal/focus/common/utils"
	"github.com/albibenni/focus/internal/focus/config"
	"github.com/albibenni/focus/internal/focus/domain"
	"github.com/albibenni/focus/internal/focus/repos/catalog"
	"github.com/albibenni/focus/internal/focus/services/session"
)

// cli carries what every command needs. Configuration and the application
// graph are built only by commands that touch the system, so help and list
// never read the host file.
type cli struct {
	stdout     io.Writer
	stderr     io.Writer
	loadConfig func() (*config.AppConfig, error)
	catalog    *catalog.Catalog
}

func loadConfig() (*config.AppConfig, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("%w: configuration: %v", domain.ErrInput, err)
	}
	if err := log.Configure(cfg.Env, cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("%w: logging configuration: %v", domain.ErrInput, err)
	}
	return cfg, nil
}

func (c *cli) newRootCommand() (*cobra.Command, error) {
	cat, err := catalog.Default()
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}
	c.catalog = cat

	root := &cobra.Command{
		Use:           appName + " [sites|presets...] <minutes>",
		Short:         "Block distracting websites for a while",
		Long:          usageText(cat),
		Version:       version,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          c.runSession,
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return domain.NewInputError("%v", err)
	})
	root.SetOut(c.stdout)
	root.SetErr(c.stderr)
	root.AddCommand(
		c.newListCommand(),
		c.newStatusCommand(),
		c.newRestoreCommand(),
	)
	return root, nil
}

// usageText lists the site tokens and preset names the catalog accepts.
func usageText(cat *catalog.Catalog) string {
	var b strings.Builder
	b.WriteString("Blocks the given sites and presets in the host file, waits <minutes>,\n")
	b.WriteString("then restores the host file and flushes the resolver cache.\n\n")

	var sites []string
	for _, s := range cat.Sites() {
		sites = append(sites, s.ID)
	}
	sort.Strings(sites)
	fmt.Fprintf(&b, "Sites:   %s\n", strings.Join(sites, ", "))

	var presets []string
	for _, p := range cat.Presets() {
		presets = append(presets, p.Name)
	}
	sort.Strings(presets)
	fmt.Fprintf(&b, "Presets: %s\n\n", strings.Join(presets, ", "))

	fmt.Fprintf(&b, "Example: %s youtube social 25\n", appName)
	return b.String()
}

// isHelp reports whether the first token asks for help, in any case.
// Everything after it is ignored.
func isHelp(args []string) bool {
	return len(args) >= 1 && utils.CanonicalKey(args[0]) == "help"
}

// runSession parses the timer before anything touches the system, then runs
// one session.
func (c *cli) runSession(cmd *cobra.Command, args []string) error {
	if isHelp(args) {
		return cmd.Help()
	}
	if len(args) == 0 {
		return domain.NewInputError("missing timer in minutes")
	}

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	tokens, timer := args[:len(args)-1], args[len(args)-1]
	minutes, err := domain.ParseMinutes(timer, cfg.MinMinutes)
	if err != nil {
		return err
	}

	app := buildApplication(cfg, c.catalog)
	defer app.Close()

	report, err := app.scheduler.Run(cmd.Context(), session.Request{
		Tokens:   tokens,
		Duration: domain.HoldDuration(minutes),
	})
	if report.FlushErr != nil {
		fmt.Fprintf(c.stderr, "Warning: resolver cache not flushed: %v\n", report.FlushErr)
	}
	if err != nil {
		return err
	}

	if report.BlockSet.IsEmpty() {
		fmt.Fprintln(c.stdout, "No known sites given; the host file was left unchanged.")
		return nil
	}
	fmt.Fprintf(c.stdout, "Blocked %d host(s) for %s: %s\n",
		report.BlockSet.Len(), report.Duration, strings.Join(report.BlockSet.Hosts(), ", "))
	fmt.Fprintf(c.stdout, "Host file restored at %s.\n", report.EndedAt.Format(time.Kitchen))
	return nil
}

func (c *cli) newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List known sites and presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(c.stdout, "Sites:")
			for _, s := range c.catalog.Sites() {
				fmt.Fprintf(c.stdout, "  %-12s %s\n", s.ID, s.Host)
			}
			fmt.Fprintln(c.stdout, "\nPresets:")
			for _, p := range c.catalog.Presets() {
				fmt.Fprintf(c.stdout, "  %-12s %s\n", p.Name, strings.Join(p.Sites, ", "))
			}
			return nil
		},
	}
}

func (c *cli) newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show blocked hosts, unfinished sessions and other running instances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			app := buildApplication(cfg, c.catalog)
			defer app.Close()

			st, err := app.Status(cmd.Context())
			if err != nil {
				return err
			}
			printStatus(c.stdout, st)
			return nil
		},
	}
}

func printStatus(w io.Writer, st Status) {
	fmt.Fprintf(w, "Host file: %s\n", st.HostsPath)

	if st.Pending != nil {
		fmt.Fprintf(w, "Unfinished session: #%d started %s, %d host(s), hold until %s\n",
			st.Pending.ID, st.Pending.StartedAt.Format(time.RFC3339), len(st.Pending.Hosts), st.Pending.HoldUntil.Format(time.RFC3339))
	} else {
		fmt.Fprintln(w, "Unfinished session: none")
	}

	if len(st.History) > 0 {
		fmt.Fprintln(w, "Recent sessions:")
		for _, r := range st.History {
			fmt.Fprintf(w, "  #%-4d %s  %-9s %s\n",
				r.ID, r.StartedAt.Format(time.RFC3339), r.Outcome, strings.Join(r.Hosts, ", "))
		}
	}

	if len(st.Blocked) == 0 {
		fmt.Fprintln(w, "Blocked hosts: none")
	} else {
		fmt.Fprintln(w, "Blocked hosts:")
		for _, e := range st.Blocked {
			mark := ""
			if e.Marked {
				mark = " (focus)"
			}
			fmt.Fprintf(w, "  line %-4d %s -> %s%s\n", e.Line, e.Host, e.Address, mark)
		}
	}

	if len(st.Others) == 0 {
		fmt.Fprintln(w, "Other focus processes: none")
	} else {
		fmt.Fprintln(w, "Other focus processes:")
		for _, p := range st.Others {
			fmt.Fprintf(w, "  pid %-7d %s\n", p.PID, p.Cmdline)
		}
	}
	for _, warning := range st.Warnings {
		fmt.Fprintf(w, "Warning: %s\n", warning)
	}
}

func (c *cli) newRestoreCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "restore",
		Short: "Put back the host file of a session that did not finish",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			app := buildApplication(cfg, c.catalog)
			defer app.Close()

			if app.journal == nil {
				fmt.Fprintln(c.stdout, "No session journal available; nothing to restore.")
				return nil
			}
			rec, err := app.scheduler.Recover(cmd.Context())
			if rec.FlushErr != nil {
				fmt.Fprintf(c.stderr, "Warning: resolver cache not flushed: %v\n", rec.FlushErr)
			}
			if err != nil {
				return err
			}
			if !rec.Found {
				fmt.Fprintln(c.stdout, "Nothing to restore.")
				return nil
			}
			fmt.Fprintf(c.stdout, "Restored %s from session #%d.\n", rec.Record.HostsPath, rec.Record.ID)
			return nil
		},
	}
}
