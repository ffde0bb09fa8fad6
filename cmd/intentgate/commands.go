package main

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/zen-systems/intentgate/pkg/config"
	"github.com/zen-systems/intentgate/pkg/dispatch"
	"github.com/zen-systems/intentgate/pkg/format"
	"github.com/zen-systems/intentgate/pkg/intent"
	"github.com/zen-systems/intentgate/pkg/metalogic"
	"github.com/zen-systems/intentgate/pkg/orchestrator"
	"github.com/zen-systems/intentgate/pkg/router"
	"github.com/zen-systems/intentgate/pkg/tools"
	"github.com/zen-systems/intentgate/pkg/triage"
)

var formatter = format.NewFormatter()

func newEngine(cfg *config.Config) *router.Engine {
	return router.NewEngine(cfg.RoutingConfig, router.WithLogger(logger))
}

func requestContext(dir, projectType string) *intent.Context {
	if dir == "" && projectType == "" {
		return nil
	}
	return &intent.Context{CurrentDirectory: dir, ProjectType: projectType}
}

func printJSON(v any) error {
	out, err := formatter.Format(v, format.JSON, nil)
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}

func decideCmd() *cobra.Command {
	var dir, projectType string

	cmd := &cobra.Command{
		Use:   "decide [request]",
		Short: "Classify a request and print the routing decision",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			d, err := newEngine(cfg).Decide(strings.Join(args, " "), requestContext(dir, projectType))
			if err != nil {
				return err
			}
			return printJSON(d)
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "current directory to report as request context")
	cmd.Flags().StringVar(&projectType, "project-type", "", "project type to report as request context")
	return cmd
}

func planCmd() *cobra.Command {
	var asYAML, useMock bool

	cmd := &cobra.Command{
		Use:   "plan [request]",
		Short: "Print the orchestration plan for a request",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			input := strings.Join(args, " ")
			d, err := newEngine(cfg).Decide(input, nil)
			if err != nil {
				return err
			}
			models := newModelRouter(cfg, useMock)
			plan := orchestrator.Build(d, models.Route(input, models.Available()))

			if asYAML {
				out, err := yaml.Marshal(plan)
				if err != nil {
					return err
				}
				fmt.Print(string(out))
				return nil
			}
			return printJSON(plan)
		},
	}

	cmd.Flags().BoolVar(&asYAML, "yaml", false, "print the plan as YAML, loadable by run")
	cmd.Flags().BoolVar(&useMock, "mock", false, "plan for the mock adapter instead of the configured providers")
	return cmd
}

func runCmd() *cobra.Command {
	var useMock bool

	cmd := &cobra.Command{
		Use:   "run [plan.yaml]",
		Short: "Execute a saved plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			plan, err := orchestrator.LoadPlan(args[0])
			if err != nil {
				return fmt.Errorf("failed to load plan: %w", err)
			}

			runner, err := newRunner(cmd.Context(), cfg, useMock)
			if err != nil {
				return err
			}

			res, err := runner.Run(cmd.Context(), plan)
			if err != nil {
				rec := triage.NewHandler(triage.WithLogger(logger)).Handle(err, dispatch.ComponentPipeline)
				fmt.Fprint(os.Stderr, format.FormatError(format.ErrorView{
					Severity:    string(rec.Severity),
					Message:     rec.Message,
					Location:    rec.Component,
					Suggestions: rec.Recovery.Strategy.Steps,
				}))
				return err
			}

			fmt.Fprintf(os.Stderr, "Run %s completed (%d tasks)\n", res.RunID, len(res.Order))
			fmt.Println(res.Text())
			return nil
		},
	}

	cmd.Flags().BoolVar(&useMock, "mock", false, "serve every model with the mock adapter")
	return cmd
}

func askCmd() *cobra.Command {
	var useMock, render, dryRun bool
	var dir, projectType string

	cmd := &cobra.Command{
		Use:   "ask [request]",
		Short: "Route a request and execute it",
		Long: `Classifies the request, builds a single- or multi-agent plan and runs
it against the configured providers. Failures are triaged; a recoverable
failure of a multi-agent plan is retried once as a single agent.

Use --mock to run without provider credentials, --dry-run to stop after
planning, and --render to render the markdown output in the terminal.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			opts := []dispatch.Option{
				dispatch.WithModelRouter(newModelRouter(cfg, useMock)),
				dispatch.WithHandler(triage.NewHandler(
					triage.WithLogger(logger),
					triage.WithHistoryLimit(cfg.RoutingConfig.HistoryLimit),
				)),
				dispatch.WithRecorder(metalogic.NewRecorder()),
				dispatch.WithLogger(logger),
			}
			if !dryRun {
				runner, err := newRunner(cmd.Context(), cfg, useMock)
				if err != nil {
					return err
				}
				opts = append(opts, dispatch.WithExecutor(runner))
			}

			d := dispatch.New(newEngine(cfg), opts...)
			out, err := d.Handle(cmd.Context(), strings.Join(args, " "), requestContext(dir, projectType))
			if out != nil && out.Plan != nil {
				fmt.Fprintf(os.Stderr, "Plan: %s on %s\n", out.Plan.Type, out.Plan.Model)
			}
			if out != nil {
				if printErr := printOutput(out.Output, render); printErr != nil {
					return printErr
				}
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&useMock, "mock", false, "serve every model with the mock adapter")
	cmd.Flags().BoolVar(&render, "render", false, "render markdown output for the terminal")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the plan without executing it")
	cmd.Flags().StringVar(&dir, "dir", "", "current directory to report as request context")
	cmd.Flags().StringVar(&projectType, "project-type", "", "project type to report as request context")
	return cmd
}

func printOutput(text string, render bool) error {
	if !render {
		fmt.Println(text)
		return nil
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}
	rendered, err := r.Render(text)
	if err != nil {
		return fmt.Errorf("failed to render output: %w", err)
	}
	fmt.Print(rendered)
	return nil
}

func toolsCmd() *cobra.Command {
	var taskType string

	cmd := &cobra.Command{
		Use:   "tools [category]",
		Short: "List tool categories, tool sets, or the tools for a task type",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog := tools.DefaultCatalog()

			if taskType != "" {
				engine := router.NewEngine(nil, router.WithProvider(catalog))
				rec, handles, err := engine.Recommend(taskType)
				if err != nil {
					return fmt.Errorf("%w (known: %s)", err, strings.Join(engine.TaskTypes(), ", "))
				}
				fmt.Printf("Primary: %s\nSecondary: %s\nConditions: %s\nTool set: %s\nTools: %s\n",
					rec.Primary, formatList(rec.Secondary), rec.Conditions, rec.ToolSet, formatList(tools.Names(handles)))
				return nil
			}

			if len(args) == 1 {
				handles := catalog.Category(args[0])
				if len(handles) == 0 {
					return fmt.Errorf("unknown category %q", args[0])
				}
				rows := make([]map[string]any, len(handles))
				for i, h := range handles {
					rows[i] = map[string]any{"tool": h.Name, "category": h.Category}
				}
				return printTable(format.Records{Columns: []string{"tool", "category"}, Rows: rows}, len(rows))
			}

			var rows []map[string]any
			for _, c := range catalog.Categories() {
				rows = append(rows, map[string]any{"id": c.ID, "name": c.Name, "tools": len(c.Tools), "kind": "category"})
			}
			for _, s := range catalog.ToolSets() {
				rows = append(rows, map[string]any{"id": s.ID, "name": s.Name, "tools": len(s.Tools), "kind": "tool set"})
			}
			return printTable(format.Records{Columns: []string{"kind", "id", "name", "tools"}, Rows: rows}, len(rows))
		},
	}

	cmd.Flags().StringVar(&taskType, "task", "", "show the recommendation for a task type")
	return cmd
}

func printTable(rec format.Records, rows int) error {
	out, err := format.NewFormatter(format.WithMaxRows(rows)).Format(rec, format.Table, nil)
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}

func triageCmd() *cobra.Command {
	var kind, component string

	cmd := &cobra.Command{
		Use:   "triage [message]",
		Short: "Assess the severity and recovery strategy of a failure",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h := triage.NewHandler(triage.WithLogger(logger))
			rec := h.HandleFailure(triage.Failure{
				Kind:      kind,
				Message:   strings.Join(args, " "),
				Component: component,
			})
			if err := printJSON(rec); err != nil {
				return err
			}
			fmt.Println()
			fmt.Print(format.FormatError(format.ErrorView{
				Severity:    string(rec.Severity),
				Message:     rec.Message,
				Location:    rec.Component,
				Suggestions: rec.Recovery.Strategy.Steps,
			}))
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "RuntimeError", "failure kind, e.g. KeyError or OSError")
	cmd.Flags().StringVar(&component, "component", "", "component that raised the failure")
	return cmd
}

func prioritizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prioritize [tasks.yaml]",
		Short: "Order a list of tasks by priority and annotate their execution plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var specs []metalogic.TaskSpec
			if err := yaml.Unmarshal(data, &specs); err != nil {
				return fmt.Errorf("failed to parse tasks: %w", err)
			}
			if len(specs) == 0 {
				return errors.New("no tasks to prioritize")
			}

			planned := metalogic.NewRecorder().Prioritize(specs)
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tPRIORITY\tPARALLEL\tTIME\tRISK")
			for _, p := range planned {
				fmt.Fprintf(w, "%s\t%.2f\t%t\t%s\t%s\n", p.ID, p.Priority, p.CanParallel, p.EstimatedTime, p.RiskLevel)
			}
			return w.Flush()
		},
	}
}

func modelsCmd() *cobra.Command {
	var resolveFlag bool
	var validateFlag bool

	cmd := &cobra.Command{
		Use:   "models",
		Short: "List providers, models, and aliases",
		Long: `Lists providers and their models.

Use --resolve to show aliases and what they resolve to.
Use --validate to check the routing config's model preferences.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			if resolveFlag {
				return showAliases()
			}
			if validateFlag {
				return validateAliases(cfg)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PROVIDER\tMODELS\tSTATUS")
			for _, provider := range aliases.ProviderNames() {
				status := "no key"
				if cfg.HasAdapter(provider) {
					status = "ready"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", provider, formatList(aliases.Providers[provider]), status)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&resolveFlag, "resolve", false, "show aliases and what they resolve to")
	cmd.Flags().BoolVar(&validateFlag, "validate", false, "check that configured models are known")
	return cmd
}

func showAliases() error {
	names := make([]string, 0, len(aliases.Aliases))
	for name := range aliases.Aliases {
		names = append(names, name)
	}
	sort.Strings(names)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ALIAS\tMODEL\tPROVIDER")
	for _, name := range names {
		model := aliases.Aliases[name]
		fmt.Fprintf(w, "%s\t%s\t%s\n", name, model, aliases.ProviderFor(model))
	}
	return w.Flush()
}

func validateAliases(cfg *config.Config) error {
	errs := aliases.ValidateRoutingConfig(cfg.RoutingConfig)
	if len(errs) == 0 {
		fmt.Println("All configured models resolve to known providers.")
		return nil
	}
	for _, err := range errs {
		fmt.Fprintf(os.Stderr, "  %v\n", err)
	}
	return fmt.Errorf("%d model configuration error(s)", len(errs))
}

func formatList(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}

func firstModelOfFamily(models []string, family string) string {
	family = strings.ToLower(family)
	for _, m := range models {
		if strings.Contains(strings.ToLower(m), family) {
			return m
		}
	}
	return ""
}
