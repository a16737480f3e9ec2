package features

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/compatguard/cli/pkg/config"
	"github.com/compatguard/cli/pkg/features"
	"github.com/compatguard/cli/pkg/helpers"
	"github.com/compatguard/cli/pkg/linter"
	"github.com/compatguard/cli/pkg/resolver"
)

type featuresOptions struct {
	json   bool
	stdout io.Writer
}

func NewCmdFeatures() *cobra.Command {
	var opts featuresOptions

	cmd := &cobra.Command{
		Use:   "features",
		Short: "Inspect the feature registry",
	}
	cmd.PersistentFlags().BoolVar(&opts.json, "json", false, "Print JSON")

	cmd.AddCommand(newCmdList(&opts))
	cmd.AddCommand(newCmdSearch(&opts))
	cmd.AddCommand(newCmdShow(&opts))
	cmd.AddCommand(newCmdStatus(&opts))
	cmd.AddCommand(newCmdStats(&opts))
	return cmd
}

func newCmdList(opts *featuresOptions) *cobra.Command {
	var status, category string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered features",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd.Context(), withStdout(*opts, cmd), status, category)
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "Only features with this status (widely, newly, limited, notBaseline)")
	cmd.Flags().StringVar(&category, "category", "", "Only features in this category (css, javascript, html, webApi)")
	return cmd
}

func newCmdSearch(opts *featuresOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search features by id or name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd.Context(), withStdout(*opts, cmd), args[0])
		},
	}
}

func newCmdShow(opts *featuresOptions) *cobra.Command {
	var browsers map[string]string
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one feature",
		Long: `Show one feature. With --source webstatus, features outside the loaded
set are fetched from webstatus.dev.`,
		Example: "  compatguard features show dialog --browser safari=15.3 --browser firefox=98",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd.Context(), withStdout(*opts, cmd), args[0], browsers)
		},
	}
	cmd.Flags().StringToStringVar(&browsers, "browser", nil, "Check support in a browser version (name=version)")
	return cmd
}

func newCmdStatus(opts *featuresOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status <identifier>...",
		Short: "Resolve the Baseline status of identifiers",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd.Context(), withStdout(*opts, cmd), args)
		},
	}
}

func newCmdStats(opts *featuresOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show registry and resolver statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(cmd.Context(), withStdout(*opts, cmd))
		},
	}
}

func withStdout(opts featuresOptions, cmd *cobra.Command) featuresOptions {
	opts.stdout = cmd.OutOrStdout()
	return opts
}

func (o featuresOptions) out() io.Writer {
	if o.stdout == nil {
		return os.Stdout
	}
	return o.stdout
}

func load(ctx context.Context) (*linter.Linter, error) {
	ruleCtx, err := config.RuleContext()
	if err != nil {
		return nil, err
	}
	l, err := helpers.NewLinter(ruleCtx)
	if err != nil {
		return nil, err
	}
	if err := l.Initialize(ctx); err != nil {
		return nil, err
	}
	return l, nil
}

func runList(ctx context.Context, opts featuresOptions, status, category string) error {
	l, err := load(ctx)
	if err != nil {
		return err
	}

	records := l.Registry().All()
	if status != "" {
		s, err := features.ParseStatus(status)
		if err != nil {
			return err
		}
		records = l.Registry().ByStatus(s)
	}
	if category != "" {
		filtered := records[:0]
		for _, r := range records {
			if strings.EqualFold(string(r.Category), category) {
				filtered = append(filtered, r)
			}
		}
		records = filtered
	}
	return printRecords(opts, records)
}

func runSearch(ctx context.Context, opts featuresOptions, query string) error {
	l, err := load(ctx)
	if err != nil {
		return err
	}
	return printRecords(opts, l.Registry().Search(query))
}

type showResult struct {
	features.Record
	SupportedIn map[string]bool `json:"supportedIn,omitempty"`
}

// lookup finds id in the registry, then asks the source directly when it
// can fetch single features.
func lookup(ctx context.Context, l *linter.Linter, id string) (features.Record, error) {
	if rec, ok := l.Registry().Get(id); ok {
		return rec, nil
	}
	if finder, ok := l.Source().(features.Finder); ok {
		rec, found, err := finder.Find(ctx, id)
		if err != nil {
			return features.Record{}, err
		}
		if found {
			return rec, nil
		}
	}
	return features.Record{}, fmt.Errorf("feature %q not found", id)
}

func runShow(ctx context.Context, opts featuresOptions, id string, browsers map[string]string) error {
	l, err := load(ctx)
	if err != nil {
		return err
	}
	rec, err := lookup(ctx, l, id)
	if err != nil {
		return err
	}

	res := showResult{Record: rec}
	if len(browsers) > 0 {
		res.SupportedIn = make(map[string]bool, len(browsers))
		for browser, version := range browsers {
			ok, err := rec.SupportedIn(browser, version)
			if err != nil {
				return err
			}
			res.SupportedIn[browser+" "+version] = ok
		}
	}
	if opts.json {
		return helpers.PrintJSON(opts.out(), res)
	}

	w := opts.out()
	fmt.Fprintf(w, "%s (%s)\n", rec.Name, rec.ID)
	fmt.Fprintf(w, "  status:    %s\n", rec.Status.Label())
	if y := rec.Year(); y > 0 {
		fmt.Fprintf(w, "  since:     %s\n", rec.AvailableSince.Format("2006-01-02"))
	}
	if rec.Category != "" {
		fmt.Fprintf(w, "  category:  %s\n", rec.Category)
	}
	fmt.Fprintf(w, "  risk:      %s\n", resolver.Risk(rec.Status))
	if rec.MDNURL != "" {
		fmt.Fprintf(w, "  docs:      %s\n", rec.MDNURL)
	}
	printSupport(w, "support", rec.Support)
	if len(res.SupportedIn) > 0 {
		checks := make(map[string]string, len(res.SupportedIn))
		for k, ok := range res.SupportedIn {
			checks[k] = "no"
			if ok {
				checks[k] = "yes"
			}
		}
		printSupport(w, "supported in", checks)
	}
	printList(w, "alternatives", rec.Alternatives)
	printList(w, "polyfills", rec.Polyfills)
	printList(w, "migration", rec.MigrationSteps)
	return nil
}

func printSupport(w io.Writer, title string, m map[string]string) {
	if len(m) == 0 {
		return
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fmt.Fprintf(w, "  %s:\n", title)
	for _, k := range keys {
		fmt.Fprintf(w, "    %-16s %s\n", k, m[k])
	}
}

func printList(w io.Writer, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(w, "  %s:\n", title)
	for _, item := range items {
		fmt.Fprintf(w, "    - %s\n", item)
	}
}

func runStatus(ctx context.Context, opts featuresOptions, identifiers []string) error {
	l, err := load(ctx)
	if err != nil {
		return err
	}

	results := make([]resolver.Result, 0, len(identifiers))
	for _, id := range identifiers {
		results = append(results, l.Service().GetFeatureStatus(id))
	}
	if opts.json {
		return helpers.PrintJSON(opts.out(), results)
	}

	tw := tabwriter.NewWriter(opts.out(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "IDENTIFIER\tFEATURE\tSTATUS\tMATCH\tCONFIDENCE")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.Identifier, r.FeatureName(), r.Status, r.Match, r.Confidence)
	}
	return tw.Flush()
}

func runStats(ctx context.Context, opts featuresOptions) error {
	l, err := load(ctx)
	if err != nil {
		return err
	}

	stats := struct {
		Registry features.Statistics `json:"registry"`
		Resolver resolver.Stats      `json:"resolver"`
	}{l.Registry().Statistics(), l.Stats()}
	if opts.json {
		return helpers.PrintJSON(opts.out(), stats)
	}

	w := opts.out()
	fmt.Fprintf(w, "features:   %d\n", stats.Registry.Total)
	for _, s := range []features.Status{features.Widely, features.Newly, features.Limited, features.NotBaseline} {
		fmt.Fprintf(w, "  %-12s %d\n", s, stats.Registry.ByStatus[s])
	}
	fmt.Fprintf(w, "api calls:  %d\n", stats.Resolver.APICalls)
	return nil
}

func printRecords(opts featuresOptions, records []features.Record) error {
	if opts.json {
		return helpers.PrintJSON(opts.out(), records)
	}
	tw := tabwriter.NewWriter(opts.out(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSTATUS\tSINCE\tCATEGORY")
	for _, r := range records {
		since := "-"
		if y := r.Year(); y > 0 {
			since = fmt.Sprint(y)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.ID, r.Name, r.Status, since, r.Category)
	}
	return tw.Flush()
}
