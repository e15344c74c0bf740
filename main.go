// potkit: gettext catalog extraction and machine translation for
// WordPress-style PHP projects.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/minios-linux/potkit/bundle"
	"github.com/minios-linux/potkit/catalog"
	"github.com/minios-linux/potkit/config"
	"github.com/minios-linux/potkit/extract"
	"github.com/minios-linux/potkit/langmeta"
	"github.com/minios-linux/potkit/lockfile"
	"github.com/minios-linux/potkit/pofile"
	"github.com/minios-linux/potkit/provider"
	"github.com/minios-linux/potkit/settings"
	"github.com/minios-linux/potkit/translate"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	cyan    = color.New(color.Bold, color.FgCyan)
	green   = color.New(color.FgGreen)
	yellow  = color.New(color.Bold, color.FgYellow)
	red     = color.New(color.FgRed)
	magenta = color.New(color.Bold, color.FgMagenta)
)

// ---------------------------------------------------------------------------
// Global flags
// ---------------------------------------------------------------------------

var (
	rootDir    string
	configPath string
	verbose    bool
)

// logger is replaced by the root command before any subcommand runs.
var logger = zerolog.Nop()

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "potkit",
		Short: "gettext extraction and machine translation for PHP plugins",
		Long: `potkit extracts translatable strings from WordPress-style PHP sources into
a POT template and translates it into every configured language through a
chain of machine-translation providers, writing one .po and .mo per language.

Commands:
  extract     Scan PHP sources and write the POT template
  translate   Translate the template into every configured language
  languages   Show configured languages and provider codes
  auth        Manage provider credentials

Providers (tried in order, default google,mymemory,libre):
  google      Google Translate web endpoint, no key
  mymemory    MyMemory API, optional email for a higher quota
  libre       LibreTranslate, public or self-hosted, optional API key`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger = newLogger(cmd.ErrOrStderr(), verbose)
		},
	}

	root.PersistentFlags().StringVar(&rootDir, "root", ".", "Project root directory")
	root.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default <root>/.potkit.yaml)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		newExtractCmd(),
		newTranslateCmd(),
		newLanguagesCmd(),
		newAuthCmd(),
		newVersionCmd(),
	)

	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		red.Fprintf(os.Stderr, "[ERROR] %v\n", err)
		os.Exit(1)
	}
}

// newLogger builds the console logger; colors only on a terminal.
func newLogger(w io.Writer, debug bool) zerolog.Logger {
	cw := zerolog.ConsoleWriter{Out: w, NoColor: !isTerminal(w), TimeFormat: time.TimeOnly}
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(cw).Level(level).With().Timestamp().Logger()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func loadProject() (*config.Project, error) {
	proj, err := config.Load(rootDir, configPath)
	if err != nil {
		return nil, err
	}
	for _, w := range proj.Warnings {
		logger.Warn().Msg(w)
	}
	return proj, nil
}

// ---------------------------------------------------------------------------
// version
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "potkit version %s\n", version)
			fmt.Fprintf(out, "  commit:    %s\n", commit)
			fmt.Fprintf(out, "  built:     %s\n", date)
		},
	}
}

// ---------------------------------------------------------------------------
// extract
// ---------------------------------------------------------------------------

// duplicatesShown is how many duplicated msgids the summary lists.
const duplicatesShown = 10

func newExtractCmd() *cobra.Command {
	var searchDir, output string

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Scan PHP sources and write the POT template",
		Long: `Scan every .php file under the search directory for gettext marker calls
(__, _e, _x, _n, _nx, esc_html__, ...) and write a sorted POT template.

The project name in the header comes from the first "Plugin Name:" header
found in the sources.

Examples:
  potkit extract
  potkit extract --search-dir src --output languages/my-plugin.pot`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			proj, err := loadProject()
			if err != nil {
				return err
			}
			if searchDir != "" {
				proj.File.SearchDir = searchDir
			}
			if output != "" {
				proj.File.POTFile = output
			}
			res, potPath, err := doExtract(proj, time.Now())
			if err != nil {
				return err
			}
			printExtractSummary(cmd.OutOrStdout(), res, potPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&searchDir, "search-dir", "", "Directory to scan (or POTKIT_SEARCH_DIR)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "POT file to write (or POTKIT_POT_FILE)")

	return cmd
}

// doExtract scans the project sources and writes the template.
func doExtract(proj *config.Project, now time.Time) (*extract.Result, string, error) {
	dir := proj.SearchDir()
	logger.Info().Str("dir", dir).Msg("scanning sources")

	res, err := extract.Run(dir, logger)
	if err != nil {
		return nil, "", fmt.Errorf("scanning %s: %w", dir, err)
	}
	if len(res.SourceFiles) == 0 {
		logger.Warn().Str("dir", dir).Msg("no PHP files found")
	}

	pot := res.Catalog.ToPOT(pofile.MakeHeader(res.ProjectName, now))
	potPath := proj.POTPath()
	if err := pot.WriteFile(potPath); err != nil {
		return nil, "", fmt.Errorf("writing %s: %w", potPath, err)
	}
	logger.Info().Str("pot", potPath).Int("entries", res.Catalog.Len()).Msg("template written")
	return res, potPath, nil
}

func printExtractSummary(w io.Writer, res *extract.Result, potPath string) {
	cyan.Fprintln(w, "\nExtraction summary")
	fmt.Fprintln(w, strings.Repeat("─", 60))
	fmt.Fprintf(w, "  %-18s %s\n", "Project:", res.ProjectName)
	fmt.Fprintf(w, "  %-18s %d\n", "Files scanned:", len(res.SourceFiles))
	if len(res.Skipped) > 0 {
		yellow.Fprintf(w, "  %-18s %d\n", "Files skipped:", len(res.Skipped))
	}
	fmt.Fprintf(w, "  %-18s %d\n", "Occurrences:", res.Catalog.OccurrenceCount())
	fmt.Fprintf(w, "  %-18s %d\n", "Unique entries:", res.Catalog.Len())
	if res.Unbalanced > 0 {
		yellow.Fprintf(w, "  %-18s %d\n", "Unclosed calls:", res.Unbalanced)
	}
	fmt.Fprintf(w, "  %-18s %s\n", "Template:", potPath)

	dups := res.Catalog.Duplicates()
	if len(dups) == 0 {
		fmt.Fprintln(w)
		return
	}
	magenta.Fprintf(w, "\nMost repeated strings (%d total)\n", len(dups))
	for _, line := range formatDuplicates(dups, duplicatesShown) {
		fmt.Fprintln(w, line)
	}
	fmt.Fprintln(w)
}

// duplicateColor grades a repeat count: up to 2 green, up to 5 yellow,
// otherwise red.
func duplicateColor(n int) *color.Color {
	switch {
	case n <= 2:
		return green
	case n <= 5:
		return yellow
	default:
		return red
	}
}

func formatDuplicates(dups []catalog.Duplicate, limit int) []string {
	if len(dups) > limit {
		dups = dups[:limit]
	}
	lines := make([]string, 0, len(dups))
	for _, d := range dups {
		count := duplicateColor(d.Count).Sprintf("%4d×", d.Count)
		lines = append(lines, fmt.Sprintf("  %s  %s", count, shorten(d.MsgID, 60)))
	}
	return lines
}

func shorten(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// ---------------------------------------------------------------------------
// translate
// ---------------------------------------------------------------------------

type translateArgs struct {
	providers    string
	maxRetries   int
	timeout      time.Duration
	pot          string
	output       string
	langs        string
	libreURL     string
	libreKey     string
	email        string
	zip          bool
	bundleFormat string
	extractFirst bool
	incremental  bool
	noSpinner    bool
}

func newTranslateCmd() *cobra.Command {
	var a translateArgs

	cmd := &cobra.Command{
		Use:   "translate",
		Short: "Translate the template into every configured language",
		Long: `Translate every entry of the POT template into each configured language,
trying providers in chain order with retries. Entries no provider could
translate get the source text followed by the language code.

Each language is written as <template>-<locale>.po and .mo as soon as it
completes, so an interrupted run keeps the languages already finished.

Examples:
  potkit translate
  potkit translate --providers mymemory,libre --max-retries 2
  potkit translate --lang de,pt-BR --zip
  potkit translate --extract --libre-url http://localhost:5000
  potkit translate --incremental`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranslate(cmd, a)
		},
	}

	cmd.Flags().StringVar(&a.providers, "providers", "", "Provider chain, comma-separated (default google,mymemory,libre)")
	cmd.Flags().IntVar(&a.maxRetries, "max-retries", config.DefaultMaxRetries, "Attempts per provider")
	cmd.Flags().DurationVar(&a.timeout, "timeout", 0, "Timeout of one provider call (default 12s)")
	cmd.Flags().StringVar(&a.pot, "pot", "", "POT template to translate (or POTKIT_POT_FILE)")
	cmd.Flags().StringVarP(&a.output, "output", "o", "", "Output directory (or POTKIT_OUTPUT_DIR)")
	cmd.Flags().StringVar(&a.langs, "lang", "", "Only these configured languages (comma-separated)")
	cmd.Flags().StringVar(&a.libreURL, "libre-url", "", "LibreTranslate base URL (or POTKIT_LIBRE_URL)")
	cmd.Flags().StringVar(&a.libreKey, "libre-key", "", "LibreTranslate API key (or POTKIT_LIBRE_API_KEY)")
	cmd.Flags().StringVar(&a.email, "email", "", "MyMemory account email (or POTKIT_MYMEMORY_EMAIL)")
	cmd.Flags().BoolVar(&a.zip, "zip", false, "Pack the output into a single archive")
	cmd.Flags().StringVar(&a.bundleFormat, "bundle-format", "zip", "Archive format for --zip: zip, tar.zst")
	cmd.Flags().BoolVar(&a.extractFirst, "extract", false, "Run extract before translating")
	cmd.Flags().BoolVar(&a.incremental, "incremental", false, "Reuse translations recorded in potkit.lock")
	cmd.Flags().BoolVar(&a.noSpinner, "no-spinner", false, "Disable the activity spinner")

	_ = cmd.RegisterFlagCompletionFunc("providers", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return provider.DefaultChain, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runTranslate(cmd *cobra.Command, a translateArgs) error {
	proj, err := loadProject()
	if err != nil {
		return err
	}

	f := proj.File
	if a.providers != "" {
		f.Providers = provider.ParseChain(a.providers)
	}
	if cmd.Flags().Changed("max-retries") {
		if a.maxRetries < 1 {
			return fmt.Errorf("--max-retries must be at least 1, got %d", a.maxRetries)
		}
		f.MaxRetries = a.maxRetries
	}
	if a.timeout > 0 {
		f.Timeout = a.timeout
	}
	if a.output != "" {
		f.OutputDir = a.output
	}
	if a.pot != "" {
		f.POTFile = a.pot
	}
	if a.libreURL != "" || a.libreKey != "" {
		f.UpdateSettings(provider.Libre, func(ps *config.ProviderSettings) {
			if a.libreURL != "" {
				ps.URL = a.libreURL
			}
			if a.libreKey != "" {
				ps.APIKey = a.libreKey
			}
		})
	}
	if a.email != "" {
		f.UpdateSettings(provider.MyMemory, func(ps *config.ProviderSettings) { ps.Email = a.email })
	}
	if cmd.Flags().Changed("zip") {
		f.Zip = a.zip
	}
	if cmd.Flags().Changed("incremental") {
		f.Incremental = a.incremental
	}
	format, err := bundle.ParseFormat(a.bundleFormat)
	if err != nil {
		return err
	}

	if a.extractFirst {
		if _, _, err := doExtract(proj, time.Now()); err != nil {
			return err
		}
	}

	potPath := proj.POTPath()
	if a.pot == "" && !a.extractFirst {
		potPath = proj.POTPathResolved()
	}
	if !fileExists(potPath) {
		return fmt.Errorf("template %s not found, run 'potkit extract' first or set POTKIT_POT_FILE", potPath)
	}
	pot, err := pofile.ParseFile(potPath)
	if err != nil {
		return err
	}
	cat, err := catalog.FromPO(pot)
	if err != nil {
		return fmt.Errorf("reading %s: %w", potPath, err)
	}

	targets, err := proj.Select(splitList(a.langs))
	if err != nil {
		return err
	}

	reg := proj.Registry()
	for _, c := range reg.Chain() {
		if !c.Available() {
			logger.Warn().Str("provider", c.ID).Str("reason", c.Reason).Msg("provider unavailable")
		}
	}
	if err := reg.Check(); err != nil {
		return err
	}

	log := logger.With().Str("run", uuid.NewString()[:8]).Logger()
	stderr, out := cmd.ErrOrStderr(), cmd.OutOrStdout()
	tty := isTerminal(stderr)

	chain := &translate.Chain{
		Providers:  reg.Chain(),
		Normalizer: proj.Normalizer(),
		MaxRetries: f.MaxRetries,
		Timeout:    f.Timeout,
		Logger:     log,
	}
	if tty && !a.noSpinner {
		chain.Liveness = translate.Spinner(stderr)
	}

	progress := &localeProgress{w: stderr, enabled: tty}
	orch := &translate.Orchestrator{
		Chain:      chain,
		Header:     pot.Header,
		OutputDir:  proj.OutputDir(),
		BaseName:   config.BaseName(potPath),
		Logger:     log,
		OnProgress: progress.update,
		OnLocale: func(r *translate.LocaleReport) {
			progress.finish()
			green.Fprintf(out, "Saved %s\n", r.POPath)
			green.Fprintf(out, "Saved %s\n", r.MOPath)
		},
	}
	if err := orch.Check(cat, targets); err != nil {
		return err
	}

	var lock *lockfile.LockFile
	if f.Incremental {
		if lock, err = lockfile.Load(proj.Root); err != nil {
			return err
		}
		var configured []string
		for _, t := range proj.Targets() {
			configured = append(configured, t.OutputLocale())
		}
		if removed := lock.Retain(configured); len(removed) > 0 {
			log.Info().Strs("locales", removed).Msg("dropped unconfigured locales from lock")
		}
		orch.Memory = lockfile.NewMemory(lock, proj.OutputDir(), orch.BaseName, log)
		log.Debug().Str("lock", lock.Path()).Str("state", lock.Summary()).Msg("incremental run")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cyan.Fprintf(out, "\nTranslating %d entries into %d languages\n", cat.Len(), len(targets))
	fmt.Fprintf(out, "  Input:  %s\n  Output: %s\n  Chain:  %s\n\n", potPath, proj.OutputDir(), strings.Join(reg.Available(), " → "))

	reports, err := orch.Run(ctx, cat, targets)
	progress.finish()
	order := append(append([]string(nil), f.Providers...), translate.ResolvedCached, translate.ResolvedMirror, translate.ResolvedSkip)
	printTranslateSummary(out, reports, order)
	if lock != nil {
		if serr := lock.Save(); serr != nil {
			return errors.Join(err, serr)
		}
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Warn().Int("completed", len(reports)).Int("requested", len(targets)).Msg("interrupted, finished languages were kept")
		}
		return err
	}

	if f.Zip {
		path, n, err := bundle.Write(proj.OutputDir(), format)
		if err != nil {
			return err
		}
		yellow.Fprintf(out, "Packed %d files into %s\n", n, path)
	}
	return nil
}

// localeProgress draws one bar per language on a terminal.
type localeProgress struct {
	w       io.Writer
	enabled bool
	bar     *progressbar.ProgressBar
	current string
}

func (p *localeProgress) update(t translate.Target, done, total int) {
	if !p.enabled {
		return
	}
	if p.bar == nil || p.current != t.Code {
		p.finish()
		p.current = t.Code
		p.bar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(p.w),
			progressbar.OptionSetDescription(shorten(t.Name, 16)),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(40),
			progressbar.OptionSetPredictTime(true),
		)
	}
	_ = p.bar.Set(done)
}

func (p *localeProgress) finish() {
	if p.bar == nil {
		return
	}
	_ = p.bar.Finish()
	fmt.Fprintln(p.w)
	p.bar = nil
}

// summaryRow is one line of the translation summary.
type summaryRow struct {
	Language, Locale    string
	Entries, Translated int
	Hits                string
}

func summaryRows(reports []*translate.LocaleReport, order []string) []summaryRow {
	rows := make([]summaryRow, 0, len(reports))
	for _, r := range reports {
		loc := r.Locale.OutputLocale()
		total := r.Tally.Total()
		hits := translate.Tally{}
		for k, v := range r.Tally {
			if v > 0 {
				hits[k] = v
			}
		}
		var shown []string
		for _, k := range order {
			if hits[k] > 0 {
				shown = append(shown, k)
			}
		}
		rows = append(rows, summaryRow{
			Language:   r.Locale.Name,
			Locale:     loc,
			Entries:    total,
			Translated: total - r.Tally[translate.ResolvedMirror] - r.Tally[translate.ResolvedSkip],
			Hits:       translate.FormatTally(hits, shown),
		})
	}
	return rows
}

func printTranslateSummary(w io.Writer, reports []*translate.LocaleReport, order []string) {
	if len(reports) == 0 {
		return
	}
	cyan.Fprintln(w, "\nTranslation summary")
	fmt.Fprintf(w, "%-20s  %-10s  %8s  %10s  %s\n", "Language", "Locale", "Entries", "Translated", "Provider hits")
	fmt.Fprintln(w, strings.Repeat("─", 78))
	for _, row := range summaryRows(reports, order) {
		c := green
		if row.Translated < row.Entries {
			c = yellow
		}
		c.Fprintf(w, "%-20s  %-10s  %8d  %10d  %s\n", shorten(row.Language, 20), row.Locale, row.Entries, row.Translated, row.Hits)
	}
	fmt.Fprintln(w)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// languages
// ---------------------------------------------------------------------------

func newLanguagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "languages",
		Aliases: []string{"langs"},
		Short:   "Show configured languages and provider codes",
		Long: `List every configured language with its output locale, the code sent to
each provider of the chain, and the progress of an existing translation.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			proj, err := loadProject()
			if err != nil {
				return err
			}
			printLanguages(cmd.OutOrStdout(), proj)
			return nil
		},
	}
}

func printLanguages(w io.Writer, proj *config.Project) {
	targets := proj.Targets()
	if len(targets) == 0 {
		yellow.Fprintln(w, "No languages configured. Add a languages map to .potkit.yaml or create languages.json.")
		return
	}

	chain := proj.File.Providers
	norm := proj.Normalizer()
	potPath := proj.POTPathResolved()
	base := config.BaseName(potPath)
	existing := make(map[string]bool)
	for _, loc := range config.DetectExisting(proj.OutputDir(), base) {
		existing[loc] = true
	}

	cyan.Fprintf(w, "\nLanguages (%d)\n", len(targets))
	if proj.LanguagesSource != "" {
		fmt.Fprintf(w, "  from %s\n", proj.LanguagesSource)
	}
	header := fmt.Sprintf("%-3s %-8s %-28s %-8s", "", "Code", "Name", "Locale")
	for _, id := range chain {
		header += fmt.Sprintf(" %-9s", id)
	}
	fmt.Fprintln(w, header+" Status")
	fmt.Fprintln(w, strings.Repeat("─", len(header)+12))

	for _, t := range targets {
		loc := t.OutputLocale()
		line := fmt.Sprintf("%-3s %-8s %-28s %-8s", langmeta.Resolve(t.Code).Flag, t.Code, shorten(t.Name, 28), loc)
		for _, id := range chain {
			line += fmt.Sprintf(" %-9s", norm.Normalize(t.Code, id))
		}
		fmt.Fprint(w, line+" ")

		if !existing[loc] {
			red.Fprintln(w, "missing")
			continue
		}
		poPath, _ := translate.OutputPaths(proj.OutputDir(), base, t)
		pf, err := pofile.ParseFile(poPath)
		if err != nil {
			red.Fprintln(w, "unreadable")
			continue
		}
		total, translated := pf.Stats()
		c := green
		if translated < total {
			c = yellow
		}
		c.Fprintf(w, "%d/%d\n", translated, total)
	}
	fmt.Fprintln(w)
}

// ---------------------------------------------------------------------------
// auth
// ---------------------------------------------------------------------------

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage provider credentials",
		Long: `Manage credentials stored in $XDG_DATA_HOME/potkit/auth.json.

  libre       API key and base URL of a LibreTranslate instance
  mymemory    Account email (raises the free daily quota)
  google      No credentials needed

Flags and POTKIT_LIBRE_API_KEY / POTKIT_MYMEMORY_EMAIL override stored values.

Examples:
  potkit auth set libre --key abc123 --url https://lt.example.org
  potkit auth set mymemory --email me@example.org
  potkit auth list
  potkit auth remove libre`,
	}

	cmd.AddCommand(
		newAuthSetCmd(),
		newAuthListCmd(),
		newAuthRemoveCmd(),
	)

	return cmd
}

func knownProvider(id string) error {
	if _, ok := provider.DefaultConfigs()[id]; !ok {
		return fmt.Errorf("unknown provider %q (valid: %s)", id, strings.Join(provider.DefaultChain, ", "))
	}
	return nil
}

func newAuthSetCmd() *cobra.Command {
	var info settings.Info

	cmd := &cobra.Command{
		Use:   "set <provider>",
		Short: "Store credentials for a provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.ToLower(args[0])
			if err := knownProvider(id); err != nil {
				return err
			}
			if info.Empty() {
				return errors.New("nothing to store: pass --key, --email or --url")
			}
			if err := settings.Update(id, info); err != nil {
				return err
			}
			green.Fprintf(cmd.OutOrStdout(), "Credentials for %s saved to %s\n", id, settings.FilePath())
			return nil
		},
	}

	cmd.Flags().StringVar(&info.Key, "key", "", "API key")
	cmd.Flags().StringVar(&info.Email, "email", "", "Account email")
	cmd.Flags().StringVar(&info.BaseURL, "url", "", "Instance base URL")

	return cmd
}

func newAuthListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Show stored credentials",
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			w := cmd.OutOrStdout()
			store := settings.Load()

			cyan.Fprintln(w, "\nStored credentials")
			fmt.Fprintln(w, strings.Repeat("─", 60))
			for _, id := range provider.DefaultChain {
				info := store[id]
				if info.Empty() {
					fmt.Fprintf(w, "  %-10s ", id)
					red.Fprintln(w, "not configured")
					continue
				}
				var parts []string
				if info.Key != "" {
					parts = append(parts, "key: "+settings.MaskKey(info.Key))
				}
				if info.Email != "" {
					parts = append(parts, "email: "+info.Email)
				}
				if info.BaseURL != "" {
					parts = append(parts, "url: "+info.BaseURL)
				}
				fmt.Fprintf(w, "  %-10s ", id)
				green.Fprintln(w, strings.Join(parts, ", "))
			}

			yellow.Fprintln(w, "\nEnvironment")
			for _, id := range provider.DefaultChain {
				for _, name := range []string{settings.EnvVarForProvider(id), settings.EmailEnvVarForProvider(id)} {
					if name == "" {
						continue
					}
					if v := os.Getenv(name); v != "" {
						fmt.Fprintf(w, "  %s: %s (overrides stored value)\n", name, settings.MaskKey(v))
					} else {
						fmt.Fprintf(w, "  %s: not set\n", name)
					}
				}
			}
			fmt.Fprintf(w, "\nFile: %s\n\n", settings.FilePath())
		},
	}
}

func newAuthRemoveCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:     "remove [provider]",
		Aliases: []string{"rm"},
		Short:   "Remove stored credentials",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if all {
				if err := settings.RemoveAll(); err != nil {
					return err
				}
				green.Fprintln(out, "All credentials removed")
				return nil
			}
			if len(args) == 0 {
				return errors.New("name a provider or pass --all")
			}
			id := strings.ToLower(args[0])
			if err := knownProvider(id); err != nil {
				return err
			}
			if err := settings.Remove(id); err != nil {
				return err
			}
			green.Fprintf(out, "Credentials for %s removed\n", id)
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Remove every stored credential")

	return cmd
}

// fileExists reports whether path is an existing regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
