// Command calinga reads translations from a Calinga project through the
// resources, cache and service tiers.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"text/tabwriter"

	json "github.com/goccy/go-json"

	"github.com/ZaguanLabs/calinga"
	"github.com/ZaguanLabs/calinga/cache"
	"github.com/ZaguanLabs/calinga/internal/config"
	"github.com/ZaguanLabs/calinga/internal/server"
	"github.com/ZaguanLabs/calinga/processor"
)

// Build-time variables (can be overridden with ldflags)
var (
	version   = calinga.Version
	commit    = calinga.GitCommit
	buildDate = calinga.BuildDate
)

const usage = `Usage: calinga <command> [flags]

Commands:
  read        Print the translations of language/namespace pairs as JSON
  languages   List the project languages
  serve       Run the translation HTTP API
  localize    Apply translations to an HTML file
  cache       Export or import the persisted cache
  version     Show version

Every command accepts --config (default: $CALINGA_CONFIG).
Settings can also be given as CALINGA_* environment variables.
`

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return errors.New("command required")
	}

	switch args[0] {
	case "read":
		return runRead(args[1:], stdout, stderr)
	case "languages":
		return runLanguages(args[1:], stdout, stderr)
	case "serve":
		return runServe(args[1:], stdout, stderr)
	case "localize":
		return runLocalize(args[1:], stdout, stderr)
	case "cache":
		return runCache(args[1:], stdout, stderr)
	case "version", "--version", "-version":
		printVersion(stdout)
		return nil
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return nil
	default:
		fmt.Fprint(stderr, usage)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "%s %s\n", calinga.Name, version)
	if commit != "unknown" && commit != "" {
		fmt.Fprintf(w, "  commit:  %s\n", commit)
	}
	if buildDate != "unknown" && buildDate != "" {
		fmt.Fprintf(w, "  built:   %s\n", buildDate)
	}
}

// newFlagSet creates a flag set with the flags shared by every command.
func newFlagSet(name string, stderr io.Writer) (*flag.FlagSet, *string, *string) {
	fs := flag.NewFlagSet("calinga "+name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", os.Getenv("CALINGA_CONFIG"), "YAML configuration file")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	return fs, configPath, logLevel
}

func loadConfig(path, logLevel string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	return cfg, nil
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

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runRead(args []string, stdout, stderr io.Writer) error {
	fs, configPath, logLevel := newFlagSet("read", stderr)
	langs := fs.String("lang", "", "Comma-separated languages (e.g., en,de)")
	namespaces := fs.String("ns", "", "Comma-separated namespaces")
	if err := fs.Parse(args); err != nil {
		return err
	}

	languageList, nsList := splitList(*langs), splitList(*namespaces)
	if len(languageList) == 0 || len(nsList) == 0 {
		fs.Usage()
		return errors.New("--lang and --ns are required")
	}

	cfg, err := loadConfig(*configPath, *logLevel)
	if err != nil {
		return err
	}

	ctx := context.Background()
	a, err := newApp(ctx, cfg, stderr, appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	if len(languageList) == 1 && len(nsList) == 1 {
		translations, err := a.backend.Read(ctx, languageList[0], nsList[0])
		if err != nil {
			return err
		}
		return writeJSON(stdout, translations)
	}

	results, err := a.backend.ReadAll(ctx, languageList, nsList)
	if encErr := writeJSON(stdout, results); encErr != nil {
		return encErr
	}
	return err
}

func runLanguages(args []string, stdout, stderr io.Writer) error {
	fs, configPath, logLevel := newFlagSet("languages", stderr)
	jsonOutput := fs.Bool("json", false, "Output as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*configPath, *logLevel)
	if err != nil {
		return err
	}

	ctx := context.Background()
	a, err := newApp(ctx, cfg, stderr, appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	dir := calinga.NewLanguageDirectory(cfg.DevMode)
	if err := dir.Refresh(ctx, a.service); err != nil {
		return err
	}

	reference := dir.Reference()
	infos := make([]server.LanguageInfo, 0)
	for _, name := range dir.Languages() {
		infos = append(infos, server.LanguageInfo{
			Name:        name,
			DisplayName: calinga.DisplayName(name),
			Direction:   calinga.GetDirection(name),
			IsReference: name == reference,
		})
	}

	if *jsonOutput {
		return writeJSON(stdout, server.LanguagesResponse{Languages: infos, Reference: reference})
	}

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	for _, info := range infos {
		marker := ""
		if info.IsReference {
			marker = "reference"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", info.Name, info.DisplayName, info.Direction, marker)
	}
	return tw.Flush()
}

func runServe(args []string, stdout, stderr io.Writer) error {
	fs, configPath, logLevel := newFlagSet("serve", stderr)
	addr := fs.String("addr", "", "Listen address (default from config)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*configPath, *logLevel)
	if err != nil {
		return err
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, stderr, appOptions{directory: true})
	if err != nil {
		return err
	}
	defer a.Close()

	srv := server.New(cfg.Server.Addr, server.Config{
		Reader:      a.backend,
		Logger:      a.logger,
		Gatherer:    a.registry,
		CORSOrigins: cfg.Server.CORSOrigins,
	})
	return srv.Run(ctx, cfg.Server.ShutdownTimeout)
}

func runLocalize(args []string, stdout, stderr io.Writer) error {
	fs, configPath, logLevel := newFlagSet("localize", stderr)
	lang := fs.String("lang", "", "Target language")
	namespace := fs.String("ns", "", "Namespace")
	output := fs.String("output", "", "Output file (default: stdout)")
	outputShort := fs.String("o", "", "Output file (short for --output)")
	listKeys := fs.Bool("keys", false, "List the keys referenced by the input and exit")
	quiet := fs.Bool("quiet", false, "Do not report missing keys")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *outputShort != "" && *output == "" {
		*output = *outputShort
	}

	input, inputName, err := readInput(fs)
	if err != nil {
		return err
	}

	localizer := processor.NewHTMLLocalizer()

	if *listKeys {
		keys, err := localizer.Keys(input)
		if err != nil {
			return err
		}
		for _, k := range keys {
			fmt.Fprintln(stdout, k)
		}
		return nil
	}

	if *lang == "" || *namespace == "" {
		fs.Usage()
		return errors.New("--lang and --ns are required")
	}

	cfg, err := loadConfig(*configPath, *logLevel)
	if err != nil {
		return err
	}

	ctx := context.Background()
	a, err := newApp(ctx, cfg, stderr, appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	translations, err := a.backend.Read(ctx, *lang, *namespace)
	if err != nil {
		return err
	}

	result, err := localizer.LocalizeDocument(input, *lang, translations)
	if err != nil {
		return fmt.Errorf("localizing %s: %w", inputName, err)
	}

	var out io.Writer = stdout
	if *output != "" {
		f, err := os.Create(*output) // #nosec G304 - CLI tool writes user-specified files
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		out = f
	}
	fmt.Fprint(out, result.HTML)

	if !*quiet && len(result.Missing) > 0 {
		fmt.Fprintf(stderr, "%s: %d missing keys: %s\n", inputName, len(result.Missing), strings.Join(result.Missing, ", "))
	}
	return nil
}

// readInput reads the first positional argument, or stdin when absent.
func readInput(fs *flag.FlagSet) (string, string, error) {
	if fs.NArg() == 0 {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), "stdin", nil
	}

	path := fs.Arg(0)
	data, err := os.ReadFile(path) // #nosec G304 - CLI tool reads user-specified files
	if err != nil {
		return "", "", fmt.Errorf("reading file: %w", err)
	}
	return string(data), filepath.Base(path), nil
}

func runCache(args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		return errors.New("cache: subcommand required (export, import)")
	}

	switch args[0] {
	case "export":
		return runCacheExport(args[1:], stdout, stderr)
	case "import":
		return runCacheImport(args[1:], stdout, stderr)
	default:
		return fmt.Errorf("cache: unknown subcommand %q", args[0])
	}
}

func runCacheExport(args []string, stdout, stderr io.Writer) error {
	fs, configPath, logLevel := newFlagSet("cache export", stderr)
	output := fs.String("o", "", "Output file (default: stdout)")
	warmLangs := fs.String("warm", "", "Comma-separated languages to read before exporting")
	warmNS := fs.String("ns", "", "Namespaces to read with --warm")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*configPath, *logLevel)
	if err != nil {
		return err
	}

	ctx := context.Background()
	a, err := newApp(ctx, cfg, stderr, appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	if a.cache == nil {
		return errors.New("cache export: no cache configured")
	}

	if langs := splitList(*warmLangs); len(langs) > 0 {
		if _, err := a.backend.ReadAll(ctx, langs, splitList(*warmNS)); err != nil {
			a.logger.Warn().Err(err).Msg("some translations could not be loaded")
		}
	}

	metadata := map[string]string{
		"organization": cfg.Service.Organization,
		"team":         cfg.Service.Team,
		"project":      cfg.Service.Project,
		"exporter":     calinga.UserAgent(),
	}

	exporter := cache.NewExporter(a.cache)
	if *output != "" {
		return exporter.ExportToFile(ctx, *output, metadata)
	}
	return exporter.Export(ctx, stdout, metadata)
}

func runCacheImport(args []string, stdout, stderr io.Writer) error {
	fs, configPath, logLevel := newFlagSet("cache import", stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("cache import: exactly one file required")
	}

	cfg, err := loadConfig(*configPath, *logLevel)
	if err != nil {
		return err
	}

	ctx := context.Background()
	a, err := newApp(ctx, cfg, stderr, appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	if a.cache == nil {
		return errors.New("cache import: no cache configured")
	}

	result, err := cache.NewImporter(a.cache).ImportFromFile(ctx, fs.Arg(0))
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(result.Metadata))
	for k := range result.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Fprintf(stdout, "Imported %d entries (%d failed)\n", result.Imported, result.Failed)
	for _, k := range keys {
		fmt.Fprintf(stdout, "  %s: %s\n", k, result.Metadata[k])
	}
	if result.Failed > 0 {
		return fmt.Errorf("%d entries failed to import", result.Failed)
	}
	return nil
}
