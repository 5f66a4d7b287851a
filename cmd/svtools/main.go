package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/zimbopro/svtools"
	"github.com/zimbopro/svtools/crossref"
	"github.com/zimbopro/svtools/internal/findings"
	"github.com/zimbopro/svtools/merger"
	"github.com/zimbopro/svtools/parser"
	"github.com/zimbopro/svtools/terraform"
	"github.com/zimbopro/svtools/validator"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "version", "-v", "--version":
		fmt.Printf("svtools v%s\n", svtools.Version())
	case "help", "-h", "--help":
		printUsage()
	case "verify":
		if err := handleVerify(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("svtools - cross-validate OpenAPI documents against Terraform lambda wiring")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  svtools <command> [flags]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  verify     Verify the OpenAPI and Terraform files against each other")
	fmt.Println("  version    Print the version")
	fmt.Println("  help       Print this help")
	fmt.Println()
	fmt.Println("Run 'svtools <command> -h' for command-specific flags.")
}

// verifyFlags contains flags for the verify command
type verifyFlags struct {
	apiPath      string
	terraformDir string
	skipCyclic   bool
	verbose      bool
}

func setupVerifyFlags() (*flag.FlagSet, *verifyFlags) {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	flags := &verifyFlags{}

	fs.StringVar(&flags.apiPath, "api-path", "", "directory containing the OpenAPI documents")
	fs.StringVar(&flags.terraformDir, "terraform", "", "directory containing the Terraform files")
	fs.BoolVar(&flags.skipCyclic, "skip-cyclic", false, "tolerate cyclic $ref chains (downgraded to warnings)")
	fs.BoolVar(&flags.verbose, "verbose", false, "enable debug logging")

	fs.Usage = func() {
		output := fs.Output()
		_, _ = fmt.Fprintf(output, "Usage: svtools verify -api-path <dir> -terraform <dir> [flags]\n\n")
		_, _ = fmt.Fprintf(output, "Cross-validate OpenAPI documents against the Terraform lambda wiring.\n\n")
		_, _ = fmt.Fprintf(output, "Flags:\n")
		fs.PrintDefaults()
		_, _ = fmt.Fprintf(output, "\nExamples:\n")
		_, _ = fmt.Fprintf(output, "  svtools verify -api-path ./api -terraform ./infra\n")
		_, _ = fmt.Fprintf(output, "  svtools verify -api-path ./api -terraform ./infra -skip-cyclic\n")
	}

	return fs, flags
}

func handleVerify(args []string) error {
	fs, flags := setupVerifyFlags()
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil
		}
		return err
	}

	if flags.apiPath == "" || flags.terraformDir == "" {
		fs.Usage()
		return fmt.Errorf("both -api-path and -terraform are required")
	}
	for _, dir := range []string{flags.apiPath, flags.terraformDir} {
		info, err := os.Stat(dir)
		if err != nil {
			return fmt.Errorf("path %s does not exist", dir)
		}
		if !info.IsDir() {
			return fmt.Errorf("path %s is not a directory", dir)
		}
	}

	level := slog.LevelInfo
	if flags.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	report, err := runPipeline(flags, parser.NewSlogAdapter(logger))
	if err != nil {
		return err
	}

	if report.Len() > 0 {
		fmt.Print(report.Render())
	}
	if report.HasFatal() {
		return fmt.Errorf("validation failed with %d fatal finding(s)", len(report.Fatal()))
	}
	logger.Info("validation passed", "findings", report.Len())
	return nil
}

// runPipeline executes resolve -> merge -> (schema-validate || extract) ->
// cross-reference. Schema validation and Terraform extraction have no data
// dependency on each other and run as independent tasks with no shared
// mutable state.
func runPipeline(flags *verifyFlags, logger parser.Logger) (*findings.Report, error) {
	files, err := findAPIFiles(flags.apiPath)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no OpenAPI documents found in %s", flags.apiPath)
	}

	docs := make([]*parser.Document, 0, len(files))
	for _, file := range files {
		doc, err := parser.Parse(
			parser.WithFilePath(file),
			parser.WithResolveRefs(true),
			parser.WithTolerateCycles(flags.skipCyclic),
			parser.WithLogger(logger),
		)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	merged, err := merger.Merge(docs)
	if err != nil {
		return nil, err
	}

	var (
		schemaFindings []findings.Finding
		model          *terraform.Model
	)
	var g errgroup.Group
	g.Go(func() error {
		schemaFindings = validator.New().Validate(merged.Document)
		return nil
	})
	g.Go(func() error {
		var err error
		model, err = terraform.Extract(flags.terraformDir)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &findings.Report{}
	report.Add(merged.Findings...)
	report.Add(schemaFindings...)
	report.Merge(crossref.Validate(merged.Document, model))
	return report, nil
}

// findAPIFiles returns the OpenAPI document files under dir, sorted so the
// merge order (and therefore the report) is reproducible.
func findAPIFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml", ".json":
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}
	sort.Strings(files)
	return files, nil
}
