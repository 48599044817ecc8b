package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/adrkit/internal"
	"github.com/starford/adrkit/internal/record"
	pkgconfig "github.com/starford/adrkit/pkg/config"
)

var version = "dev"

// loadConfig reads the optional config file and applies global flag
// overrides.
func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if root := cmd.String("repo-root"); root != "" {
		cfg.Repo.Root = root
	}
	if cmd.Bool("verbose") {
		cfg.App.LogLevel = slog.LevelDebug
	}
	return cfg, nil
}

func cliLogger(cfg *internal.Config) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
}

// openRecords prepares the record service for a one-shot command.
func openRecords(cmd *cli.Command) (*record.Service, *internal.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	svc, err := internal.NewRecordService(cfg, cliLogger(cfg))
	if err != nil {
		return nil, nil, err
	}
	return svc, cfg, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}

func absPath(root, rel string) string {
	return filepath.Join(root, filepath.FromSlash(rel))
}

func runNew(ctx context.Context, cmd *cli.Command) error {
	svc, cfg, err := openRecords(cmd)
	if err != nil {
		return err
	}
	req := cfg.Defaults().Create(record.CreateRequest{
		Dir:            cmd.String("dir"),
		NoCreateDir:    cmd.Bool("no-create-dir"),
		Title:          cmd.String("title"),
		Status:         cmd.String("status"),
		Template:       cmd.String("template"),
		Strategy:       cmd.String("strategy"),
		Deciders:       cmd.String("deciders"),
		TechnicalStory: cmd.String("technical-story"),
		ChosenOption:   cmd.String("chosen-option"),
		Date:           cmd.String("date"),
		UpdateIndex:    cmd.Bool("update-index"),
		IndexFile:      cmd.String("index-file"),
	})
	res, err := svc.Create(ctx, req)
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return printJSON(res)
	}
	fmt.Println(absPath(res.RepoRoot, res.RelPath))
	return nil
}

func runBootstrap(ctx context.Context, cmd *cli.Command) error {
	svc, cfg, err := openRecords(cmd)
	if err != nil {
		return err
	}
	req := cfg.Defaults().Bootstrap(record.BootstrapRequest{
		Dir:         cmd.String("dir"),
		IndexFile:   cmd.String("index-file"),
		ForceIndex:  cmd.Bool("force-index"),
		FirstTitle:  cmd.String("first-title"),
		FirstStatus: cmd.String("first-status"),
		Deciders:    cmd.String("deciders"),
		Strategy:    cmd.String("strategy"),
		Date:        cmd.String("date"),
	})
	res, err := svc.Bootstrap(ctx, req)
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return printJSON(res)
	}
	fmt.Println(absPath(res.RepoRoot, res.FirstADR.RelPath))
	fmt.Printf("Bootstrapped ADRs at %s (%s)\n", absPath(res.RepoRoot, res.ADRDir), res.Date)
	fmt.Printf("Index: %s\n", absPath(res.RepoRoot, res.IndexRelPath))
	return nil
}

func runStatus(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return fmt.Errorf("expected exactly one record path, got %d", cmd.Args().Len())
	}
	svc, cfg, err := openRecords(cmd)
	if err != nil {
		return err
	}
	rel, err := repoRelative(svc.Store().Root(), cmd.Args().First())
	if err != nil {
		return err
	}
	req := cfg.Defaults().SetStatus(record.SetStatusRequest{
		Path:        rel,
		Status:      cmd.String("status"),
		IfMatch:     cmd.String("if-match"),
		UpdateIndex: cmd.Bool("update-index"),
		IndexFile:   cmd.String("index-file"),
	})
	res, err := svc.SetStatus(ctx, req)
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return printJSON(res)
	}
	fmt.Println(absPath(res.RepoRoot, res.RelPath))
	return nil
}

// repoRelative turns a path given on the command line, relative to the
// working directory, into a slash path relative to the repository root.
func repoRelative(root, p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", p, err)
	}
	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", root, err)
	}
	rel, err := filepath.Rel(rootAbs, abs)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", p, err)
	}
	return filepath.ToSlash(rel), nil
}

func runList(ctx context.Context, cmd *cli.Command) error {
	svc, cfg, err := openRecords(cmd)
	if err != nil {
		return err
	}
	if cmd.Bool("index") {
		return runIndex(ctx, cmd, svc, cfg)
	}
	req := cfg.Defaults().List(record.ListRequest{
		Dir:    cmd.String("dir"),
		Status: cmd.String("status"),
	})
	recs, err := svc.List(ctx, req)
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return printJSON(recs)
	}
	for _, r := range recs {
		date := r.Date
		if date == "" {
			date = "-"
		}
		fmt.Printf("%s\t%s\t%s\t%s\n", r.Path, strings.ToLower(r.Status), date, r.Title)
	}
	return nil
}

// runIndex prints the entries of the ADR index instead of the records on disk.
func runIndex(ctx context.Context, cmd *cli.Command, svc *record.Service, cfg *internal.Config) error {
	listing, err := svc.Index(ctx, cfg.Defaults().Index(record.IndexRequest{
		Dir:       cmd.String("dir"),
		IndexFile: cmd.String("index-file"),
	}))
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return printJSON(listing)
	}
	want := strings.TrimSpace(cmd.String("status"))
	for _, e := range listing.Entries {
		if want != "" && !strings.EqualFold(e.Status, want) {
			continue
		}
		fmt.Printf("%s\t%s\t%s\t%s\n", e.Link, strings.ToLower(e.Status), e.Date, e.Title)
	}
	return nil
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg), internal.WithVersion(version)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func runMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.RunMCP(ctx, internal.WithConfig(cfg), internal.WithVersion(version)); err != nil {
		return fmt.Errorf("mcp run error: %w", err)
	}
	return nil
}

func dirFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "dir",
		Usage: "ADR directory relative to the repo root (default: first existing of " + strings.Join(record.CandidateDirs, ", ") + ")",
	}
}

func indexFileFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "index-file",
		Usage: "Index file relative to the repo root (default: README.md or index.md in the ADR directory)",
	}
}

func strategyFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "strategy",
		Usage: "File naming strategy: auto, number or slug",
	}
}

func jsonFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "json",
		Usage: "Print the result as JSON",
	}
}

func dateFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "date",
		Usage: "Record date as YYYY-MM-DD (default: today)",
	}
}

func main() {
	cmd := &cli.Command{
		Name:    "adr",
		Usage:   "Create and maintain Architecture Decision Records in a repository",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (optional)",
				Sources: cli.EnvVars("APP_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "repo-root",
				Usage:   "Repository root (default: current directory)",
				Sources: cli.EnvVars("ADR_REPO_ROOT"),
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable debug logging",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "new",
				Usage:  "Create a new ADR",
				Action: runNew,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Usage: "Decision title", Required: true},
					dirFlag(),
					&cli.BoolFlag{Name: "no-create-dir", Usage: "Fail instead of creating a missing ADR directory"},
					&cli.StringFlag{Name: "status", Usage: "Initial status (default: proposed)"},
					&cli.StringFlag{Name: "template", Usage: "Record template: simple or madr"},
					strategyFlag(),
					&cli.StringFlag{Name: "deciders", Usage: "Comma separated decision makers"},
					&cli.StringFlag{Name: "technical-story", Usage: "Technical story or ticket (madr)"},
					&cli.StringFlag{Name: "chosen-option", Usage: "Chosen option (madr)"},
					dateFlag(),
					&cli.BoolFlag{Name: "update-index", Usage: "Add the record to the ADR index"},
					indexFileFlag(),
					jsonFlag(),
				},
			},
			{
				Name:   "bootstrap",
				Usage:  "Create the ADR directory, index and first record",
				Action: runBootstrap,
				Flags: []cli.Flag{
					dirFlag(),
					indexFileFlag(),
					&cli.BoolFlag{Name: "force-index", Usage: "Overwrite an existing index"},
					&cli.StringFlag{Name: "first-title", Usage: "Title of the first record", Value: record.DefaultFirstTitle},
					&cli.StringFlag{Name: "first-status", Usage: "Status of the first record", Value: record.DefaultFirstStatus},
					&cli.StringFlag{Name: "deciders", Usage: "Comma separated decision makers"},
					strategyFlag(),
					dateFlag(),
					jsonFlag(),
				},
			},
			{
				Name:      "status",
				Usage:     "Change the status of an existing ADR",
				ArgsUsage: "<path>",
				Action:    runStatus,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "status", Usage: "New status", Required: true},
					&cli.StringFlag{Name: "if-match", Usage: "Only write when the record checksum matches"},
					&cli.BoolFlag{Name: "update-index", Usage: "Also update the status shown in the index"},
					indexFileFlag(),
					jsonFlag(),
				},
			},
			{
				Name:   "list",
				Usage:  "List ADRs",
				Action: runList,
				Flags: []cli.Flag{
					dirFlag(),
					&cli.StringFlag{Name: "status", Usage: "Only list records with this status"},
					&cli.BoolFlag{Name: "index", Usage: "List the entries of the ADR index instead of the files"},
					indexFileFlag(),
					jsonFlag(),
				},
			},
			{
				Name:   "serve",
				Usage:  "Serve the REST API with live catalog updates",
				Action: runServe,
			},
			{
				Name:   "mcp",
				Usage:  "Serve the MCP tools over stdio",
				Action: runMCP,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
