package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/hurttlocker/loom/internal/config"
	loommcp "github.com/hurttlocker/loom/internal/mcp"
	"github.com/hurttlocker/loom/internal/pipeline"
	"github.com/hurttlocker/loom/internal/store"
	"github.com/hurttlocker/loom/internal/vault"
	"github.com/mark3labs/mcp-go/server"
)

const version = "0.1.0-dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(0)
	}

	var err error
	switch os.Args[1] {
	case "init":
		err = runInit(os.Args[2:])
	case "intake":
		err = runStage(os.Args[2:], "intake")
	case "process":
		err = runStage(os.Args[2:], "process")
	case "organize":
		err = runStage(os.Args[2:], "organize")
	case "crossref":
		err = runStage(os.Args[2:], "crossref")
	case "run":
		err = runStage(os.Args[2:], "intake", "process", "organize", "crossref")
	case "populate":
		err = runStage(os.Args[2:], "populate")
	case "prune":
		err = runStage(os.Args[2:], "prune")
	case "search":
		err = runSearch(os.Args[2:])
	case "show":
		err = runShow(os.Args[2:])
	case "proposals":
		err = runProposals(os.Args[2:])
	case "stats":
		err = runStats(os.Args[2:])
	case "export":
		err = runExport(os.Args[2:])
	case "config":
		err = runConfig(os.Args[2:])
	case "mcp":
		err = runMCP(os.Args[2:])
	case "version", "--version", "-v":
		fmt.Printf("loom %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// parseCommon strips the flags every command shares (--vault, --db,
// --config) and resolves configuration from them.
func parseCommon(args []string) (config.ResolvedConfig, []string, error) {
	opts := config.ResolveOptions{}
	var rest []string

	for i := 0; i < len(args); i++ {
		arg := args[i]
		takeValue := func() (string, error) {
			if i+1 >= len(args) {
				return "", fmt.Errorf("%s requires a value", arg)
			}
			i++
			return args[i], nil
		}

		var err error
		switch arg {
		case "--vault":
			opts.CLIVault, err = takeValue()
		case "--db":
			opts.CLIDBPath, err = takeValue()
		case "--config":
			opts.ConfigPath, err = takeValue()
		default:
			rest = append(rest, arg)
		}
		if err != nil {
			return config.ResolvedConfig{}, nil, err
		}
	}

	cfg, err := config.ResolveConfig(opts)
	return cfg, rest, err
}

func openStore(cfg config.ResolvedConfig) (store.Store, error) {
	return store.NewStore(store.StoreConfig{DBPath: cfg.DBPath.Value})
}

func newRunner(cfg config.ResolvedConfig, st store.Store) *pipeline.Runner {
	r := pipeline.NewRunner(vault.New(cfg.VaultRoot.Value), st)
	r.Thresholds.MinPersonMentions = cfg.PersonThreshold(r.Thresholds.MinPersonMentions)
	r.Thresholds.MinTermMentions = cfg.TermThreshold(r.Thresholds.MinTermMentions)
	return r
}

func runInit(args []string) error {
	cfg, rest, err := parseCommon(args)
	if err != nil {
		return err
	}
	if len(rest) > 0 {
		return fmt.Errorf("unexpected argument: %s", rest[0])
	}

	v := vault.New(cfg.VaultRoot.Value)
	if err := v.EnsureLayout(); err != nil {
		return err
	}
	fmt.Printf("Initialized vault at %s\n", v.Root)
	return nil
}

func runStage(args []string, stages ...string) error {
	cfg, rest, err := parseCommon(args)
	if err != nil {
		return err
	}
	if len(rest) > 0 {
		return fmt.Errorf("unexpected argument: %s", rest[0])
	}

	st, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer st.Close()

	r := newRunner(cfg, st)
	ctx := context.Background()

	for _, stage := range stages {
		var sum *pipeline.Summary
		var err error
		switch stage {
		case "intake":
			sum, err = r.Intake(ctx)
		case "process":
			sum, err = r.Process(ctx)
		case "organize":
			sum, err = r.Organize(ctx)
		case "crossref":
			sum, err = r.Crossref(ctx)
		case "populate":
			sum, err = r.Populate(ctx)
		case "prune":
			sum, err = r.Prune(ctx)
		}
		if err != nil {
			return fmt.Errorf("%s: %w", stage, err)
		}
		printSummary(sum)
	}
	return nil
}

func printSummary(sum *pipeline.Summary) {
	fmt.Printf("%s: %d processed, %d skipped, %d errors\n",
		sum.Stage, sum.Processed, sum.Skipped, len(sum.Errors))
	for _, d := range sum.Details {
		fmt.Printf("  %s\n", d)
	}
	for _, e := range sum.Errors {
		fmt.Fprintf(os.Stderr, "  error: %v\n", e)
	}
}

func runSearch(args []string) error {
	cfg, rest, err := parseCommon(args)
	if err != nil {
		return err
	}
	if len(rest) == 0 {
		return fmt.Errorf("usage: loom search <query>")
	}
	query := strings.Join(rest, " ")

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	entities, err := st.SearchEntities(context.Background(), query, 20)
	if err != nil {
		return err
	}
	if len(entities) == 0 {
		fmt.Println("No matches.")
		return nil
	}
	for _, e := range entities {
		fmt.Printf("%-30s %-12s %4d mentions\n", e.Key, e.Class, e.MentionCount)
	}
	return nil
}

func runShow(args []string) error {
	cfg, rest, err := parseCommon(args)
	if err != nil {
		return err
	}
	if len(rest) == 0 {
		return fmt.Errorf("usage: loom show <name>")
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := context.Background()
	entity, sources, err := lookupEntity(ctx, st, strings.Join(rest, " "))
	if err != nil {
		return err
	}

	fmt.Printf("# %s (%s)\n", entity.Title, entity.Class)
	fmt.Printf("key: %s  mentions: %d  project: %s\n", entity.Key, entity.MentionCount, entity.Project)
	fmt.Printf("created: %s  updated: %s\n\n",
		entity.CreatedAt.Format("2006-01-02"), entity.UpdatedAt.Format("2006-01-02"))
	fmt.Println(entity.Body)
	if len(sources) > 0 {
		fmt.Println("Sources:")
		for _, s := range sources {
			fmt.Printf("  - %s\n", s)
		}
	}
	return nil
}

func runProposals(args []string) error {
	cfg, rest, err := parseCommon(args)
	if err != nil {
		return err
	}

	status := store.ProposalStatusPending
	if len(rest) > 0 && rest[0] == "--all" {
		status = ""
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	proposals, err := st.ListProposals(context.Background(), status, 50)
	if err != nil {
		return err
	}
	if len(proposals) == 0 {
		fmt.Println("No proposals.")
		return nil
	}
	for _, p := range proposals {
		fmt.Printf("%s  %-14s %-24s %s (%s)\n",
			p.CreatedAt.Format("2006-01-02"), p.ChangeType, p.TargetKey, p.SourceDoc, p.Confidence)
	}
	return nil
}

func runStats(args []string) error {
	cfg, rest, err := parseCommon(args)
	if err != nil {
		return err
	}
	if len(rest) > 0 {
		return fmt.Errorf("unexpected argument: %s", rest[0])
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	stats, err := st.Stats(context.Background())
	if err != nil {
		return err
	}

	fmt.Printf("Entities:   %d\n", stats.EntityCount)
	for class, count := range stats.ByClass {
		fmt.Printf("  %-12s %d\n", class, count)
	}
	fmt.Printf("Provenance: %d\n", stats.ProvenanceCount)
	fmt.Printf("Proposals:  %d\n", stats.ProposalCount)
	return nil
}

func runConfig(args []string) error {
	cfg, rest, err := parseCommon(args)
	if err != nil {
		return err
	}
	if len(rest) > 0 {
		return fmt.Errorf("unexpected argument: %s", rest[0])
	}

	show := func(name string, v config.ResolvedValue) {
		if v.Value == "" {
			fmt.Printf("%-20s (unset)\n", name)
			return
		}
		from := ""
		if v.From != "" {
			from = " via " + v.From
		}
		fmt.Printf("%-20s %s  [%s%s]\n", name, v.Value, v.Source, from)
	}

	fmt.Printf("config file: %s\n\n", cfg.ConfigPath)
	show("vault_root", cfg.VaultRoot)
	show("db_path", cfg.DBPath)
	show("min_person_mentions", cfg.MinPersonMentions)
	show("min_term_mentions", cfg.MinTermMentions)
	return nil
}

func runMCP(args []string) error {
	cfg, rest, err := parseCommon(args)
	if err != nil {
		return err
	}
	if len(rest) > 0 {
		return fmt.Errorf("unexpected argument: %s", rest[0])
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	s := loommcp.NewServer(loommcp.ServerConfig{Store: st, Version: version})
	return server.ServeStdio(s)
}

func printUsage() {
	fmt.Printf(`loom %s — heuristic knowledge extraction for project documents

Usage:
  loom <command> [arguments]

Pipeline:
  init                Create the vault directory layout
  intake              Classify and queue raw documents
  process             Extract entities and tasks from queued documents
  organize            Merge extractions into the knowledge base
  crossref            Generate review proposals for processed documents
  run                 intake + process + organize + crossref
  populate            Seed the knowledge base from the whole corpus
  prune               Remove unconfirmed people and unknown terms

Knowledge base:
  search <query>      Search knowledge entities
  show <name>         Show one entity with its sources
  proposals [--all]   List change proposals
  stats               Show knowledge base statistics
  export              Render entities to markdown in the vault

Other:
  config              Show resolved configuration and where it came from
  mcp                 Serve the knowledge base over MCP (stdio)
  version             Print version

Flags (all commands):
  --vault <dir>       Vault root (default: current directory)
  --db <path>         Database path (default: ~/.loom/loom.db)
  --config <path>     Config file (default: ~/.loom/config.yaml)
`, version)
}
