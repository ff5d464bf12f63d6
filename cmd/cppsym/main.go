package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/cppsym/internal/config"
	"github.com/standardbeagle/cppsym/internal/library"
	"github.com/standardbeagle/cppsym/internal/symdb"
	"github.com/standardbeagle/cppsym/internal/tokenizer"
)

var Version = "0.3.0"

func main() {
	app := &cli.App{
		Name:                   "cppsym",
		Usage:                  "C/C++ symbol database builder",
		Version:                Version,
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config file path",
				Value:   ".cppsym.kdl",
			},
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "Source root to analyze (overrides config)",
			},
			&cli.StringFlag{
				Name:    "platform",
				Aliases: []string{"p"},
				Usage:   "Target platform: native, unix32, unix64, win32A, win64",
			},
			&cli.StringSliceFlag{
				Name:  "library",
				Usage: "Additional library descriptor TOML files",
			},
			&cli.StringSliceFlag{
				Name:  "include",
				Usage: "Include files matching glob patterns (e.g. --include 'src/**/*.cpp')",
			},
			&cli.StringSliceFlag{
				Name:  "exclude",
				Usage: "Exclude files matching glob patterns",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Print per-file diagnostics and the scope tree",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "analyze",
				Aliases:   []string{"a"},
				Usage:     "Build symbol databases and report a summary",
				ArgsUsage: "[files...]",
				Action:    runAnalyze,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "fingerprint",
						Usage: "Print the database fingerprint per file",
					},
				},
			},
			{
				Name:      "dump",
				Aliases:   []string{"d"},
				Usage:     "Write the symbol database as XML",
				ArgsUsage: "[files...]",
				Action:    runDump,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Directory for per-file .dump files (default stdout)",
					},
				},
			},
			{
				Name:    "watch",
				Aliases: []string{"w"},
				Usage:   "Re-analyze files as they change",
				Action:  runWatch,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// session is the resolved configuration plus the loaded library shared by
// every command.
type session struct {
	cfg     *config.Config
	lib     *library.Library
	verbose bool
}

func newSession(c *cli.Context) (*session, error) {
	configPath := c.String("config")
	if root := c.String("root"); root != "" && configPath == ".cppsym.kdl" {
		configPath = filepath.Join(root, ".cppsym.kdl")
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if root := c.String("root"); root != "" {
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, fmt.Errorf("resolve root %q: %w", root, err)
		}
		cfg.Project.Root = abs
	}
	if inc := c.StringSlice("include"); len(inc) > 0 {
		cfg.Include = inc
	}
	if exc := c.StringSlice("exclude"); len(exc) > 0 {
		cfg.Exclude = append(cfg.Exclude, exc...)
	}
	if p := c.String("platform"); p != "" {
		cfg.Analysis.Platform = p
	}
	cfg.Analysis.Libraries = append(cfg.Analysis.Libraries, c.StringSlice("library")...)

	lib := library.Default()
	plat, err := library.PlatformByName(cfg.Analysis.Platform)
	if err != nil {
		return nil, err
	}
	lib.SetPlatform(plat)
	for _, path := range cfg.Analysis.Libraries {
		if err := lib.LoadFile(path); err != nil {
			return nil, fmt.Errorf("library %s: %w", path, err)
		}
	}
	return &session{cfg: cfg, lib: lib, verbose: c.Bool("verbose")}, nil
}

// result is one analyzed translation unit.
type result struct {
	file string
	db   *symdb.SymbolDatabase
	err  error
}

// analyzeFiles fans out over the selected files, bounded by the configured
// goroutine limit.
func (s *session) analyzeFiles(files []string) []result {
	limit := s.cfg.Analysis.MaxGoroutines
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	results := make([]result, len(files))
	var g errgroup.Group
	g.SetLimit(limit)
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			results[i] = s.analyzeOne(file)
			return nil
		})
	}
	g.Wait() //nolint:errcheck // workers report through results
	return results
}

func (s *session) analyzeOne(file string) result {
	source, err := os.ReadFile(file)
	if err != nil {
		return result{file: file, err: err}
	}
	list, err := tokenizer.Tokenize(file, string(source))
	if err != nil {
		return result{file: file, err: err}
	}
	db, err := symdb.Build(list, s.lib)
	return result{file: file, db: db, err: err}
}

func runAnalyze(c *cli.Context) error {
	s, err := newSession(c)
	if err != nil {
		return err
	}
	files, err := s.selectFiles(c.Args().Slice())
	if err != nil {
		return err
	}

	failed := 0
	for _, r := range s.analyzeFiles(files) {
		if r.err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "%s: %v\n", r.file, r.err)
			continue
		}
		fmt.Printf("%s: %d scopes, %d types, %d functions, %d variables",
			r.file, r.db.ScopeCount(), r.db.TypeCount(), r.db.FunctionCount(), r.db.VariableCount())
		if c.Bool("fingerprint") {
			fmt.Printf(" %016x", r.db.Fingerprint())
		}
		fmt.Println()
		if s.verbose {
			for _, d := range r.db.Diagnostics() {
				fmt.Printf("  %s:%d:%d: %s\n", r.file, d.Line, d.Col, d.Msg)
			}
			fmt.Print(r.db.String())
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(files))
	}
	return nil
}

// selectFiles resolves explicit arguments, or walks the project root
// applying the include/exclude globs.
func (s *session) selectFiles(args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	files, err := findSources(s.cfg)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no source files under %s", s.cfg.Project.Root)
	}
	sort.Strings(files)
	return files, nil
}

var logMu sync.Mutex

func logf(format string, args ...any) {
	logMu.Lock()
	defer logMu.Unlock()
	log.Printf(format, args...)
}
