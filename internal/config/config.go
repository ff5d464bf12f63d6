// Package config loads the .cppsym.kdl project configuration: project
// root, target platform, file selection globs, and library descriptor
// paths. A missing config file yields the defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"
)

// Project identifies the analyzed source tree.
type Project struct {
	Root string
	Name string
}

// Analysis holds the engine knobs.
type Analysis struct {
	// Platform selects integer widths: native, unix32, unix64, win32A,
	// win64.
	Platform string

	// Libraries lists TOML descriptor files merged over the built-in
	// defaults.
	Libraries []string

	// MaxFileSize skips files larger than this many bytes; 0 means no
	// limit.
	MaxFileSize int64

	// MaxGoroutines bounds the per-file analysis fan-out; 0 means
	// GOMAXPROCS.
	MaxGoroutines int
}

// Watch configures the re-analyze-on-change mode.
type Watch struct {
	DebounceMs int
}

// Config is the merged configuration for one run.
type Config struct {
	Project  Project
	Analysis Analysis
	Watch    Watch

	// Include and Exclude are doublestar globs over relative paths.
	// Empty Include means every C/C++ source file under the root.
	Include []string
	Exclude []string
}

// Defaults returns the configuration used when no .cppsym.kdl exists.
func Defaults() *Config {
	root, err := os.Getwd()
	if err != nil {
		root = "."
	}
	return &Config{
		Project: Project{Root: root},
		Analysis: Analysis{
			Platform:    "native",
			MaxFileSize: 10 * 1024 * 1024,
		},
		Watch:   Watch{DebounceMs: 200},
		Include: []string{},
		Exclude: []string{"**/build/**", "**/.git/**"},
	}
}

// Load reads configPath and merges it over the defaults. A nonexistent
// file is not an error. Relative project roots resolve against the config
// file's directory.
func Load(configPath string) (*Config, error) {
	cfg := Defaults()
	content, err := os.ReadFile(configPath)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", configPath, err)
	}
	if err := parseKDL(string(content), cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", configPath, err)
	}

	if !filepath.IsAbs(cfg.Project.Root) {
		base := filepath.Dir(configPath)
		cfg.Project.Root = filepath.Clean(filepath.Join(base, cfg.Project.Root))
	}
	for i, lib := range cfg.Analysis.Libraries {
		if !filepath.IsAbs(lib) {
			cfg.Analysis.Libraries[i] = filepath.Join(filepath.Dir(configPath), lib)
		}
	}
	return cfg, nil
}

func parseKDL(content string, cfg *Config) error {
	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return err
	}
	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "project":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "root":
					if s, ok := firstStringArg(cn); ok {
						cfg.Project.Root = s
					}
				case "name":
					if s, ok := firstStringArg(cn); ok {
						cfg.Project.Name = s
					}
				}
			}
		case "analysis":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "platform":
					if s, ok := firstStringArg(cn); ok {
						cfg.Analysis.Platform = s
					}
				case "library":
					cfg.Analysis.Libraries = append(cfg.Analysis.Libraries, collectStringArgs(cn)...)
				case "max_file_size":
					if v, ok := firstIntArg(cn); ok {
						cfg.Analysis.MaxFileSize = int64(v)
					}
				case "max_goroutines":
					if v, ok := firstIntArg(cn); ok {
						cfg.Analysis.MaxGoroutines = v
					}
				}
			}
		case "watch":
			for _, cn := range n.Children {
				if nodeName(cn) == "debounce_ms" {
					if v, ok := firstIntArg(cn); ok {
						cfg.Watch.DebounceMs = v
					}
				}
			}
		case "include":
			cfg.Include = append(cfg.Include, collectStringArgs(n)...)
		case "exclude":
			cfg.Exclude = collectStringArgs(n)
		}
	}
	return nil
}

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	}
	return 0, false
}

func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		for _, child := range n.Children {
			if s, ok := firstStringArg(child); ok {
				out = append(out, s)
			} else if child.Name != nil {
				if s, ok := child.Name.Value.(string); ok {
					out = append(out, s)
				}
			}
		}
	}
	return out
}
