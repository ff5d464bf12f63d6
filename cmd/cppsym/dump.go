package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"
)

func runDump(c *cli.Context) error {
	s, err := newSession(c)
	if err != nil {
		return err
	}
	files, err := s.selectFiles(c.Args().Slice())
	if err != nil {
		return err
	}
	outDir := c.String("output")
	if outDir != "" {
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return err
		}
	}

	for _, r := range s.analyzeFiles(files) {
		if r.err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", r.file, r.err)
			continue
		}
		if outDir == "" {
			if err := r.db.Dump(os.Stdout); err != nil {
				return err
			}
			continue
		}
		path := filepath.Join(outDir, filepath.Base(r.file)+".dump")
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		dumpErr := r.db.Dump(f)
		closeErr := f.Close()
		if dumpErr != nil {
			return dumpErr
		}
		if closeErr != nil {
			return closeErr
		}
		if s.verbose {
			logf("wrote %s", path)
		}
	}
	return nil
}
