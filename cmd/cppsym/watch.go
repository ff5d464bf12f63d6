package main

import (
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/urfave/cli/v2"
)

func runWatch(c *cli.Context) error {
	s, err := newSession(c)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := addWatchDirs(watcher, s.cfg.Project.Root); err != nil {
		return err
	}
	logf("watching %s", s.cfg.Project.Root)

	debounce := time.Duration(s.cfg.Watch.DebounceMs) * time.Millisecond
	pending := make(map[string]bool)
	var timer *time.Timer
	var fire <-chan time.Time

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if !sourceExtensions[strings.ToLower(filepath.Ext(event.Name))] {
				// A created directory needs its own watch.
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					addWatchDirs(watcher, event.Name) //nolint:errcheck
				}
				continue
			}
			pending[event.Name] = true
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			files := make([]string, 0, len(pending))
			for f := range pending {
				files = append(files, f)
				delete(pending, f)
			}
			for _, r := range s.analyzeFiles(files) {
				if r.err != nil {
					fmt.Fprintf(os.Stderr, "%s: %v\n", r.file, r.err)
					continue
				}
				fmt.Printf("%s: %d scopes, %d functions, fingerprint %016x\n",
					r.file, r.db.ScopeCount(), r.db.FunctionCount(), r.db.Fingerprint())
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logf("watch error: %v", err)
		case <-sig:
			return nil
		}
	}
}

func addWatchDirs(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return err
		}
		name := d.Name()
		if name == ".git" || name == "build" {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}
