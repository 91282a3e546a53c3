package main

import (
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/howeyc/fsnotify"
)

// watchMode runs the program in file and runs it again each time the file
// is written. It only returns if the watcher cannot be set up.
func watchMode(file string, cfg config) error {
	file = filepath.Clean(file)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := watcher.Watch(filepath.Dir(file)); err != nil {
		return err
	}

	run := time.After(1 * time.Millisecond)
	for {
		select {
		case <-run:
			log.Printf("watch: run %s", filepath.Base(file))
			if err := runFile(os.Stdout, file, cfg); err != nil {
				log.Printf("watch: %v", err)
			}
		case ev := <-watcher.Event:
			if filepath.Clean(ev.Name) == file && !ev.IsAttrib() {
				// Editors often write a file in several steps.
				run = time.After(100 * time.Millisecond)
			}
		case err := <-watcher.Error:
			log.Printf("watch: watcher: %v", err)
		}
	}
}
