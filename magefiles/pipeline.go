//go:build mage

package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/magefile/mage/mg"
)

// run executes the built CLI with the given subcommand and arguments.
func run(args ...string) error {
	cmd := exec.Command(filepath.Join(binDir, binName), args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// Harvest pulls posts for the sources listed in sources.yaml with dedupe on.
func Harvest() error {
	mg.Deps(Build)
	if _, err := os.Stat("sources.yaml"); err != nil {
		return fmt.Errorf("sources.yaml not found; create one or run the harvest subcommand directly")
	}
	return run("harvest", "--sources-file", "sources.yaml", "--dedupe")
}

// Analyze runs the analysis pipeline over the newest corpus file in output/.
func Analyze() error {
	mg.Deps(Build)
	corpus, err := newestCorpus("output")
	if err != nil {
		return err
	}
	fmt.Printf("Analyzing %s\n", corpus)
	return run("analyze", corpus)
}

// Archive lists the most recently archived posts.
func Archive() error {
	mg.Deps(Build)
	return run("archive")
}

// newestCorpus returns the most recently modified corpus-*.jsonl file in dir.
func newestCorpus(dir string) (string, error) {
	matches, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", dir, err)
	}
	var newest string
	var newestMod int64
	for _, e := range matches {
		name := e.Name()
		if e.IsDir() || len(name) < 13 || name[:7] != "corpus-" || name[len(name)-6:] != ".jsonl" {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if mod := info.ModTime().UnixNano(); newest == "" || mod > newestMod {
			newest = dir + "/" + name
			newestMod = mod
		}
	}
	if newest == "" {
		return "", fmt.Errorf("no corpus-*.jsonl files in %s; run mage harvest first", dir)
	}
	return newest, nil
}
