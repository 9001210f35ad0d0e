// Copyright 2025 The WordServe Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the word history server and CLI [DBG] application.

Note: This is a BETA release. APIs and functionality may rapidly change.

WordHist remembers the words it sees and completes prefixes from them, most
used first and most recently used first among equals. Nothing is written to
disk; the history lives for the lifetime of the process and can be seeded from
plain text files at startup.

# Usage

Start the server with default settings:

	wordhist

Seed from shell history and enable debug mode:

	wordhist -seed ~/.bash_history,notes.txt -d

Run in CLI mode for interactive testing:

	wordhist -c -limit 5

In CLI mode every line typed is recorded. A line starting with the completion
trigger ("?" by default) prints the completions of the rest of the line
instead:

	the cat sat on the car
	?ca

# Configuration

Runtime configuration is managed through a TOML file, created with defaults in
the user config dir when missing:

	[history]
	case_sensitive = false
	min_word_len = 2
	max_word_len = 64
	seed_files = []

	[server]
	default_limit = 10
	max_limit = 64
	min_prefix = 1
	max_prefix = 60
	cache_size = 256

	[cli]
	default_limit = 10
	complete_trigger = "?"

# IPC Protocol

The server communicates via MessagePack over stdin/stdout, see package server:

	{"id": "r1", "a": "record", "line": "the cat sat"}
	{"id": "c1", "a": "complete", "p": "ca", "l": 5}

# Command Line Flags

	-version
	    Show current version
	-d  Enable debug mode with detailed logging
	-c  Run in CLI mode instead of server mode
	-config string
	    Path to a custom config file
	-case
	    Keep words that differ in case apart
	-seed string
	    Comma separated seed files, added to the ones in config
	-limit int
	    Number of suggestions to show in CLI mode
	-rebuild
	    Overwrite the config file (-config or default) with defaults and exit
*/
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/bastiangx/wordhist/internal/cli"
	"github.com/bastiangx/wordhist/internal/logger"
	"github.com/bastiangx/wordhist/internal/utils"
	"github.com/bastiangx/wordhist/pkg/config"
	"github.com/bastiangx/wordhist/pkg/dictionary"
	"github.com/bastiangx/wordhist/pkg/history"
	"github.com/bastiangx/wordhist/pkg/server"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

const (
	Version = "0.1.0-beta"
	AppName = "wordhist"
	gh      = "https://github.com/bastiangx/wordhist"
)

// sigHandler is a simple handler for OS signals to exit normally.
func sigHandler() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		os.Exit(0)
	}()
}

// main wires config, the history index and the chosen front end.
// main() does not implement logic for them and only manages the flow.
func main() {
	sigHandler()

	showVersion := flag.Bool("version", false, "Show current version")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	cliMode := flag.Bool("c", false, "Run CLI -- useful for testing and debugging")
	configFile := flag.String("config", "", "Path to a custom config file")
	caseSensitive := flag.Bool("case", false, "Keep words that differ in case apart (overrides config)")
	seedList := flag.String("seed", "", "Comma separated list of text files to seed the history from")
	limit := flag.Int("limit", 0, "Number of suggestions to show in CLI mode (default from config)")
	rebuildConfig := flag.Bool("rebuild", false, "Rebuild the config file with defaults and exit")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	if *debugMode {
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
	} else {
		log.SetLevel(log.WarnLevel)
	}

	if *rebuildConfig {
		path, err := config.RebuildConfigWithPriority(*configFile)
		if err != nil {
			log.Fatalf("Failed to rebuild config: %v", err)
		}
		fmt.Fprintf(os.Stderr, "Config rebuilt at %s\n", path)
		os.Exit(0)
	}

	appConfig, configPath, err := config.LoadConfigWithPriority(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Debugf("Using config file: (%s)", config.GetActiveConfigPath(configPath))

	if *caseSensitive {
		appConfig.History.CaseSensitive = true
	}
	appConfig.CLI.DefaultLimit = utils.ClampLimit(*limit, appConfig.CLI.DefaultLimit, 0)

	index := history.New(appConfig.History.CaseSensitive)
	filter := appConfig.History.WordFilter()
	seedHistory(index, filter, seedPaths(appConfig.History.SeedFiles, *seedList))

	// CLI would be mainly used for testing and dbg purposes.
	if *cliMode {
		log.SetReportTimestamp(false)
		log.Debug("Input info:",
			"limit", appConfig.CLI.DefaultLimit,
			"trigger", appConfig.CLI.CompleteTrigger,
			"caseSensitive", appConfig.History.CaseSensitive)

		inputHandler := cli.NewInputHandler(index, filter, appConfig.CLI.CompleteTrigger, appConfig.CLI.DefaultLimit)
		if err := inputHandler.Start(); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
		return
	}

	log.Debug("spawning IPC")
	srv, err := server.NewServer(index, filter, appConfig.Server)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	showStartupInfo(index)

	if err := srv.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// seedPaths merges config and flag seed files, resolving relative paths.
// Files that cannot be found are dropped with a warning.
func seedPaths(fromConfig []string, fromFlag string) []string {
	candidates := append([]string{}, fromConfig...)
	for _, p := range strings.Split(fromFlag, ",") {
		if p = strings.TrimSpace(p); p != "" {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	pathResolver, err := utils.NewPathResolver()
	if err != nil {
		log.Warnf("Failed to initialize path resolver: %v", err)
		return candidates
	}

	paths := make([]string, 0, len(candidates))
	for _, p := range candidates {
		resolved, err := pathResolver.ResolveSeedPath(expandHome(p))
		if err != nil {
			log.Warnf("Seed file not found: %s", p)
			continue
		}
		paths = append(paths, resolved)
	}
	return paths
}

// expandHome replaces a leading ~ with the home dir.
func expandHome(path string) string {
	rest, ok := strings.CutPrefix(path, "~")
	if !ok || (rest != "" && !strings.HasPrefix(rest, "/")) {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return home + rest
}

func seedHistory(index *history.Index, filter utils.WordFilter, paths []string) {
	if len(paths) == 0 {
		return
	}
	stats, err := dictionary.LoadFiles(paths, index, filter.Accept)
	if err != nil {
		log.Warnf("Some seed files failed to load: %v", err)
	}
	log.Debug("Seeded history",
		"files", stats.Files,
		"lines", utils.FormatWithCommas(stats.Lines),
		"words", utils.FormatWithCommas(stats.Words),
		"distinct", utils.FormatWithCommas(index.Len()))
}

func printVersion() {
	banner := logger.NewWithConfig("", log.InfoLevel, false, false, log.TextFormatter)

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"}).
		Background(lipgloss.AdaptiveColor{Light: "#f2e9e1", Dark: "#26233a"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	banner.SetStyles(styles)

	banner.Print("")
	banner.Print("[ WordHist ] Remembers your words and completes them!")
	banner.Print("", "version", Version)
	banner.Print("")
	banner.Print("use -h or --help to see available options")
	banner.Print("Github Repo", "gh", gh)
}

// showStartupInfo displays some basic info about the init process on stderr.
func showStartupInfo(index *history.Index) {
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)

	println("===========")
	println(" WordHist  ")
	println("===========")
	log.Infof("Version: %s", Version)
	log.Infof("Process ID: [ %d ]", os.Getpid())
	log.Infof("words: %s", utils.FormatWithCommas(index.Len()))
	log.Info("status: ready")
	println("===========")
	println("Press Ctrl+C to exit")

	log.SetLevel(currentLevel)
}
