package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/ironsheep/image-scopes-mcp/internal/config"
	"github.com/ironsheep/image-scopes-mcp/internal/scope"
	"github.com/ironsheep/image-scopes-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle version and help before flag parsing
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("image-scopes-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "help":
			usage()
			return
		}
	}

	configPath := flag.String("config", "", "Path to a JSON config file")
	var flags config.Flags
	flag.StringVar(&flags.DisplayProfile, "display-profile", "", "Working color space of the scopes")
	flag.StringVar(&flags.InputProfile, "input-profile", "", "Color space assumed for image files")
	flag.StringVar(&flags.Scope, "scope", "", "Initial scope: histogram, waveform or vectorscope")
	flag.StringVar(&flags.ExportDir, "export-dir", "", "Directory for exported scope images")
	flag.StringVar(&flags.LogLevel, "log-level", "", "debug, info, warn or error")
	flag.Usage = usage
	flag.Parse()

	var cfg config.Config
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
	if env := os.Getenv("IMAGE_SCOPES_LOG_LEVEL"); env != "" && flags.LogLevel == "" {
		flags.LogLevel = env
	}
	cfg.Resolve(flags)

	// Logs go to stderr; stdout carries the MCP protocol
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()}))
	scope.SetLogger(logger)
	server.Version = Version

	logger.Debug("starting image scopes server",
		"version", Version, "built", BuildTime, "commit", GitCommit,
		"display_profile", cfg.DisplayProfile, "input_profile", cfg.InputProfile)

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("image-scopes-mcp - MCP server for image histograms, waveforms and vectorscopes")
	fmt.Println()
	fmt.Println("Usage: image-scopes-mcp [options]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version, -v    Print version information")
	flag.CommandLine.SetOutput(os.Stdout)
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Println("  IMAGE_SCOPES_LOG_LEVEL=debug    Log level when -log-level is not given")
	fmt.Println()
	fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
	fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
}
