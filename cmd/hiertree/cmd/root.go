// Package cmd implements the hiertree CLI, a cobra tree of subcommands
// mirroring cmd/goarchive/cmd/{root,plan,validate,version}.go: persistent
// config/log flags, a plan visualizer, a definitions validator, and (in
// place of goarchive's archive/dryrun/purge mutation commands, which have
// no equivalent here since the hierarchy engine never mutates its data
// source) nodes/keys commands that stream getNodes/getNodeInstanceKeys.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// Version information (set via ldflags at build time).
var (
	Version = "0.0.1-dev"
	Commit  = "unknown"
)

// Persistent flags overriding the loaded engine config.
var (
	cfgFile         string
	definitionsFile string
	logLevel        string
	logFormat       string
	rowLimit        int
)

var rootCmd = &cobra.Command{
	Use:   "hiertree",
	Short: "Hierarchy engine inspector and definitions tool",
	Long: `hiertree drives the hierarchy engine from the command line: it
validates a hierarchy-definitions document, renders its level-definition
tree, and streams getNodes/getNodeInstanceKeys output for a given parent
against a live MySQL-backed data source.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "hiertree.yaml",
		"Path to the engine configuration file")
	rootCmd.PersistentFlags().StringVarP(&definitionsFile, "definitions", "d", "",
		"Path to the hierarchy-definitions file (overrides config value)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Override log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "",
		"Override log format (json, text)")
	rootCmd.PersistentFlags().IntVar(&rowLimit, "row-limit", 0,
		"Override the default per-hierarchy-level row limit")
}

// GetConfigFile returns the configured engine config path.
func GetConfigFile() string { return cfgFile }

// CLIOverrides carries flag values that override config file settings.
type CLIOverrides struct {
	LogLevel  string
	LogFormat string
	RowLimit  int
}

// GetCLIOverrides returns the current CLI flag override values.
func GetCLIOverrides() CLIOverrides {
	return CLIOverrides{LogLevel: logLevel, LogFormat: logFormat, RowLimit: rowLimit}
}

// resolveDefinitionsPath returns the --definitions override if set,
// otherwise falls back to the loaded config's own definitions path.
func resolveDefinitionsPath(configured string) string {
	if definitionsFile != "" {
		return definitionsFile
	}
	return configured
}
