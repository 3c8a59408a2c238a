package main

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/pdewey/merge-assistant/internal/diagnostics"
	"github.com/pdewey/merge-assistant/internal/markers"
	"github.com/pdewey/merge-assistant/internal/server"
)

var version = "dev"

var (
	verbose int
	logFile string
)

var rootCmd = &cobra.Command{
	Use:     "merge-assistant",
	Short:   "Language server for resolving merge conflicts",
	Long:    "merge-assistant speaks LSP over stdio, flags merge conflict markers as diagnostics and offers quick fixes to resolve them.",
	Version: versionString(),
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		configureLogging()
		return server.New(versionString()).RunStdio(verbose > 1)
	},
}

var scanCmd = &cobra.Command{
	Use:   "scan <file>",
	Short: "Print the merge conflicts found in a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		configureLogging()
		text, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		printConflicts(cmd.OutOrStdout(), markers.Scan(string(text)))
		return nil
	},
}

func main() {
	rootCmd.AddCommand(scanCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&verbose, "verbose", "v", "increase log verbosity")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "write logs to a file instead of stderr")
}

// configureLogging keeps logs off stdout, which carries the protocol.
func configureLogging() {
	var path *string
	if logFile != "" {
		path = &logFile
	}
	commonlog.Configure(verbose, path)
}

func printConflicts(w io.Writer, conflicts []markers.Conflict) {
	for _, conflict := range conflicts {
		fmt.Fprintln(w, "{")
		printRegion(w, conflict.Ours, "ours")
		printRegion(w, conflict.Theirs, "theirs")
		if conflict.Ancestor != nil {
			printRegion(w, *conflict.Ancestor, "ancestor")
		}
		r := diagnostics.Range(conflict)
		fmt.Fprintf(w, "  %d:%d %d:%d\n", r.Start.Line, r.Start.Character, r.End.Line, r.End.Character)
		fmt.Fprintln(w, "}")
	}
}

func printRegion(w io.Writer, region markers.Region, role string) {
	label := region.Name
	if label == "" {
		label = role
	}
	fmt.Fprintf(w, "  %s: %d %d\n", label, region.StartLine, region.EndLine)
}

func versionString() string {
	if version != "dev" {
		return version
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return version
	}
	if info.Main.Version == "" || info.Main.Version == "(devel)" {
		return version
	}
	return info.Main.Version
}
