// Command nbt prints NBT files and the chunks of region files in readable formats.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stewi1014/nbt/encio"
)

type globalFlags struct {
	verbose bool
	format  format
}

func (g *globalFlags) register(fs *pflag.FlagSet) {
	fs.BoolVarP(&g.verbose, "verbose", "v", false, "log debug output")
	fs.VarP(&g.format, "format", "f", "output format: snbt|json|yaml|cbor")
}

func newLogger(w io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w}).With().Timestamp().Logger().Level(level)
}

func newRootCommand() *cobra.Command {
	flags := &globalFlags{format: formatSNBT}
	log := zerolog.Nop()

	root := &cobra.Command{
		Use:           "nbt",
		Short:         "Read NBT files",
		Long:          "nbt prints Minecraft NBT files, and the chunks of Anvil region files, as SNBT, JSON, YAML or CBOR.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log = newLogger(cmd.ErrOrStderr(), flags.verbose)
			encio.Warnings = log.With().Str("pkg", "nbt").Logger()
		},
	}

	flags.register(root.PersistentFlags())

	root.AddCommand(newDumpCommand(flags, &log))
	root.AddCommand(newRegionCommand(flags, &log))
	return root
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
