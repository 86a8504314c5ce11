package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/stewi1014/nbt/compression"
	"github.com/stewi1014/nbt/tree"
)

// compressionFlag is a compression.Type, or auto detection when zero.
type compressionFlag struct {
	t compression.Type
}

// String implements pflag.Value.
func (c *compressionFlag) String() string {
	if c.t == 0 {
		return "auto"
	}
	return c.t.String()
}

// Set implements pflag.Value.
func (c *compressionFlag) Set(s string) error {
	if s == "auto" {
		c.t = 0
		return nil
	}
	return c.t.Set(s)
}

// Type implements pflag.Value.
func (c *compressionFlag) Type() string { return "compression" }

func newDumpCommand(flags *globalFlags, log *zerolog.Logger) *cobra.Command {
	comp := new(compressionFlag)

	cmd := &cobra.Command{
		Use:   "dump FILE",
		Short: "Print an NBT file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			br := bufio.NewReader(f)
			t := comp.t
			if t == 0 {
				if t, err = compression.Detect(br); err != nil {
					return fmt.Errorf("%v: %w", args[0], err)
				}
			}
			log.Debug().Str("file", args[0]).Stringer("compression", t).Msg("reading")

			r, err := compression.NewReader(br, t)
			if err != nil {
				return fmt.Errorf("%v: %w", args[0], err)
			}
			defer r.Close()

			name, v, err := tree.Read(r)
			if err != nil {
				return fmt.Errorf("%v: %w", args[0], err)
			}
			log.Debug().Str("name", name).Stringer("tag", v.Tag()).Msg("read root")

			return write(cmd.OutOrStdout(), v, flags.format)
		},
	}

	cmd.Flags().VarP(comp, "compression", "c", "compression: auto|none|gzip|zlib|lz4")
	return cmd
}
