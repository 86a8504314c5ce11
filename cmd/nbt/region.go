package main

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/stewi1014/nbt/region"
	"github.com/stewi1014/nbt/tree"
)

func openRegion(path string) (*region.Region, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	r, err := region.New(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%v: %w", path, err)
	}
	return r, nil
}

func newRegionCommand(flags *globalFlags, log *zerolog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "region",
		Short: "Read Anvil region files",
	}

	list := &cobra.Command{
		Use:   "list FILE",
		Short: "List the chunks in a region file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRegion(args[0])
			if err != nil {
				return err
			}
			defer r.Close()

			chunks := r.Chunks()
			log.Debug().Str("file", args[0]).Int("chunks", len(chunks)).Msg("read region")

			for _, pos := range chunks {
				ts := r.Timestamp(pos.X, pos.Z).UTC().Format(time.RFC3339)
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%d\t%d\t%s\n", pos.X, pos.Z, ts); err != nil {
					return err
				}
			}
			return nil
		},
	}

	dump := &cobra.Command{
		Use:   "dump FILE X Z",
		Short: "Print a chunk of a region file",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("chunk x: %w", err)
			}
			z, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("chunk z: %w", err)
			}

			r, err := openRegion(args[0])
			if err != nil {
				return err
			}
			defer r.Close()

			data, err := r.ReadChunk(x, z)
			if err != nil {
				return fmt.Errorf("chunk %v, %v: %w", x, z, err)
			}
			log.Debug().Int("x", x).Int("z", z).Int("bytes", len(data)).Msg("read chunk")

			_, v, err := tree.Read(bytes.NewReader(data))
			if err != nil {
				return fmt.Errorf("chunk %v, %v: %w", x, z, err)
			}
			return write(cmd.OutOrStdout(), v, flags.format)
		},
	}

	cmd.AddCommand(list, dump)
	return cmd
}
