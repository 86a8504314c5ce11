package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
	"github.com/stewi1014/nbt/tree"
	"gopkg.in/yaml.v3"
)

type format string

const (
	formatSNBT format = "snbt"
	formatJSON format = "json"
	formatYAML format = "yaml"
	formatCBOR format = "cbor"
)

// String implements pflag.Value.
func (f *format) String() string { return string(*f) }

// Set implements pflag.Value.
func (f *format) Set(s string) error {
	switch format(s) {
	case formatSNBT, formatJSON, formatYAML, formatCBOR:
		*f = format(s)
		return nil
	}
	return fmt.Errorf("unknown format %q", s)
}

// Type implements pflag.Value.
func (f *format) Type() string { return "format" }

var cborMode cbor.EncMode

func init() {
	var err error
	cborMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("nbt: CBOR encoder initialization failed: " + err.Error())
	}
}

// write prints v to w in format f.
// Formats other than SNBT go through tree.Native, so lose the distinction between number tags.
func write(w io.Writer, v tree.Value, f format) error {
	switch f {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(tree.Native(v))
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(tree.Native(v)); err != nil {
			return err
		}
		return enc.Close()
	case formatCBOR:
		data, err := cborMode.Marshal(tree.Native(v))
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	default:
		_, err := fmt.Fprintln(w, tree.SNBT(v))
		return err
	}
}
