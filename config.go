package nbt

import "github.com/stewi1014/nbt/encode"

// Config defines configuration for Encoders and Decoders.
// A nil *Config, and nil fields, take default values.
type Config struct {
	// Source generates the Encodables used for each type.
	// If nil, each Encoder and Decoder gets its own encode.NewDefaultSource().
	// Sources are not safe for concurrent use, so a Source given here must not be shared by Encoders or Decoders used concurrently.
	Source encode.Source

	// DisallowUnknownFields makes decoding into a struct fail when the Compound has a field the struct doesn't.
	// By default such fields are skipped.
	DisallowUnknownFields bool
}

func (c *Config) copyAndFill() *Config {
	config := new(Config)
	if c != nil {
		*config = *c
	}

	if config.Source == nil {
		config.Source = encode.NewDefaultSource()
	}

	return config
}
