package encio

import (
	"os"

	"github.com/rs/zerolog"
)

// Warnings is where warnings are sent to.
// In many cases nbt will continue to operate with e.g. incorrectly implemented io.Readers or io.Writers, or odd but decodable data,
// however I don't want to silently put up with things that seem worrying.
//
// Replace it, or change its level, to redirect or silence warnings.
var Warnings = zerolog.New(os.Stderr).With().Timestamp().Str("pkg", "nbt").Logger().Level(zerolog.WarnLevel)
