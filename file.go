package nbt

import (
	"bufio"
	"os"

	"github.com/stewi1014/nbt/compression"
)

// ReadFile decodes the value in the file at path into the value pointed to by v, and returns its name.
// The file's compression is detected from its first bytes.
func ReadFile(path string, v interface{}) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	br := bufio.NewReader(f)
	t, err := compression.Detect(br)
	if err != nil {
		return "", err
	}

	r, err := compression.NewReader(br, t)
	if err != nil {
		return "", err
	}
	defer r.Close()

	return NewDecoder(r, nil).Decode(v)
}

// WriteFile encodes v under name to the file at path, compressed with t.
// Minecraft expects compression.Gzip for level.dat and player data.
func WriteFile(path string, name string, v interface{}, t compression.Type) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(f)
	w, err := compression.NewWriter(bw, t)
	if err != nil {
		f.Close()
		return err
	}

	if err := NewEncoder(w, nil).Encode(name, v); err != nil {
		f.Close()
		return err
	}
	if err := w.Close(); err != nil {
		f.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
