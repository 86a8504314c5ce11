// Package region reads and writes Anvil region files, the .mca files Minecraft stores chunks in.
//
// A region holds 32x32 chunks. The file starts with two 4KB tables; the location of each chunk,
// as an offset and count of 4KB sectors, and the time each chunk was last written.
// Each chunk is stored as its length, a compression.Type and the compressed NBT data.
package region

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/stewi1014/nbt"
	"github.com/stewi1014/nbt/compression"
	"github.com/stewi1014/nbt/encio"
)

const (
	// SectorSize is the unit space in a region file is allocated in.
	SectorSize = 4096
	// MaxSectors is the most sectors a single chunk can occupy.
	MaxSectors = 255
	// Width is the number of chunks along each side of a region.
	Width = 32

	chunks       = Width * Width
	headerSize   = 2 * SectorSize
	headerSector = headerSize / SectorSize
	chunkHeader  = 5

	externalFlag = 0x80
)

var (
	// ErrNoChunk is returned when reading a chunk that hasn't been written.
	ErrNoChunk = errors.New("chunk not present")
	// ErrExternalChunk is returned when reading a chunk stored in a separate .mcc file.
	ErrExternalChunk = errors.New("chunk stored in external file")
	// ErrChunkTooLarge is returned when writing a chunk that needs more than MaxSectors sectors.
	ErrChunkTooLarge = errors.New("chunk too large")
)

// File is the storage of a region. *os.File implements it.
type File interface {
	io.ReaderAt
	io.WriterAt
	io.Closer
}

// Pos is the position of a chunk within its region, each coordinate in [0, Width).
type Pos struct {
	X, Z int
}

func index(x, z int) int {
	return (x & (Width - 1)) + (z&(Width-1))*Width
}

// FileName returns the name of the region file holding the chunk at chunk coordinates x, z.
func FileName(x, z int) string {
	return fmt.Sprintf("r.%d.%d.mca", x>>5, z>>5)
}

// Open opens the region file at path, creating it if it doesn't exist.
func Open(path string) (*Region, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, err
	}

	r, err := New(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return r, nil
}

// New returns a Region stored in f. An empty f is given empty tables.
func New(f File) (*Region, error) {
	r := &Region{
		Compression: compression.Zlib,
		f:           f,
		now:         time.Now,
	}

	header := make([]byte, headerSize)
	n, err := f.ReadAt(header, 0)
	switch {
	case n == 0 && errors.Is(err, io.EOF):
		if _, err := f.WriteAt(header, 0); err != nil {
			return nil, err
		}
	case n < headerSize && err != nil:
		return nil, encio.NewIOError(encio.ErrMalformed, fmt.Sprintf("region header of %v bytes: %v", n, err))
	}

	for i := 0; i < chunks; i++ {
		r.locations[i] = encio.DecodeUint32(header[i*4:])
		r.timestamps[i] = encio.DecodeUint32(header[SectorSize+i*4:])
	}

	r.used = make([]bool, headerSector)
	for i := range r.used {
		r.used[i] = true
	}

	for i, loc := range r.locations {
		if loc == 0 {
			continue
		}

		offset, count := int(loc>>8), int(loc&0xff)
		if offset < headerSector || count == 0 {
			encio.Warnings.Warn().Int("chunk", i).Int("offset", offset).Int("sectors", count).Msg("ignoring invalid chunk location")
			r.locations[i] = 0
			continue
		}
		r.mark(offset, count, true)
	}

	return r, nil
}

// Region is a region file.
// It is safe for concurrent use.
type Region struct {
	// Compression is the compression chunks are written with.
	// It defaults to compression.Zlib, and must not be changed while chunks are being written.
	Compression compression.Type

	mutex      sync.Mutex
	f          File
	locations  [chunks]uint32
	timestamps [chunks]uint32
	used       []bool
	now        func() time.Time
}

func (r *Region) mark(offset, count int, used bool) {
	for len(r.used) < offset+count {
		r.used = append(r.used, false)
	}
	for i := offset; i < offset+count; i++ {
		r.used[i] = used
	}
}

// allocate returns the offset of the first run of count free sectors,
// or the end of the file if there is none.
func (r *Region) allocate(count int) int {
	run := 0
	for i, used := range r.used {
		if used {
			run = 0
			continue
		}
		run++
		if run == count {
			return i - count + 1
		}
	}
	return len(r.used) - run
}

// HasChunk returns true if the chunk at x, z has been written.
// Coordinates are taken modulo Width, so either region local or world chunk coordinates can be given.
func (r *Region) HasChunk(x, z int) bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.locations[index(x, z)] != 0
}

// Chunks returns the positions of the chunks in the region.
func (r *Region) Chunks() []Pos {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	var pos []Pos
	for i, loc := range r.locations {
		if loc != 0 {
			pos = append(pos, Pos{X: i % Width, Z: i / Width})
		}
	}
	return pos
}

// Timestamp returns the time the chunk at x, z was last written.
func (r *Region) Timestamp(x, z int) time.Time {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return time.Unix(int64(r.timestamps[index(x, z)]), 0)
}

// ReadChunk returns the decompressed NBT data of the chunk at x, z.
func (r *Region) ReadChunk(x, z int) ([]byte, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	i := index(x, z)
	loc := r.locations[i]
	if loc == 0 {
		return nil, ErrNoChunk
	}
	offset, count := int64(loc>>8), int(loc&0xff)

	head := make([]byte, chunkHeader)
	if _, err := r.f.ReadAt(head, offset*SectorSize); err != nil {
		return nil, encio.NewIOError(err, fmt.Sprintf("reading chunk %v, %v", x, z))
	}

	length := int(encio.DecodeUint32(head))
	ctype := head[4]
	if ctype&externalFlag != 0 {
		return nil, ErrExternalChunk
	}
	if length < 1 || length+4 > count*SectorSize {
		return nil, encio.NewIOError(encio.ErrMalformed, fmt.Sprintf("chunk %v, %v of %v bytes in %v sectors", x, z, length, count))
	}

	data := encio.GetBuffer(length - 1)
	defer encio.PutBuffer(data)
	if _, err := r.f.ReadAt(data, offset*SectorSize+chunkHeader); err != nil {
		return nil, encio.NewIOError(err, fmt.Sprintf("reading chunk %v, %v", x, z))
	}

	return compression.Decompress(data, compression.Type(ctype))
}

// WriteChunk compresses data with r.Compression and stores it as the chunk at x, z.
//
// The chunk is written to free sectors before its location is updated, and its old sectors are only freed after,
// so a failed write leaves the previous chunk readable.
func (r *Region) WriteChunk(x, z int, data []byte) error {
	ct := r.Compression
	compressed, err := compression.Compress(data, ct)
	if err != nil {
		return err
	}

	count := (len(compressed) + chunkHeader + SectorSize - 1) / SectorSize
	if count > MaxSectors {
		return fmt.Errorf("%w: %v sectors", ErrChunkTooLarge, count)
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	i := index(x, z)
	old := r.locations[i]

	offset := r.allocate(count)
	r.mark(offset, count, true)

	buff := make([]byte, count*SectorSize)
	encio.EncodeUint32(buff, uint32(len(compressed)+1))
	buff[4] = byte(ct)
	copy(buff[chunkHeader:], compressed)
	if _, err := r.f.WriteAt(buff, int64(offset)*SectorSize); err != nil {
		r.mark(offset, count, false)
		return err
	}

	if err := r.setLocation(i, uint32(offset)<<8|uint32(count)); err != nil {
		r.mark(offset, count, false)
		return err
	}
	if old != 0 {
		r.mark(int(old>>8), int(old&0xff), false)
	}

	return r.setTimestamp(i, uint32(r.now().Unix()))
}

// DeleteChunk removes the chunk at x, z, freeing its sectors.
func (r *Region) DeleteChunk(x, z int) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	i := index(x, z)
	loc := r.locations[i]
	if loc == 0 {
		return ErrNoChunk
	}

	if err := r.setLocation(i, 0); err != nil {
		return err
	}
	r.mark(int(loc>>8), int(loc&0xff), false)
	return r.setTimestamp(i, 0)
}

// setLocation writes the location table entry i, then updates it in memory.
func (r *Region) setLocation(i int, loc uint32) error {
	b := make([]byte, 4)
	encio.EncodeUint32(b, loc)
	if _, err := r.f.WriteAt(b, int64(i*4)); err != nil {
		return err
	}
	r.locations[i] = loc
	return nil
}

func (r *Region) setTimestamp(i int, timestamp uint32) error {
	b := make([]byte, 4)
	encio.EncodeUint32(b, timestamp)
	if _, err := r.f.WriteAt(b, int64(SectorSize+i*4)); err != nil {
		return err
	}
	r.timestamps[i] = timestamp
	return nil
}

// DecodeChunk decodes the chunk at x, z into the value pointed to by v.
func (r *Region) DecodeChunk(x, z int, v interface{}) error {
	data, err := r.ReadChunk(x, z)
	if err != nil {
		return err
	}
	return nbt.Unmarshal(data, v)
}

// EncodeChunk encodes v as the chunk at x, z. Chunks are written with an empty root name.
func (r *Region) EncodeChunk(x, z int, v interface{}) error {
	data, err := nbt.Marshal("", v)
	if err != nil {
		return err
	}
	return r.WriteChunk(x, z, data)
}

// Close closes the underlying File.
func (r *Region) Close() error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.f.Close()
}
