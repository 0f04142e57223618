// Package fingerprint computes content digests for backup change detection.
//
// Digests are blake2b tree hashes: files are split into leaves hashed by a
// pool of workers, then a root hash is computed over the concatenated leaf
// digests. The digest of a file therefore only depends on its content and
// the leaf size.
package fingerprint

import (
	"io"
	"runtime"
	"sync"

	units "github.com/docker/go-units"
	blake2b "github.com/minio/blake2b-simd"
	"github.com/spf13/afero"
)

type chunkInput struct {
	part       int
	partBuffer []byte
	lastChunk  bool
	leafSize   uint32
}

type chunkOutput struct {
	digest []byte
	part   int
	err    error
}

type Option func(*Maker)

// LeafSize sets the tree leaf size in bytes
func LeafSize(sz int64) Option {
	return func(m *Maker) {
		m.leafSize = uint32(sz)
	}
}

// NumberOfWorkers sets the size of the leaf hashing pool
func NumberOfWorkers(no int) Option {
	return func(m *Maker) {
		m.numberOfWorkers = no
	}
}

// Size sets the digest size in bytes, at most 64
func Size(sz uint8) Option {
	return func(m *Maker) {
		m.size = sz
	}
}

// Fs sets the file system digested files are read from
func Fs(fs afero.Fs) Option {
	return func(m *Maker) {
		if fs != nil {
			m.fs = fs
		}
	}
}

func New(opts ...Option) *Maker {
	m := &Maker{
		leafSize:        uint32(5 * units.MB),
		numberOfWorkers: runtime.NumCPU(),
		size:            64,
		fs:              afero.NewOsFs(),
	}

	for _, apply := range opts {
		apply(m)
	}
	return m
}

type Maker struct {
	size            uint8
	leafSize        uint32
	numberOfWorkers int
	fs              afero.Fs
}

// Process computes the digest of the file at path.
func (m *Maker) Process(path string) ([]byte, error) {
	f, err := m.fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	return m.process(f, fi.Size())
}

func (m *Maker) process(r io.Reader, size int64) ([]byte, error) {
	var wg sync.WaitGroup
	chunks := make(chan chunkInput)
	results := make(chan chunkOutput)

	for i := 0; i < m.numberOfWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.processChunk(chunks, results)
		}()
	}

	readErrC := make(chan error, 1)
	go func() {
		defer close(chunks)
		for part, totalSize := 0, int64(0); ; part++ {
			partBuffer := make([]byte, m.leafSize)
			n, e := io.ReadFull(r, partBuffer)
			if n > 0 {
				totalSize += int64(n)
				chunks <- chunkInput{
					part:       part,
					partBuffer: partBuffer[:n],
					lastChunk:  e != nil || totalSize == size,
					leafSize:   m.leafSize,
				}
			}
			if e != nil {
				if e != io.EOF && e != io.ErrUnexpectedEOF {
					readErrC <- e
				}
				return
			}
			if totalSize == size {
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	// chunk count is unknown upfront, collect digests by part number
	digests := make(map[int][]byte)
	var workerErr error
	for out := range results {
		if out.err != nil {
			if workerErr == nil {
				workerErr = out.err
			}
			continue
		}
		digests[out.part] = out.digest
	}
	if workerErr != nil {
		return nil, workerErr
	}
	select {
	case e := <-readErrC:
		return nil, e
	default:
	}

	// concatenate leaf digests in part order
	sz := int(m.size)
	b := make([]byte, len(digests)*sz)
	for part, digest := range digests {
		copy(b[sz*part:sz*(part+1)], digest)
	}

	rootBlake, err := blake2b.New(&blake2b.Config{
		Size: m.size,
		Tree: &blake2b.Tree{
			Fanout:        0,
			MaxDepth:      2,
			LeafSize:      m.leafSize,
			NodeOffset:    0,
			NodeDepth:     1,
			InnerHashSize: m.size,
			IsLastNode:    true,
		},
	})
	if err != nil {
		return nil, err
	}
	if _, err = rootBlake.Write(b); err != nil {
		return nil, err
	}
	return rootBlake.Sum(nil), nil
}

// hash worker for tree leaves
func (m *Maker) processChunk(rx <-chan chunkInput, tx chan<- chunkOutput) {
	for c := range rx {
		blake, err := blake2b.New(&blake2b.Config{
			Size: m.size,
			Tree: &blake2b.Tree{
				Fanout:        0,
				MaxDepth:      2,
				LeafSize:      c.leafSize,
				NodeOffset:    uint64(c.part),
				NodeDepth:     0,
				InnerHashSize: m.size,
				IsLastNode:    c.lastChunk,
			},
		})
		if err != nil {
			tx <- chunkOutput{part: c.part, err: err}
			continue
		}
		if _, err = blake.Write(c.partBuffer); err != nil {
			tx <- chunkOutput{part: c.part, err: err}
			continue
		}
		tx <- chunkOutput{digest: blake.Sum(nil), part: c.part}
	}
}
