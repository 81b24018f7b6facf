// Package source loads DA bundles from disk.
package source

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/edsrzf/mmap-go"
	"github.com/golang/glog"
	"github.com/ulikunitz/xz"
)

var xzMagic = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}

// Source is the raw content of a bundle file. Plain files are mapped
// read-only, xz compressed ones are decompressed into memory.
type Source struct {
	Path string

	m    mmap.MMap
	data []byte
}

// Open a bundle file. The caller must call Close once done with Bytes and
// anything parsed from it.
func Open(path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open: %w", err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("could not stat: %w", err)
	}
	s := &Source{Path: path}
	if st.Size() == 0 {
		// Zero-length mappings are not a thing.
		s.data = []byte{}
		return s, nil
	}

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("could not map: %w", err)
	}

	if !bytes.HasPrefix(m, xzMagic) {
		glog.V(1).Infof("Mapped %s, %d bytes", path, len(m))
		s.m = m
		s.data = m
		return s, nil
	}

	defer m.Unmap()
	data, err := decompress(m)
	if err != nil {
		return nil, err
	}
	glog.Infof("Decompressed %s: %d -> %d bytes", path, len(m), len(data))
	s.data = data
	return s, nil
}

func decompress(compressed []byte) ([]byte, error) {
	r, err := xz.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("could not read xz stream: %w", err)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("could not decompress: %w", err)
	}
	return data, nil
}

// Bytes returns the bundle content. It must not be modified, and is not valid
// after Close.
func (s *Source) Bytes() []byte {
	return s.data
}

func (s *Source) Close() error {
	s.data = nil
	if s.m == nil {
		return nil
	}
	m := s.m
	s.m = nil
	if err := m.Unmap(); err != nil {
		return fmt.Errorf("could not unmap %s: %w", s.Path, err)
	}
	return nil
}
