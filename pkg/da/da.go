// Package da implements parsing of MediaTek 'download agent' bundle files.
//
// A DA bundle carries, for every supported SoC (identified by its hw code), a
// pair of boot stage binaries: DA1, which is loaded by the BootROM or
// preloader into SRAM, and DA2, which DA1 then loads into DRAM. Each stage may
// be followed by a signature that the previous stage checks.
//
// There is no public spec for this format. The layout here matches what the
// vendor flash tools ship, and is kept behind the Layout type so that other
// revisions can be described without touching the parser.
package da

import (
	"errors"
	"fmt"
)

var (
	// ErrTruncatedInput is returned when the buffer ends before a structure
	// that must be read.
	ErrTruncatedInput = errors.New("truncated input")
	// ErrOutOfBounds is returned when an offset/length pair points outside
	// of the buffer or into the bundle's own tables.
	ErrOutOfBounds = errors.New("out of bounds")
	// ErrInvalidSignatureLength is returned when a region declares a longer
	// signature than it has data.
	ErrInvalidSignatureLength = errors.New("invalid signature length")
	// ErrUnknownVariant is returned for bundles whose identifier does not
	// map to a known record encoding.
	ErrUnknownVariant = errors.New("unknown DA variant")
	// ErrInvalidMagic is returned when the file, its header or one of its
	// entry records does not carry the expected magic value.
	ErrInvalidMagic = errors.New("invalid magic")
)

// Type is the record encoding used by a bundle. Legacy bundles have shorter
// entry records than V5 and V6 ones.
type Type int

const (
	TypeLegacy Type = iota + 1
	TypeV5
	TypeV6
)

func (t Type) String() string {
	switch t {
	case TypeLegacy:
		return "Legacy"
	case TypeV5:
		return "V5 (XFlash)"
	case TypeV6:
		return "V6 (XML)"
	}
	return "UNKNOWN"
}

// Bundle is a parsed DA file. These should only be constructed by calling
// Parse or ParseWithLayout, and are not modified afterwards.
type Bundle struct {
	// Identifier from the header, eg. MTK_AllInOne_DA_v3.
	Identifier string
	Version    uint32
	Type       Type

	// Entries in on-disk order.
	Entries []*Entry
}

// Entry is the DA for a single SoC.
type Entry struct {
	HWCode    uint16
	HWSubCode uint16
	HWVersion uint16
	SWVersion uint16
	// PageSize is not present in legacy records, and is zero there.
	PageSize uint16
	Type     Type

	// Stage1 is DA1, Stage2 is DA2.
	Stage1 Region
	Stage2 Region
}

func (e *Entry) String() string {
	return fmt.Sprintf("hw code %#x (sub %#x, hw %#x, sw %#x)", e.HWCode, e.HWSubCode, e.HWVersion, e.SWVersion)
}
