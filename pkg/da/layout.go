package da

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// regionDescSize is the size of a region descriptor: offset, length, load
// address, start offset and signature length, all uint32.
const regionDescSize = 5 * 4

// Layout describes the binary layout of a DA bundle: where the header fields
// live, how identifiers map to record encodings, and how each record encoding
// is laid out.
type Layout struct {
	Name      string
	ByteOrder binary.ByteOrder

	// HeaderSize is the size of the fixed header. The entry table starts
	// right after it.
	HeaderSize int
	// MagicText must be at the very start of the file.
	MagicText         string
	IdentifierOffset  int
	IdentifierSize    int
	VersionOffset     int
	HeaderMagicOffset int
	HeaderMagic       uint32
	CountOffset       int

	// Variants are matched in order against the start of the identifier.
	Variants []Variant
	Records  map[Type]RecordLayout
}

type Variant struct {
	Prefix string
	Type   Type
}

// RecordLayout describes one entry record encoding. All Offset fields are
// relative to the start of the record and point at uint16 values.
type RecordLayout struct {
	Size  int
	Magic uint16

	MagicOffset     int
	HWCodeOffset    int
	HWSubCodeOffset int
	HWVersionOffset int
	SWVersionOffset int
	// PageSizeOffset is negative if the record has no page size field.
	PageSizeOffset    int
	RegionCountOffset int

	RegionTableOffset int
	RegionSlots       int
	// Stage1Slot and Stage2Slot are indices into the region table.
	Stage1Slot int
	Stage2Slot int
}

var legacyRecord = RecordLayout{
	Size:              0xd8,
	Magic:             0xdada,
	MagicOffset:       0x0,
	HWCodeOffset:      0x2,
	HWSubCodeOffset:   0x4,
	HWVersionOffset:   0x6,
	SWVersionOffset:   0x8,
	PageSizeOffset:    -1,
	RegionCountOffset: 0xe,
	RegionTableOffset: 0x10,
	RegionSlots:       10,
	Stage1Slot:        1,
	Stage2Slot:        2,
}

var xflashRecord = RecordLayout{
	Size:              0xdc,
	Magic:             0xdada,
	MagicOffset:       0x0,
	HWCodeOffset:      0x2,
	HWSubCodeOffset:   0x4,
	HWVersionOffset:   0x6,
	SWVersionOffset:   0x8,
	PageSizeOffset:    0xc,
	RegionCountOffset: 0x12,
	RegionTableOffset: 0x14,
	RegionSlots:       10,
	Stage1Slot:        1,
	Stage2Slot:        2,
}

// DefaultLayout returns the layout of the DA files shipped with SP Flash Tool
// and friends, covering legacy, XFlash (V5) and XML (V6) agents. Every call
// returns a fresh copy that the caller is free to modify.
func DefaultLayout() *Layout {
	return &Layout{
		Name:              "mtk-da",
		ByteOrder:         binary.LittleEndian,
		HeaderSize:        0x6c,
		MagicText:         "MTK_DOWNLOAD_AGENT",
		IdentifierOffset:  0x20,
		IdentifierSize:    0x40,
		VersionOffset:     0x60,
		HeaderMagicOffset: 0x64,
		HeaderMagic:       0x22668899,
		CountOffset:       0x68,
		Variants: []Variant{
			{Prefix: "MTK_AllInOne_DA_v3", Type: TypeLegacy},
			{Prefix: "MTK_DA_v6", Type: TypeV6},
			{Prefix: "MTK_AllInOne_DA", Type: TypeV5},
		},
		Records: map[Type]RecordLayout{
			TypeLegacy: legacyRecord,
			TypeV5:     xflashRecord,
			TypeV6:     xflashRecord,
		},
	}
}

func (l *Layout) variantFor(ident string) (Type, bool) {
	for _, v := range l.Variants {
		if strings.HasPrefix(ident, v.Prefix) {
			return v.Type, true
		}
	}
	return 0, false
}

func (l *Layout) check() error {
	if l.HeaderSize <= 0 {
		return fmt.Errorf("header size %d", l.HeaderSize)
	}
	if l.ByteOrder == nil {
		return fmt.Errorf("no byte order")
	}
	if len(l.MagicText) > l.HeaderSize {
		return fmt.Errorf("magic text does not fit in header")
	}
	if l.IdentifierOffset < 0 || l.IdentifierSize < 0 || l.IdentifierOffset+l.IdentifierSize > l.HeaderSize {
		return fmt.Errorf("identifier does not fit in header")
	}
	for _, off := range []int{l.VersionOffset, l.HeaderMagicOffset, l.CountOffset} {
		if off < 0 || off+4 > l.HeaderSize {
			return fmt.Errorf("header field at %#x does not fit in header", off)
		}
	}
	for _, v := range l.Variants {
		rl, ok := l.Records[v.Type]
		if !ok {
			return fmt.Errorf("no record layout for %s", v.Type)
		}
		if err := rl.check(); err != nil {
			return fmt.Errorf("%s record: %w", v.Type, err)
		}
	}
	return nil
}

func (rl *RecordLayout) check() error {
	if rl.Size <= 0 {
		return fmt.Errorf("record size %d", rl.Size)
	}
	if rl.RegionSlots < 0 {
		return fmt.Errorf("%d region slots", rl.RegionSlots)
	}
	if rl.RegionTableOffset < 0 || rl.RegionTableOffset+rl.RegionSlots*regionDescSize > rl.Size {
		return fmt.Errorf("region table does not fit in record")
	}
	offs := []int{rl.MagicOffset, rl.HWCodeOffset, rl.HWSubCodeOffset, rl.HWVersionOffset, rl.SWVersionOffset, rl.RegionCountOffset}
	if rl.PageSizeOffset >= 0 {
		offs = append(offs, rl.PageSizeOffset)
	}
	for _, off := range offs {
		if off < 0 || off+2 > rl.Size {
			return fmt.Errorf("field at %#x does not fit in record", off)
		}
	}
	for _, slot := range []int{rl.Stage1Slot, rl.Stage2Slot} {
		if slot < 0 || slot >= rl.RegionSlots {
			return fmt.Errorf("stage slot %d outside of region table", slot)
		}
	}
	return nil
}
