package da

import (
	"bytes"
	"fmt"

	"github.com/golang/glog"
)

// Parse a DA bundle using DefaultLayout(). The returned Bundle references raw,
// which must not be modified while the Bundle is in use.
func Parse(raw []byte) (*Bundle, error) {
	return ParseWithLayout(raw, DefaultLayout())
}

// ParseWithLayout parses a DA bundle laid out as described by l. Either the
// whole bundle is valid and returned, or the first problem found is returned
// as an error wrapping one of the Err* values of this package.
func ParseWithLayout(raw []byte, l *Layout) (*Bundle, error) {
	if l == nil {
		return nil, fmt.Errorf("no layout")
	}
	if err := l.check(); err != nil {
		return nil, fmt.Errorf("layout %q: %w", l.Name, err)
	}
	if len(raw) < l.HeaderSize {
		return nil, fmt.Errorf("%w: %d bytes, header is %d bytes", ErrTruncatedInput, len(raw), l.HeaderSize)
	}
	hdr := raw[:l.HeaderSize]
	bo := l.ByteOrder

	if !bytes.HasPrefix(hdr, []byte(l.MagicText)) {
		return nil, fmt.Errorf("%w: not a DA file", ErrInvalidMagic)
	}
	if m := bo.Uint32(hdr[l.HeaderMagicOffset:]); m != l.HeaderMagic {
		return nil, fmt.Errorf("%w: header magic %#x, wanted %#x", ErrInvalidMagic, m, l.HeaderMagic)
	}

	ident := cString(hdr[l.IdentifierOffset : l.IdentifierOffset+l.IdentifierSize])
	typ, ok := l.variantFor(ident)
	if !ok {
		return nil, fmt.Errorf("%w: identifier %q", ErrUnknownVariant, ident)
	}
	rl := l.Records[typ]

	count := bo.Uint32(hdr[l.CountOffset:])
	tableEnd := uint64(l.HeaderSize) + uint64(count)*uint64(rl.Size)
	if tableEnd > uint64(len(raw)) {
		return nil, fmt.Errorf("%w: %d entries need %d bytes, have %d", ErrTruncatedInput, count, tableEnd, len(raw))
	}
	glog.Infof("Parsing %s DA %q, %d entries", typ, ident, count)

	entries := make([]*Entry, 0, count)
	seen := make(map[uint16]int)
	for i := 0; i < int(count); i++ {
		start := l.HeaderSize + i*rl.Size
		p := &recordParser{
			raw:      raw,
			rec:      raw[start : start+rl.Size],
			layout:   l,
			rl:       &rl,
			tableEnd: tableEnd,
		}
		e, err := p.parse(typ)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		if prev, ok := seen[e.HWCode]; ok {
			glog.Warningf("Entry %d: hw code %#x repeats entry %d, extracting both will keep only the last", i, e.HWCode, prev)
		}
		seen[e.HWCode] = i
		glog.V(1).Infof("Entry %d: %s, DA1 %d bytes (sig %d), DA2 %d bytes (sig %d)", i, e, len(e.Stage1.data), e.Stage1.sigLen, len(e.Stage2.data), e.Stage2.sigLen)
		entries = append(entries, e)
	}

	return &Bundle{
		Identifier: ident,
		Version:    bo.Uint32(hdr[l.VersionOffset:]),
		Type:       typ,
		Entries:    entries,
	}, nil
}

type recordParser struct {
	raw    []byte
	rec    []byte
	layout *Layout
	rl     *RecordLayout
	// tableEnd is where the entry table ends. Region data must not live
	// before it.
	tableEnd uint64
}

func (p *recordParser) u16(off int) uint16 {
	return p.layout.ByteOrder.Uint16(p.rec[off:])
}

func (p *recordParser) u32(off int) uint32 {
	return p.layout.ByteOrder.Uint32(p.rec[off:])
}

func (p *recordParser) parse(typ Type) (*Entry, error) {
	rl := p.rl
	if m := p.u16(rl.MagicOffset); m != rl.Magic {
		return nil, fmt.Errorf("%w: record magic %#x, wanted %#x", ErrInvalidMagic, m, rl.Magic)
	}
	e := &Entry{
		HWCode:    p.u16(rl.HWCodeOffset),
		HWSubCode: p.u16(rl.HWSubCodeOffset),
		HWVersion: p.u16(rl.HWVersionOffset),
		SWVersion: p.u16(rl.SWVersionOffset),
		Type:      typ,
	}
	if rl.PageSizeOffset >= 0 {
		e.PageSize = p.u16(rl.PageSizeOffset)
	}

	regions := int(p.u16(rl.RegionCountOffset))
	if regions > rl.RegionSlots {
		return nil, fmt.Errorf("hw code %#x: %w: %d regions declared, table has %d", e.HWCode, ErrOutOfBounds, regions, rl.RegionSlots)
	}

	var err error
	if e.Stage1, err = p.region(regions, rl.Stage1Slot); err != nil {
		return nil, fmt.Errorf("hw code %#x: DA1: %w", e.HWCode, err)
	}
	if e.Stage2, err = p.region(regions, rl.Stage2Slot); err != nil {
		return nil, fmt.Errorf("hw code %#x: DA2: %w", e.HWCode, err)
	}
	return e, nil
}

func (p *recordParser) region(declared, slot int) (Region, error) {
	if slot >= declared {
		return Region{}, fmt.Errorf("%w: region %d not among %d declared", ErrOutOfBounds, slot, declared)
	}
	d := p.rl.RegionTableOffset + slot*regionDescSize
	offset := p.u32(d)
	length := p.u32(d + 4)
	loadAddr := p.u32(d + 8)
	startOffset := p.u32(d + 12)
	sigLen := p.u32(d + 16)

	end := uint64(offset) + uint64(length)
	if end > uint64(len(p.raw)) {
		return Region{}, fmt.Errorf("%w: %#x+%#x past end of file (%#x)", ErrOutOfBounds, offset, length, len(p.raw))
	}
	if length > 0 && uint64(offset) < p.tableEnd {
		return Region{}, fmt.Errorf("%w: data at %#x overlaps entry table (ends at %#x)", ErrOutOfBounds, offset, p.tableEnd)
	}
	if sigLen > length {
		return Region{}, fmt.Errorf("%w: %d bytes of signature in %d byte region", ErrInvalidSignatureLength, sigLen, length)
	}

	return Region{
		data:        p.raw[offset:end:end],
		sigLen:      int(sigLen),
		loadAddr:    loadAddr,
		startOffset: startOffset,
	}, nil
}

// cString returns b up to the first NUL byte.
func cString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}
