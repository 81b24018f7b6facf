// Package datest builds DA files for tests.
package datest

import (
	"bytes"
	"encoding/binary"
)

type Stage struct {
	Payload []byte
	Sig     []byte
}

type Entry struct {
	HWCode   uint16
	DA1, DA2 Stage
}

// LoadAddrs are the load addresses written for DA1 and DA2.
var LoadAddrs = [2]uint32{0x200000, 0x40000000}

// Build a DA file the way the vendor tools lay them out: header, entry table,
// then all stage data back to back. Every entry declares three regions, with
// slot 0 left empty.
func Build(ident string, legacy bool, entries []Entry) []byte {
	recSize := 0xdc
	if legacy {
		recSize = 0xd8
	}

	var magic [32]byte
	copy(magic[:], "MTK_DOWNLOAD_AGENT")
	var id [64]byte
	copy(id[:], ident)
	hdr := struct {
		Magic       [32]byte
		ID          [64]byte
		Version     uint32
		HeaderMagic uint32
		Count       uint32
	}{magic, id, 4, 0x22668899, uint32(len(entries))}

	buf := bytes.NewBuffer(nil)
	binary.Write(buf, binary.LittleEndian, &hdr)

	dataOffset := 0x6c + len(entries)*recSize
	data := bytes.NewBuffer(nil)
	for _, e := range entries {
		rec := bytes.NewBuffer(nil)
		fields := []uint16{0xdada, e.HWCode, 0x8a00, 0xca00, 0x0000, 0}
		if !legacy {
			fields = append(fields, 0x800, 0)
		}
		// Region index, region count.
		fields = append(fields, 0, 3)
		binary.Write(rec, binary.LittleEndian, fields)

		binary.Write(rec, binary.LittleEndian, [5]uint32{})
		for i, s := range []Stage{e.DA1, e.DA2} {
			offset := dataOffset + data.Len()
			data.Write(s.Payload)
			data.Write(s.Sig)
			binary.Write(rec, binary.LittleEndian, [5]uint32{
				uint32(offset),
				uint32(len(s.Payload) + len(s.Sig)),
				LoadAddrs[i],
				0,
				uint32(len(s.Sig)),
			})
		}
		rec.Write(make([]byte, recSize-rec.Len()))
		buf.Write(rec.Bytes())
	}
	buf.Write(data.Bytes())
	return buf.Bytes()
}
