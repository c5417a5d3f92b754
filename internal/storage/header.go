package storage

import "encoding/binary"

// dbMagic identifies a file as belonging to this engine.
const dbMagic uint32 = 0x0042444D

// headerSize is the number of bytes the header occupies at the front of the
// file, before the data region begins.
const headerSize = 20

// dbHeader is the fixed-layout record stored at byte offset 0 of the file.
type dbHeader struct {
	Magic         uint32
	PageCount     uint32
	RootPage      uint32 // retired field, kept for on-disk layout compatibility; always 0
	FirstFreePage uint32 // placeholder; no page reuse in this version
	SchemaPage    uint32
}

func (h *dbHeader) encode() [headerSize]byte {
	var buf [headerSize]byte
	binary.LittleEndian.PutUint32(buf[0:4], h.Magic)
	binary.LittleEndian.PutUint32(buf[4:8], h.PageCount)
	binary.LittleEndian.PutUint32(buf[8:12], h.RootPage)
	binary.LittleEndian.PutUint32(buf[12:16], h.FirstFreePage)
	binary.LittleEndian.PutUint32(buf[16:20], h.SchemaPage)
	return buf
}

func decodeHeader(buf []byte) dbHeader {
	return dbHeader{
		Magic:         binary.LittleEndian.Uint32(buf[0:4]),
		PageCount:     binary.LittleEndian.Uint32(buf[4:8]),
		RootPage:      binary.LittleEndian.Uint32(buf[8:12]),
		FirstFreePage: binary.LittleEndian.Uint32(buf[12:16]),
		SchemaPage:    binary.LittleEndian.Uint32(buf[16:20]),
	}
}
