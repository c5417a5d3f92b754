package schema

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/arjunmenon/pagebase/internal/storage"
)

const rowHeaderSize = 1 + 4 + 4 // deleted(1) + row_id(4) + next_row(4)

// nextPagePtrSize is the width of the forward-link pointer stored in the
// last 4 bytes of every data page.
const nextPagePtrSize = 4

// usableDataBytes is how much of a page is available for packed rows once
// the trailing next-page pointer is reserved.
const usableDataBytes = storage.PageSize - nextPagePtrSize

// RowHeader precedes every row's column values in a data page.
type RowHeader struct {
	Deleted bool
	RowID   uint32
	NextRow uint32 // unused in this version; always 0
}

// Location identifies one row's position within a table's data page chain.
type Location struct {
	PageID uint32
	Offset uint32
}

func slotsPerPage(rowSize uint32) uint32 {
	return usableDataBytes / rowSize
}

func writeNextPagePointer(page *storage.Page, next uint32) {
	binary.LittleEndian.PutUint32(page.Data[storage.PageSize-4:], next)
}

func readNextPagePointer(page *storage.Page) uint32 {
	return binary.LittleEndian.Uint32(page.Data[storage.PageSize-4:])
}

// EncodeRow packs header and values into a RowSize-length byte slice, in the
// schema's declared column order.
func EncodeRow(s *TableSchema, header RowHeader, values []any) ([]byte, error) {
	if len(values) != len(s.Columns) {
		return nil, fmt.Errorf("%w: expected %d values, got %d", ErrTypeMismatch, len(s.Columns), len(values))
	}

	buf := make([]byte, s.RowSize)
	if header.Deleted {
		buf[0] = 1
	}
	binary.LittleEndian.PutUint32(buf[1:5], header.RowID)
	binary.LittleEndian.PutUint32(buf[5:9], header.NextRow)

	off := uint32(rowHeaderSize)
	for i, col := range s.Columns {
		width := col.Type.Width(col.Length)
		if err := encodeValue(buf[off:off+width], col, values[i]); err != nil {
			return nil, err
		}
		off += width
	}
	return buf, nil
}

func encodeValue(dst []byte, col ColumnDef, value any) error {
	switch col.Type {
	case TypeInt:
		v, ok := value.(int32)
		if !ok {
			iv, ok2 := value.(int)
			if !ok2 {
				return fmt.Errorf("%w: column %s wants INT", ErrTypeMismatch, col.Name)
			}
			v = int32(iv)
		}
		binary.LittleEndian.PutUint32(dst, uint32(v))
	case TypeFloat:
		v, ok := value.(float32)
		if !ok {
			fv, ok2 := value.(float64)
			if !ok2 {
				return fmt.Errorf("%w: column %s wants FLOAT", ErrTypeMismatch, col.Name)
			}
			v = float32(fv)
		}
		binary.LittleEndian.PutUint32(dst, math.Float32bits(v))
	case TypeBool:
		v, ok := value.(bool)
		if !ok {
			return fmt.Errorf("%w: column %s wants BOOL", ErrTypeMismatch, col.Name)
		}
		if v {
			dst[0] = 1
		} else {
			dst[0] = 0
		}
	case TypeString:
		v, ok := value.(string)
		if !ok {
			return fmt.Errorf("%w: column %s wants STRING", ErrTypeMismatch, col.Name)
		}
		if uint32(len(v)) > col.Length {
			return fmt.Errorf("%w: column %s (%d > %d)", ErrStringTooLong, col.Name, len(v), col.Length)
		}
		copy(dst, v)
	}
	return nil
}

// DecodeRow unpacks the header and values from a RowSize-length byte slice.
func DecodeRow(s *TableSchema, buf []byte) (RowHeader, []any, error) {
	header := RowHeader{
		Deleted: buf[0] != 0,
		RowID:   binary.LittleEndian.Uint32(buf[1:5]),
		NextRow: binary.LittleEndian.Uint32(buf[5:9]),
	}

	values := make([]any, len(s.Columns))
	off := uint32(rowHeaderSize)
	for i, col := range s.Columns {
		width := col.Type.Width(col.Length)
		values[i] = decodeValue(buf[off:off+width], col)
		off += width
	}
	return header, values, nil
}

func decodeValue(src []byte, col ColumnDef) any {
	switch col.Type {
	case TypeInt:
		return int32(binary.LittleEndian.Uint32(src))
	case TypeFloat:
		return math.Float32frombits(binary.LittleEndian.Uint32(src))
	case TypeBool:
		return src[0] != 0
	case TypeString:
		return cstring(src)
	default:
		return nil
	}
}

// isEmptySlot mirrors the original storage engine's "first bytes all zero"
// convention for an unused row slot. Row ids are assigned starting at 1
// (never 0) so a genuinely stored row can never be mistaken for an empty one.
func isEmptySlot(buf []byte) bool {
	for _, b := range buf[:rowHeaderSize] {
		if b != 0 {
			return false
		}
	}
	return true
}
