package ringitem

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

var order = binary.LittleEndian

// #region item
// Item is one raw record: a type, an optional body header and the body
// bytes that follow it.
type Item struct {
	Type       uint32
	BodyHeader *BodyHeader
	Body       []byte
}

// Size is the on-disk size of the item, header included.
func (it *Item) Size() uint32 {
	n := headerSize + len(it.Body)
	if it.BodyHeader != nil {
		n += bodyHeaderBytes
	}
	return uint32(n)
}

// #endregion item

// #region reader
// Reader pulls items off a byte stream.
type Reader struct {
	r *bufio.Reader
}

// NewReader wraps r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r)}
}

// Next reads one item. It returns io.EOF only at a clean item boundary.
func (rd *Reader) Next() (*Item, error) {
	var hdr [headerSize]byte
	n, err := io.ReadFull(rd.r, hdr[:])
	if err != nil {
		if n == 0 && errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, ErrShortHeader
	}
	size := order.Uint32(hdr[0:4])
	typ := order.Uint32(hdr[4:8])
	bhSize := order.Uint32(hdr[8:12])
	if size < headerSize {
		return nil, ErrInvalidHeader
	}
	if size > MaxItemSize {
		return nil, fmt.Errorf("type %d size %d: %w", typ, size, ErrItemTooLarge)
	}

	payload := make([]byte, size-headerSize)
	if _, err := io.ReadFull(rd.r, payload); err != nil {
		return nil, fmt.Errorf("type %d: %w", typ, ErrTruncated)
	}

	it := &Item{Type: typ, Body: payload}
	if bhSize > noBodyHeader {
		if len(payload) < bodyHeaderBytes {
			return nil, fmt.Errorf("type %d body header: %w", typ, ErrTruncated)
		}
		it.BodyHeader = &BodyHeader{
			Timestamp:   order.Uint64(payload[0:8]),
			SourceID:    order.Uint32(payload[8:12]),
			BarrierType: order.Uint32(payload[12:16]),
		}
		it.Body = payload[bodyHeaderBytes:]
	}
	return it, nil
}

// #endregion reader

// #region writer
// Writer appends items to a byte stream.
type Writer struct {
	w *bufio.Writer
}

// NewWriter wraps w. Call Flush when done.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Write encodes one item.
func (wr *Writer) Write(it *Item) error {
	var hdr [headerSize]byte
	order.PutUint32(hdr[0:4], it.Size())
	order.PutUint32(hdr[4:8], it.Type)
	bhSize := uint32(noBodyHeader)
	if it.BodyHeader != nil {
		bhSize += bodyHeaderBytes
	}
	order.PutUint32(hdr[8:12], bhSize)
	if _, err := wr.w.Write(hdr[:]); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if it.BodyHeader != nil {
		var bh [bodyHeaderBytes]byte
		order.PutUint64(bh[0:8], it.BodyHeader.Timestamp)
		order.PutUint32(bh[8:12], it.BodyHeader.SourceID)
		order.PutUint32(bh[12:16], it.BodyHeader.BarrierType)
		if _, err := wr.w.Write(bh[:]); err != nil {
			return fmt.Errorf("write body header: %w", err)
		}
	}
	if _, err := wr.w.Write(it.Body); err != nil {
		return fmt.Errorf("write body: %w", err)
	}
	return nil
}

// Flush writes any buffered bytes.
func (wr *Writer) Flush() error {
	return wr.w.Flush()
}

// #endregion writer
