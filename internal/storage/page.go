package storage

const (
	_256   = 256
	_256_2 = 256 * 256
	_256_3 = 256 * 256 * 256
)

func GetU16(b []byte, offset int) uint16 {
	return uint16(b[offset]) + uint16(b[offset+1])*_256
}

func PutU16(b []byte, offset int, v uint16) {
	b[offset], b[offset+1] = byte(v%_256), byte(v/_256)
}

func GetU32(b []byte, offset int) uint32 {
	return uint32(b[offset]) +
		uint32(b[offset+1])*_256 +
		uint32(b[offset+2])*_256_2 +
		uint32(b[offset+3])*_256_3
}

func PutU32(b []byte, offset int, v uint32) {
	b[offset] = byte(v % _256)
	b[offset+1] = byte((v / _256) % _256)
	b[offset+2] = byte((v / (_256 * _256)) % _256)
	b[offset+3] = byte((v / (_256 * _256 * _256)) % _256)
}

// +------------------+ 0
// | flags | pageID    |
// | lower | upper     |
// | special           | <-- HeaderSize
// +------------------+
// | LinePointers[]   | <-- pd_lower, grows down
// +------------------+
// |   Free space     |
// +------------------+ <-- pd_upper, grows up
// |  Tuple Data      |
// +------------------+ PageSize
//
// A slot stores (offset, length, flags) for one tuple. A deleted slot is
// tombstoned in place; an updated tuple that no longer fits its slot is
// relocated and the original slot becomes a redirect to the new one.
type Page struct {
	Buf []byte
}

type Slot struct {
	Offset uint16
	Length uint16
	Flags  SlotFlag
}

// NewPage wraps buf (which must be exactly PageSize bytes) as a freshly
// initialized page carrying pageID.
func NewPage(buf []byte, pageID uint32) (*Page, error) {
	if len(buf) != PageSize {
		return nil, ErrPageCorrupted
	}
	p := &Page{Buf: buf}
	p.init(pageID)
	return p, nil
}

// WrapPage wraps buf (which must be exactly PageSize bytes) as-is,
// without touching its contents. Use NewPage for a fresh page and
// WrapPage for bytes already read back from disk.
func WrapPage(buf []byte) (*Page, error) {
	if len(buf) != PageSize {
		return nil, ErrPageCorrupted
	}
	return &Page{Buf: buf}, nil
}

func (p *Page) init(pageID uint32) {
	for i := range p.Buf {
		p.Buf[i] = 0
	}
	PutU16(p.Buf, 0, 0)          // flags
	PutU32(p.Buf, 2, pageID)     // page id
	PutU16(p.Buf, 6, HeaderSize) // pd_lower
	PutU16(p.Buf, 8, PageSize)   // pd_upper
	PutU16(p.Buf, 10, PageSize)  // pd_special (unused)
}

// IsUninitialized reports whether the page buffer has never been
// through init: both pd_lower and pd_upper are still zero.
func (p *Page) IsUninitialized() bool {
	return GetU16(p.Buf, 6) == 0 && GetU16(p.Buf, 8) == 0
}

func (p *Page) PageID() uint32  { return GetU32(p.Buf, 2) }
func (p *Page) flags() uint16   { return GetU16(p.Buf, 0) }
func (p *Page) lower() uint16   { return GetU16(p.Buf, 6) }
func (p *Page) upper() uint16   { return GetU16(p.Buf, 8) }
func (p *Page) special() uint16 { return GetU16(p.Buf, 10) }

func (p *Page) setLower(v uint16) { PutU16(p.Buf, 6, v) }
func (p *Page) setUpper(v uint16) { PutU16(p.Buf, 8, v) }

// NumSlots returns the number of line pointers currently allocated,
// including deleted and moved ones.
func (p *Page) NumSlots() int {
	return (int(p.lower()) - HeaderSize) / SlotSize
}

// FreeSpace returns the number of unused bytes between the line pointer
// array and the tuple data region.
func (p *Page) FreeSpace() int {
	return int(p.upper()) - int(p.lower())
}

func (p *Page) slotOff(idx int) int {
	return HeaderSize + idx*SlotSize
}

func (p *Page) getSlot(idx int) (Slot, error) {
	if idx < 0 || idx >= p.NumSlots() {
		return Slot{}, ErrBadSlot
	}
	o := p.slotOff(idx)
	return Slot{
		Offset: GetU16(p.Buf, o),
		Length: GetU16(p.Buf, o+2),
		Flags:  SlotFlag(GetU16(p.Buf, o+4)),
	}, nil
}

func (p *Page) putSlot(idx int, s Slot) {
	o := p.slotOff(idx)
	PutU16(p.Buf, o, s.Offset)
	PutU16(p.Buf, o+2, s.Length)
	PutU16(p.Buf, o+4, uint16(s.Flags))
}

func (p *Page) appendSlot(s Slot) int {
	idx := p.NumSlots()
	p.putSlot(idx, s)
	p.setLower(p.lower() + SlotSize)
	return idx
}

// InsertTuple copies data into the page's free space and allocates a new
// slot pointing at it. It returns ErrPageFull if there isn't enough room
// for both the tuple bytes and a new line pointer.
func (p *Page) InsertTuple(data []byte) (int, error) {
	need := len(data) + SlotSize
	if p.FreeSpace() < need {
		return -1, ErrPageFull
	}
	newUpper := p.upper() - uint16(len(data))
	copy(p.Buf[newUpper:], data)
	p.setUpper(newUpper)
	return p.appendSlot(Slot{Offset: newUpper, Length: uint16(len(data)), Flags: SlotFlagNormal}), nil
}

// ReadTuple returns the bytes stored at slot idx, following a redirect if
// the slot was relocated by a prior UpdateTuple.
func (p *Page) ReadTuple(idx int) ([]byte, error) {
	s, err := p.getSlot(idx)
	if err != nil {
		return nil, err
	}
	switch s.Flags {
	case SlotFlagDeleted:
		return nil, ErrBadSlot
	case SlotFlagMoved:
		return p.ReadTuple(int(s.Offset))
	default:
		out := make([]byte, s.Length)
		copy(out, p.Buf[s.Offset:int(s.Offset)+int(s.Length)])
		return out, nil
	}
}

// UpdateTuple overwrites the tuple at idx. If newData fits within the
// slot's current allocation it is rewritten in place; otherwise a new
// tuple is appended and the original slot becomes a redirect (flags
// SlotFlagMoved, offset pointing at the new slot index).
func (p *Page) UpdateTuple(idx int, newData []byte) error {
	s, err := p.getSlot(idx)
	if err != nil {
		return err
	}
	if s.Flags == SlotFlagDeleted {
		return ErrBadSlot
	}
	if s.Flags == SlotFlagMoved {
		return p.UpdateTuple(int(s.Offset), newData)
	}
	if len(newData) <= int(s.Length) {
		copy(p.Buf[s.Offset:], newData)
		p.putSlot(idx, Slot{Offset: s.Offset, Length: uint16(len(newData)), Flags: SlotFlagNormal})
		return nil
	}

	newIdx, err := p.InsertTuple(newData)
	if err != nil {
		return err
	}
	p.putSlot(idx, Slot{Offset: uint16(newIdx), Length: 0, Flags: SlotFlagMoved})
	return nil
}

// DeleteTuple tombstones the slot at idx; it does not reclaim space.
func (p *Page) DeleteTuple(idx int) error {
	s, err := p.getSlot(idx)
	if err != nil {
		return err
	}
	s.Flags = SlotFlagDeleted
	p.putSlot(idx, s)
	return nil
}
