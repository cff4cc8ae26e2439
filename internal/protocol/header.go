package protocol

// HeaderSize is the fixed on-wire size of a Header, in bytes.
const HeaderSize = 16

// Header is the fixed 16-byte packet header. Field order and widths mirror
// the wire layout exactly; the two Reserved fields are always zero and exist
// only to hold the layout's byte offsets in place.
type Header struct {
	Type      Type
	ID        uint8
	Role      Role
	Reserved1 uint8
	Size      uint16
	Reserved2 uint16
	TsSec     uint32
	TsNsec    uint32
}

// NewHeader builds a Header for an outbound packet. The timestamp fields are
// stamped by Send; callers only need to supply the semantic fields.
func NewHeader(t Type, id uint8, role Role, payloadLen int) Header {
	return Header{
		Type: t,
		ID:   id,
		Role: role,
		Size: uint16(payloadLen),
	}
}
