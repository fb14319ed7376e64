// internal/wire/header.go
package wire

import "errors"

// Header is the 32-bit packed uplink/downlink header, protocol version 0.
//
// Bit layout (MSB -> LSB):
//
//	+---------+--------------+------------+----------+----------------+
//	| version |  timestamp   | guaranteed |   type   | content_length |
//	+---------+--------------+------------+----------+----------------+
//	| 3 bits  |   20 bits    |   1 bit    |  4 bits  |     4 bits     |
//	+---------+--------------+------------+----------+----------------+
//
// timestamp = dow(3) << 17 | seconds_past_midnight(17)
//
// An earlier layout used a 5-bit type and no guaranteed bit. That is a
// prior wire version and is not decodable here.
type Header struct {
	Version      uint8 // 0..7
	DOW          uint8 // 0..6, 0 = Sunday
	SecondsOfDay uint32 // 0..86399
	Guaranteed   bool
	Type         uint8 // 0..15
	Length       uint8 // 0..15; this design uses 0..7
}

// Version is the wire protocol version stamped on every uplink.
const Version = 0

// HeaderSize is the on-wire header size in bytes.
const HeaderSize = 4

// MaxContentLength is the content capacity of one message.
const MaxContentLength = 7

var ErrShortHeader = errors.New("wire: header shorter than 4 bytes")

// Timestamp returns the packed 20-bit timestamp field.
func (h Header) Timestamp() uint32 {
	return uint32(h.DOW&0x07)<<17 | (h.SecondsOfDay & 0x1FFFF)
}

// Encode packs the header into its 32-bit wire word.
// Fields are masked to their widths; no validation is performed.
func (h Header) Encode() uint32 {
	var g uint32
	if h.Guaranteed {
		g = 1
	}
	return uint32(h.Version&0x07)<<29 |
		h.Timestamp()<<9 |
		g<<8 |
		uint32(h.Type&0x0F)<<4 |
		uint32(h.Length&0x0F)
}

// EncodeBytes returns the header as transmitted: the packed word in
// little-endian byte order.
func (h Header) EncodeBytes() [HeaderSize]byte {
	w := h.Encode()
	return [HeaderSize]byte{
		byte(w),
		byte(w >> 8),
		byte(w >> 16),
		byte(w >> 24),
	}
}

// Decode unpacks a 32-bit wire word.
func Decode(w uint32) Header {
	ts := (w >> 9) & 0xFFFFF
	return Header{
		Version:      uint8(w >> 29 & 0x07),
		DOW:          uint8(ts >> 17),
		SecondsOfDay: ts & 0x1FFFF,
		Guaranteed:   w&(1<<8) != 0,
		Type:         uint8(w >> 4 & 0x0F),
		Length:       uint8(w & 0x0F),
	}
}

// DecodeBytes unpacks a received header from the first 4 bytes of data.
func DecodeBytes(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, ErrShortHeader
	}
	w := uint32(data[0]) |
		uint32(data[1])<<8 |
		uint32(data[2])<<16 |
		uint32(data[3])<<24
	return Decode(w), nil
}
