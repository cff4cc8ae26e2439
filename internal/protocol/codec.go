package protocol

import (
	"io"
	"time"

	corebytes "jeux/internal/core/bytes"
	"jeux/internal/core/errs"
)

// processStart anchors the monotonic-ish sender timestamps stamped onto
// every outbound packet; it plays the role of CLOCK_MONOTONIC's arbitrary
// epoch, since Go has no equivalent public monotonic clock reading.
var processStart = time.Now()

func stamp() (uint32, uint32) {
	d := time.Since(processStart)
	return uint32(d / time.Second), uint32(d % time.Second)
}

// Send serializes hdr and payload to w. It stamps the header's timestamp
// fields, rejects a zero hdr.Size paired with a non-empty payload (and a
// non-zero hdr.Size paired with an empty one), and performs a single
// short-write-safe write of header followed by payload. Callers are
// responsible for any write-side serialization (a session's write-mutex);
// Send itself does no locking.
func Send(w io.Writer, hdr Header, payload []byte) error {
	if (hdr.Size == 0) != (len(payload) == 0) {
		return errs.ErrInvalidPacket
	}

	hdr.TsSec, hdr.TsNsec = stamp()

	buf, _ := corebytes.BytesFromStruct(hdr)
	if len(payload) > 0 {
		buf = append(buf, payload...)
	}

	if _, err := writeFull(w, buf); err != nil {
		return errs.ErrPeerGone
	}
	return nil
}

// Recv reads exactly one packet (header plus payload, if any) from r.
func Recv(r io.Reader) (Header, []byte, error) {
	var hdr Header

	hdrBuf := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, hdrBuf); err != nil {
		return Header{}, nil, errs.ErrDisconnected
	}
	corebytes.StructFromBytes(hdrBuf, &hdr)

	if hdr.Size == 0 {
		return hdr, nil, nil
	}

	payload := make([]byte, hdr.Size)
	if _, err := io.ReadFull(r, payload); err != nil {
		return Header{}, nil, errs.ErrDisconnected
	}
	return hdr, payload, nil
}

func writeFull(w io.Writer, buf []byte) (int, error) {
	written := 0
	for written < len(buf) {
		n, err := w.Write(buf[written:])
		written += n
		if err != nil {
			return written, err
		}
	}
	return written, nil
}
