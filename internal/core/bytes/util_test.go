package bytes

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

type testHeader struct {
	Type uint8
	ID   uint8
	Role uint8
	Pad  uint8
	Size uint16
}

func TestStructConversions(t *testing.T) {
	command := []byte{0x01, 0x02, 0x01, 0x00, 0x00, 0x05}

	var hdr testHeader
	StructFromBytes(command, &hdr)

	want := testHeader{Type: 1, ID: 2, Role: 1, Pad: 0, Size: 5}
	if diff := cmp.Diff(want, hdr); diff != "" {
		t.Errorf("StructFromBytes() diff:\n%s", diff)
	}

	converted, n := BytesFromStruct(hdr)
	if n != len(command) {
		t.Errorf("BytesFromStruct() wrote %d bytes, want %d", n, len(command))
	}
	if diff := cmp.Diff(command, converted); diff != "" {
		t.Errorf("BytesFromStruct() round-trip diff:\n%s", diff)
	}
}
