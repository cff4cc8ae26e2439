package protocol

import (
	"net"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func newTestListener(t *testing.T) (*net.TCPListener, *net.TCPAddr) {
	listener, err := net.ListenTCP("tcp", &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("error initializing test listener: %v", err)
	}
	return listener, listener.Addr().(*net.TCPAddr)
}

func newTestConnPair(t *testing.T) (net.Conn, net.Conn) {
	listener, addr := newTestListener(t)
	defer listener.Close()

	clientConn, err := net.DialTCP("tcp", nil, addr)
	if err != nil {
		t.Fatalf("error dialing test listener: %v", err)
	}
	serverConn, err := listener.AcceptTCP()
	if err != nil {
		t.Fatalf("error accepting test connection: %v", err)
	}
	return clientConn, serverConn
}

func TestSendRecv_RoundTrip(t *testing.T) {
	client, server := newTestConnPair(t)
	defer client.Close()
	defer server.Close()

	payload := []byte("alice")
	hdr := NewHeader(Invited, 3, RoleFirst, len(payload))

	if err := Send(server, hdr, payload); err != nil {
		t.Fatalf("Send() returned unexpected error: %v", err)
	}

	gotHdr, gotPayload, err := Recv(client)
	if err != nil {
		t.Fatalf("Recv() returned unexpected error: %v", err)
	}

	if gotHdr.Type != Invited || gotHdr.ID != 3 || gotHdr.Role != RoleFirst || gotHdr.Size != uint16(len(payload)) {
		t.Fatalf("Recv() header mismatch: %+v", gotHdr)
	}
	if diff := cmp.Diff(payload, gotPayload); diff != "" {
		t.Fatalf("Recv() payload diff:\n%s", diff)
	}
}

func TestSendRecv_NoPayload(t *testing.T) {
	client, server := newTestConnPair(t)
	defer client.Close()
	defer server.Close()

	hdr := NewHeader(Ack, 0, RoleNone, 0)
	if err := Send(server, hdr, nil); err != nil {
		t.Fatalf("Send() returned unexpected error: %v", err)
	}

	gotHdr, gotPayload, err := Recv(client)
	if err != nil {
		t.Fatalf("Recv() returned unexpected error: %v", err)
	}
	if gotHdr.Type != Ack || gotHdr.Size != 0 {
		t.Fatalf("Recv() header mismatch: %+v", gotHdr)
	}
	if len(gotPayload) != 0 {
		t.Fatalf("Recv() payload = %v, want empty", gotPayload)
	}
}

func TestSend_SizePayloadMismatch(t *testing.T) {
	client, server := newTestConnPair(t)
	defer client.Close()
	defer server.Close()

	hdr := NewHeader(Move, 0, RoleNone, 0)
	hdr.Size = 5 // claims a payload but none is provided

	if err := Send(server, hdr, nil); err == nil {
		t.Fatal("Send() with size/payload mismatch succeeded, want error")
	}
}

func TestRecv_Disconnected(t *testing.T) {
	client, server := newTestConnPair(t)
	defer client.Close()
	server.Close()

	if _, _, err := Recv(client); err == nil {
		t.Fatal("Recv() on a closed peer succeeded, want error")
	}
}
