package meter

import (
	"io"
	"net"
	"testing"
	"time"
)

func TestOPCSink(t *testing.T) {
	ln, errGo := net.Listen("tcp", "127.0.0.1:0")
	if errGo != nil {
		t.Fatal(errGo)
	}
	defer ln.Close()

	acceptC := make(chan net.Conn, 1)
	go func() {
		conn, errGo := ln.Accept()
		if errGo != nil {
			close(acceptC)
			return
		}
		acceptC <- conn
	}()

	sink, err := NewSink("opc://" + ln.Addr().String())
	if err != nil {
		t.Fatal(err.Error())
	}
	defer sink.Close()

	conn, ok := <-acceptC
	if !ok {
		t.Fatal("fcserver stand in was never connected to")
	}
	defer conn.Close()

	if err = sink.Write([]byte{1, 2, 3, 4, 5, 6}, 0); err != nil {
		t.Fatal(err.Error())
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	msg := make([]byte, 4+6)
	if _, errGo = io.ReadFull(conn, msg); errGo != nil {
		t.Fatal(errGo)
	}

	// channel, set pixel colors command, 16 bit length, then the pixels
	expect := []byte{0, 0, 0, 6, 1, 2, 3, 4, 5, 6}
	for i := range expect {
		if msg[i] != expect[i] {
			t.Fatalf("message byte %d is %d expected %d", i, msg[i], expect[i])
		}
	}

	sink.Close()
	if err = sink.Write([]byte{1, 2, 3}, 0); err == nil {
		t.Error("write after close succeeded")
	}
}
