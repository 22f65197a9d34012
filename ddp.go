package meter

// This file contains a Distributed Display Protocol sender, the UDP pixel
// protocol accepted by WLED controllers on port 4048

import (
	"encoding/binary"
	"net"
	"strconv"
	"sync"

	"github.com/go-stack/stack"
	"github.com/karlmutch/errors"
)

const (
	DDPPort = 4048

	ddpHeaderLen  = 10
	ddpMaxPayload = 1440 // 480 RGB pixels, keeps packets under a typical MTU

	ddpVersion1           = 0x40
	ddpPush               = 0x01
	ddpTypeRGB8           = 0x0B // RGB, 8 bits per channel
	ddpDestinationDisplay = 0x01
)

type DDPSink struct {
	conn     *net.UDPConn
	sequence byte
	packet   []byte
	sync.Mutex
}

// NewDDPSink resolves host, adding the DDP port when none is given
func NewDDPSink(host string) (sink *DDPSink, err errors.Error) {
	addr := host
	if _, _, errGo := net.SplitHostPort(host); errGo != nil {
		addr = net.JoinHostPort(host, strconv.Itoa(DDPPort))
	}

	raddr, errGo := net.ResolveUDPAddr("udp", addr)
	if errGo != nil {
		return nil, errors.Wrap(errGo).With("addr", addr).With("stack", stack.Trace().TrimRuntime())
	}
	conn, errGo := net.DialUDP("udp", nil, raddr)
	if errGo != nil {
		return nil, errors.Wrap(errGo).With("addr", addr).With("stack", stack.Trace().TrimRuntime())
	}

	return &DDPSink{
		conn:   conn,
		packet: make([]byte, ddpHeaderLen+ddpMaxPayload),
	}, nil
}

// putDDPHeader fills the fixed 10 byte header for one packet
func putDDPHeader(hdr []byte, sequence byte, offset uint32, length uint16, last bool) {
	hdr[0] = ddpVersion1
	if last {
		hdr[0] |= ddpPush
	}
	hdr[1] = sequence & 0x0F
	hdr[2] = ddpTypeRGB8
	hdr[3] = ddpDestinationDisplay
	binary.BigEndian.PutUint32(hdr[4:8], offset)
	binary.BigEndian.PutUint16(hdr[8:10], length)
}

// Write splits the frame into packets, only the last of which asks the
// controller to display.  A failed send abandons the rest of the frame.
func (sink *DDPSink) Write(frame []byte, offset int) (err errors.Error) {
	sink.Lock()
	defer sink.Unlock()

	if sink.conn == nil {
		return errors.New("ddp sink closed").With("stack", stack.Trace().TrimRuntime())
	}

	// Sequence numbers 1-15, zero means unused to receivers
	sink.sequence = sink.sequence%15 + 1

	if len(frame) == 0 {
		return nil
	}

	for start := 0; start < len(frame); start += ddpMaxPayload {
		end := start + ddpMaxPayload
		if end > len(frame) {
			end = len(frame)
		}
		chunk := frame[start:end]

		pkt := sink.packet[:ddpHeaderLen+len(chunk)]
		putDDPHeader(pkt, sink.sequence, uint32(offset+start), uint16(len(chunk)), end == len(frame))
		copy(pkt[ddpHeaderLen:], chunk)

		if _, errGo := sink.conn.Write(pkt); errGo != nil {
			return errors.Wrap(errGo).With("addr", sink.conn.RemoteAddr().String()).With("offset", offset+start).With("stack", stack.Trace().TrimRuntime())
		}
	}
	return nil
}

func (sink *DDPSink) Close() {
	sink.Lock()
	defer sink.Unlock()

	if sink.conn != nil {
		sink.conn.Close()
		sink.conn = nil
	}
}
