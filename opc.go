package meter

// This file contains a frame sink for Open Pixel Control servers such as the
// fcserver that drives fadecandy boards

import (
	"math"
	"sync"

	"github.com/go-stack/stack"
	"github.com/karlmutch/errors"

	"github.com/kellydunn/go-opc"
)

type OPCSink struct {
	server  string
	channel uint8
	oc      *opc.Client
	sync.Mutex
}

// NewOPCSink connects to an OPC server over TCP, channel 0 addresses every
// strand attached to the server
func NewOPCSink(server string, channel uint8) (sink *OPCSink, err errors.Error) {
	oc := opc.NewClient()
	if errGo := oc.Connect("tcp", server); errGo != nil {
		return nil, errors.Wrap(errGo).With("url", server).With("stack", stack.Trace().TrimRuntime())
	}
	return &OPCSink{
		server:  server,
		channel: channel,
		oc:      oc,
	}, nil
}

// Write sends the frame as a single set-pixel-colors message, OPC addresses
// pixels rather than bytes so the offset is converted
func (sink *OPCSink) Write(frame []byte, offset int) (err errors.Error) {
	sink.Lock()
	defer sink.Unlock()

	if sink.oc == nil {
		return errors.New("opc sink closed").With("url", sink.server).With("stack", stack.Trace().TrimRuntime())
	}

	first := offset / 3
	pixels := len(frame) / 3
	length := (first + pixels) * 3
	if length > math.MaxUint16 {
		return errors.New("frame too large for an opc message").With("url", sink.server).With("bytes", length).With("stack", stack.Trace().TrimRuntime())
	}

	m := opc.NewMessage(sink.channel)
	m.SetLength(uint16(length))
	for i := 0; i < pixels; i++ {
		m.SetPixelColor(first+i, frame[i*3], frame[i*3+1], frame[i*3+2])
	}

	if errGo := sink.oc.Send(m); errGo != nil {
		return errors.Wrap(errGo).With("url", sink.server).With("stack", stack.Trace().TrimRuntime())
	}
	return nil
}

func (sink *OPCSink) Close() {
	sink.Lock()
	defer sink.Unlock()

	sink.oc = nil
}
