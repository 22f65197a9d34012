package meter

// This file contains the contract between the renderer and the pixel
// transports that carry frames to the LED controllers

import (
	"strings"

	"github.com/go-stack/stack"
	"github.com/karlmutch/errors"
)

// FrameSink accepts complete RGB frames, 3 bytes per LED with no padding.
// offset is a byte offset into the controllers linear pixel space.
type FrameSink interface {
	Write(frame []byte, offset int) (err errors.Error)
	Close()
}

// NewSink selects a transport from an address of the form "ddp://host[:port]",
// "opc://host:port" or a bare host which is treated as DDP
func NewSink(addr string) (sink FrameSink, err errors.Error) {
	switch {
	case strings.HasPrefix(addr, "opc://"):
		oc, err := NewOPCSink(strings.TrimPrefix(addr, "opc://"), 0)
		if err != nil {
			return nil, err
		}
		return oc, nil
	case strings.Contains(addr, "://") && !strings.HasPrefix(addr, "ddp://"):
		return nil, errors.New("unknown pixel transport").With("addr", addr).With("stack", stack.Trace().TrimRuntime())
	}

	ddp, err := NewDDPSink(strings.TrimPrefix(addr, "ddp://"))
	if err != nil {
		return nil, err
	}
	return ddp, nil
}
