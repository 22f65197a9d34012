package meter

// This file contains a local bandwidth monitor that polls the Linux
// /proc/net/dev counters on a regular schedule

import (
	"bufio"
	"os"
	"time"

	"github.com/go-stack/stack"
	"github.com/karlmutch/errors"

	"github.com/dlnetworks/wled-bandwidth-meter/model"
)

const (
	ProcNetDev = "/proc/net/dev"
)

type ProcNetMon struct {
	path       string
	interfaces map[string]struct{}
	tracker    *Tracker
	sampleC    chan<- model.Sample
	errorC     chan<- errors.Error
}

// NewProcNetMon creates a poller for the named interfaces, an empty list
// accepts every interface in the file
func NewProcNetMon(path string, interfaces []string, sampleC chan<- model.Sample, errorC chan<- errors.Error) (mon *ProcNetMon) {
	mon = &ProcNetMon{
		path:       path,
		interfaces: map[string]struct{}{},
		tracker:    NewTracker(),
		sampleC:    sampleC,
		errorC:     errorC,
	}
	for _, iface := range interfaces {
		mon.interfaces[iface] = struct{}{}
	}
	return mon
}

func (mon *ProcNetMon) wanted(iface string) bool {
	if len(mon.interfaces) == 0 {
		return true
	}
	_, isPresent := mon.interfaces[iface]
	return isPresent
}

// poll reads the counter file once and returns a sample for every wanted
// interface that has a previous reading
func (mon *ProcNetMon) poll() (samples []model.Sample, err errors.Error) {
	f, errGo := os.Open(mon.path)
	if errGo != nil {
		return nil, errors.Wrap(errGo).With("path", mon.path).With("stack", stack.Trace().TrimRuntime())
	}
	defer f.Close()

	samples = []model.Sample{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		sample, ok := mon.tracker.ParseLine(scanner.Text())
		if !ok || !mon.wanted(sample.Interface) {
			continue
		}
		samples = append(samples, sample)
	}
	if errGo = scanner.Err(); errGo != nil {
		return nil, errors.Wrap(errGo).With("path", mon.path).With("stack", stack.Trace().TrimRuntime())
	}
	return samples, nil
}

func (mon *ProcNetMon) sendSamples() {
	samples, err := mon.poll()
	if err != nil {
		select {
		case mon.errorC <- err:
		case <-time.After(500 * time.Millisecond):
			logger.Warn("could not send error for bandwidth poll", "error", err.Error())
		}
		return
	}

	for _, sample := range samples {
		select {
		case mon.sampleC <- sample:
		case <-time.After(750 * time.Millisecond):
			logger.Warn("bandwidth sample dropped", "interface", sample.Interface)
		}
	}
}

// Run polls the counters once per second until quitC is closed
func (mon *ProcNetMon) Run(quitC <-chan struct{}) {

	// Prime the tracker so the first tick produces rates
	if _, err := mon.poll(); err != nil {
		select {
		case mon.errorC <- err:
		case <-quitC:
			return
		}
	}

	poll := time.NewTicker(time.Second)
	defer poll.Stop()

	for {
		select {
		case <-poll.C:
			mon.sendSamples()

		case <-quitC:
			return
		}
	}
}
