package meter

// This file contains the bandwidth feed parsers.  Two kinds of text are
// understood, the per second rate rows printed by the BSD/macOS netstat and
// the cumulative counter rows found in the Linux /proc/net/dev.  Counter rows
// are differenced against the previous observation of the same interface.

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dlnetworks/wled-bandwidth-meter/model"
)

type ifaceCounters struct {
	rxBytes uint64
	txBytes uint64
	at      time.Time
}

// Tracker turns lines of feed output into samples
type Tracker struct {
	interfaces map[string]ifaceCounters
	now        func() time.Time
	sync.Mutex
}

func NewTracker() (tracker *Tracker) {
	return &Tracker{
		interfaces: map[string]ifaceCounters{},
		now:        time.Now,
	}
}

// ParseLine returns a sample when the line carries a complete measurement.
// Headers, malformed rows and the first counter row seen for an interface
// produce nothing.
func (tracker *Tracker) ParseLine(line string) (sample model.Sample, ok bool) {
	fields := strings.Fields(line)

	// netstat -w 1 -I <if> data rows:
	//   packets errs bytes packets errs bytes colls
	if len(fields) == 7 && !strings.Contains(line, ":") {
		rxBytesPerSec, errGo := strconv.ParseFloat(fields[2], 64)
		if errGo != nil {
			return sample, false
		}
		txBytesPerSec, errGo := strconv.ParseFloat(fields[5], 64)
		if errGo != nil {
			return sample, false
		}
		return model.Sample{
			RxKbps: rxBytesPerSec * 8.0 / 1000.0,
			TxKbps: txBytesPerSec * 8.0 / 1000.0,
			At:     tracker.now(),
		}, true
	}

	if strings.Contains(line, ":") {
		return tracker.counters(line)
	}
	return sample, false
}

// counters handles "iface: rx_bytes packets errs drop fifo frame compressed
// multicast tx_bytes packets errs drop fifo colls carrier compressed"
func (tracker *Tracker) counters(line string) (sample model.Sample, ok bool) {
	parts := strings.Split(line, ":")
	if len(parts) != 2 {
		return sample, false
	}

	iface := strings.TrimSpace(parts[0])
	fields := strings.Fields(parts[1])
	if len(fields) < 16 || iface == "" {
		return sample, false
	}

	rxBytes, errGo := strconv.ParseUint(fields[0], 10, 64)
	if errGo != nil {
		return sample, false
	}
	txBytes, errGo := strconv.ParseUint(fields[8], 10, 64)
	if errGo != nil {
		return sample, false
	}

	now := tracker.now()

	tracker.Lock()
	defer tracker.Unlock()

	prev, isPresent := tracker.interfaces[iface]
	if isPresent {
		if dt := now.Sub(prev.at).Seconds(); dt > 0 {
			tracker.interfaces[iface] = ifaceCounters{rxBytes: rxBytes, txBytes: txBytes, at: now}
			return model.Sample{
				Interface: iface,
				RxKbps:    float64(saturatingSub(rxBytes, prev.rxBytes)) * 8.0 / (dt * 1000.0),
				TxKbps:    float64(saturatingSub(txBytes, prev.txBytes)) * 8.0 / (dt * 1000.0),
				At:        now,
			}, true
		}
	}

	tracker.interfaces[iface] = ifaceCounters{rxBytes: rxBytes, txBytes: txBytes, at: now}
	return sample, false
}

// saturatingSub treats counter resets as zero traffic
func saturatingSub(a uint64, b uint64) uint64 {
	if a < b {
		return 0
	}
	return a - b
}
