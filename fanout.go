package meter

import (
	"sync"
	"time"

	"github.com/dlnetworks/wled-bandwidth-meter/model"
)

const (
	// A subscriber that cannot take a sample within this time misses it
	subscriberTimeout = 250 * time.Millisecond
)

type subscribers struct {
	subs []chan model.Sample
	sync.Mutex
}

// startFanOut implements a broadcast mechanism for bandwidth samples.  The
// function returns the channel samples are sent into and a channel that can
// be used to add listeners.
func startFanOut(quitC <-chan struct{}) (inC chan model.Sample, subC chan chan model.Sample) {

	inC = make(chan model.Sample, 1)
	subC = make(chan chan model.Sample, 1)

	subs := &subscribers{
		subs: []chan model.Sample{},
	}

	go func(quitC <-chan struct{}) {
		defer logger.Debug("fanout stopped")
		for {
			select {
			case <-quitC:
				return
			case sub := <-subC:
				if nil != sub {
					subs.Lock()
					subs.subs = append(subs.subs, sub)
					subs.Unlock()
					logger.Debug("subscription added", "count", len(subs.subs))
				}
			case sample := <-inC:
				subs.Lock()
				for _, ch := range subs.subs {
					select {
					case ch <- sample:
					case <-time.After(subscriberTimeout):
						logger.Debug("subscription failed to send", "interface", sample.Interface)
					}
				}
				subs.Unlock()
			}
		}
	}(quitC)

	return inC, subC
}
