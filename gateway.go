package meter

// This module wires together the goroutines of the meter.  Bandwidth samples
// from a feed are broadcast to the updater and any other listeners, the
// updater maintains the shared render state and the renderer drives the LEDs
// from it.

import (
	"context"
	"time"

	"github.com/karlmutch/errors"

	"github.com/dlnetworks/wled-bandwidth-meter/model"
)

type Gateway struct {
	Config     *model.Config
	ConfigPath string // watched for changes when set
	Host       string // remote host to measure over ssh, empty for local
	FeedCmd    string // replaces the built in feed commands when set

	// Overrides is applied to every configuration loaded from ConfigPath so
	// that command line options keep precedence over the file
	Overrides func(cfg *model.Config)

	Sink FrameSink
}

// Start launches the meter and returns the updater along with a channel that
// can be used to add sample listeners
func (gw *Gateway) Start(errorC chan<- errors.Error, quitC <-chan struct{}) (updater *Updater, subscribeC chan chan model.Sample, err errors.Error) {

	state := NewRenderState(gw.Config)
	updater = NewUpdater(state, gw.Config)

	renderer, err := NewRenderer(state, gw.Sink)
	if err != nil {
		return nil, nil, err
	}

	configC := make(chan *model.Config, 1)
	if len(gw.ConfigPath) != 0 {
		if err = gw.watch(configC, errorC, quitC); err != nil {
			return nil, nil, err
		}
	}

	sampleC, subscribeC := startFanOut(quitC)

	// The updater is the first listener, everything else that wants to
	// observe bandwidth subscribes after it
	updateC := make(chan model.Sample, 1)
	subscribeC <- updateC

	go updater.Run(updateC, configC, quitC)
	go renderer.Run(errorC, quitC)

	if err = gw.startFeed(sampleC, errorC, quitC); err != nil {
		return nil, nil, err
	}

	if cfg := updater.Config(); cfg.HttpdEnabled {
		go NewConfigServer(updater).Serve(cfg.HttpdIP, cfg.HttpdPort, errorC, quitC)
	}

	return updater, subscribeC, nil
}

func (gw *Gateway) watch(configC chan<- *model.Config, errorC chan<- errors.Error, quitC <-chan struct{}) (err errors.Error) {
	loadedC := make(chan *model.Config, 1)
	if err = WatchConfig(gw.ConfigPath, loadedC, errorC, quitC); err != nil {
		return err
	}

	go func() {
		for {
			select {
			case cfg := <-loadedC:
				if gw.Overrides != nil {
					gw.Overrides(cfg)
				}
				select {
				case configC <- cfg:
				case <-quitC:
					return
				}
			case <-quitC:
				return
			}
		}
	}()
	return nil
}

// startFeed picks the bandwidth source, a user supplied command, a remote
// host over ssh, netstat on a local Mac or /proc/net/dev on local Linux
func (gw *Gateway) startFeed(sampleC chan<- model.Sample, errorC chan<- errors.Error, quitC <-chan struct{}) (err errors.Error) {
	interfaces := gw.Config.Interfaces()

	switch {
	case len(gw.FeedCmd) != 0:
		logger.Info("bandwidth feed", "cmd", gw.FeedCmd)
		go NewCommandFeed("", gw.FeedCmd, sampleC, errorC).Run(quitC)
		return nil

	case len(gw.Host) != 0:
		logger.Info("bandwidth feed", "host", gw.Host, "interfaces", interfaces)
		go NewCommandFeed(gw.Host, FeedScript(gw.Host, "", interfaces), sampleC, errorC).Run(quitC)
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	osName, err := DetectOS(ctx, "")
	if err != nil {
		return err
	}

	logger.Info("bandwidth feed", "os", osName, "interfaces", interfaces)
	if osName == "Darwin" {
		go NewCommandFeed("", FeedScript("", osName, interfaces), sampleC, errorC).Run(quitC)
		return nil
	}
	go NewProcNetMon(ProcNetDev, interfaces, sampleC, errorC).Run(quitC)
	return nil
}
