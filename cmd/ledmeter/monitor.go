package main

import (
	"fmt"
	"time"

	meter "github.com/dlnetworks/wled-bandwidth-meter"
	"github.com/dlnetworks/wled-bandwidth-meter/model"
)

// This file implements a monitor that subscribes to and displays the
// bandwidth samples using event subscription

func runMonitoring(updater *meter.Updater, subscribeC chan chan model.Sample, quitC <-chan struct{}) {

	sampleC := make(chan model.Sample, 1)
	subscribeC <- sampleC

	for {
		select {
		case sample := <-sampleC:
			cfg := updater.Config()

			rxAvailable, txAvailable := meter.SplitLEDs(cfg.TotalLEDs, cfg.RxSplitPercent)
			rxLEDs := meter.CalculateLEDs(sample.RxKbps, cfg.MaxBandwidthKbps(), rxAvailable)
			txLEDs := meter.CalculateLEDs(sample.TxKbps, cfg.MaxBandwidthKbps(), txAvailable)

			fmt.Fprintf(msgV, "[%s] %s RX: %d LEDs (%.1f Mbps) | TX: %d LEDs (%.1f Mbps)\n",
				sample.At.Format("15:04:05.000"), sample.Interface,
				rxLEDs, model.Mbps(sample.RxKbps), txLEDs, model.Mbps(sample.TxKbps))
			logger.Debug("sample", "interface", sample.Interface, "rx_kbps", sample.RxKbps, "tx_kbps", sample.TxKbps, "at", sample.At.Format(time.RFC3339Nano))
		case <-quitC:
			return
		}
	}
}
