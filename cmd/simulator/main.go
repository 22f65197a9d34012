package main

// The simulator prints rows in the format of "netstat -w 1 -I <if>" with a
// synthetic load so that the meter can be exercised without real traffic,
// for example "ledmeter -feed-cmd 'simulator -period 20s'"

import (
	"bufio"
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"
	"time"

	logxi "github.com/mgutz/logxi/v1"
)

var (
	maxGbps  = flag.Float64("max", 10.0, "Peak simulated bandwidth in Gbps")
	period   = flag.Duration("period", 30*time.Second, "Time taken by the load to complete one rise and fall")
	interval = flag.Duration("interval", time.Second, "Time between rows")
	jitter   = flag.Float64("jitter", 0.05, "Random variation applied to each row as a fraction of the peak")
	count    = flag.Int("count", 0, "Number of rows to print, zero runs until killed")
)

var (
	// create Logger interface
	logW = logxi.NewLogger(logxi.NewConcurrentWriter(os.Stderr), "ledmeter-simulator")
)

// load returns a utilization in [0,1] for the elapsed time, upload trails
// download by a quarter period
func load(elapsed time.Duration, phase float64, noise float64) float64 {
	x := 0.5 - 0.5*math.Cos(2*math.Pi*(elapsed.Seconds()/period.Seconds()+phase))
	return math.Max(0, math.Min(1, x+noise))
}

func main() {

	flag.Parse()

	if *period <= 0 || *interval <= 0 {
		logW.Error("period and interval must be positive")
		os.Exit(-1)
	}

	peakBytes := *maxGbps * 1000.0 * 1000.0 * 1000.0 / 8.0
	out := bufio.NewWriter(os.Stdout)

	fmt.Fprintln(out, "            input        (Total)           output")
	fmt.Fprintln(out, "   packets  errs      bytes    packets  errs      bytes colls")
	out.Flush()

	start := time.Now()
	tick := time.NewTicker(*interval)
	defer tick.Stop()

	for row := 0; *count == 0 || row < *count; row++ {
		<-tick.C
		elapsed := time.Since(start)

		rxBytes := peakBytes * load(elapsed, 0, (*jitter)*(rand.Float64()*2-1))
		txBytes := peakBytes * load(elapsed, 0.25, (*jitter)*(rand.Float64()*2-1))

		fmt.Fprintf(out, "%10d %5d %10d %10d %5d %10d %5d\n",
			int64(rxBytes/1500), 0, int64(rxBytes), int64(txBytes/1500), 0, int64(txBytes), 0)
		if errGo := out.Flush(); errGo != nil {
			logW.Warn("output closed", "error", errGo)
			return
		}
		logW.Debug("row", "rx_bytes", int64(rxBytes), "tx_bytes", int64(txBytes))
	}
}
