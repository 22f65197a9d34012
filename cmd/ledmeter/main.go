package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path"
	"syscall"
	"time"

	"github.com/karlmutch/errors"
	logxi "github.com/mgutz/logxi/v1"

	meter "github.com/dlnetworks/wled-bandwidth-meter"
	"github.com/dlnetworks/wled-bandwidth-meter/model"
	"github.com/dlnetworks/wled-bandwidth-meter/version"

	"github.com/karlmutch/envflag" // Forked copy of https://github.com/GoBike/envflag
)

var (
	logger = logxi.New("ledmeter")

	verbose = flag.Bool("v", false, "When enabled will print internal logging for this tool")

	configPath = flag.String("config", "", "YAML configuration file, watched for changes while running")
	maxGbps    = flag.Float64("max", 10.0, "Bandwidth in Gbps at which a direction lights all of its LEDs")
	color      = flag.String("color", "0099FF", "Comma separated hex colors used for both directions")
	txColor    = flag.String("tx-color", "", "Comma separated hex colors for upload, defaults to -color")
	rxColor    = flag.String("rx-color", "", "Comma separated hex colors for download, defaults to -color")
	direction  = flag.String("direction", "mirrored", "Fill direction, one of mirrored, opposing, left or right")
	swap       = flag.Bool("swap", false, "Swap the halves of the strip used for upload and download")
	leds       = flag.Int("leds", 1200, "Total number of LEDs on the strip")
	fps        = flag.Float64("fps", 60.0, "Frames per second sent to the controller")
	iface      = flag.String("int", "en0", "Comma separated network interfaces to measure")
	wledIP     = flag.String("wled-ip", "led.local", "LED controller, a host for DDP or opc://host:port for an OPC server")
	host       = flag.String("host", "", "Measure a remote machine over ssh rather than this one")
	feedCmd    = flag.String("feed-cmd", "", "Shell command printing netstat or /proc/net/dev rows, replaces the built in feeds")
	test       = flag.String("test", "", "Blink the listed LEDs, for example 0-5,10, rather than running the meter")
	quiet      = flag.Bool("quiet", false, "Suppress the per sample bandwidth lines")
)

func usage() {
	fmt.Fprintln(os.Stderr, path.Base(os.Args[0]))
	fmt.Fprintln(os.Stderr, "usage: ", os.Args[0], "[options]       bandwidth → DDP/OPC (ledmeter)      ", version.GitHash, "    ", version.BuildTime)
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "ledmeter displays network bandwidth as animated bars on an addressable LED strip driven by WLED or fadecandy")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Options:")
	fmt.Fprintln(os.Stderr, "")
	flag.PrintDefaults()
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Environment Variables:")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "options can also be extracted from environment variables by changing dashes '-' to underscores and using upper case.")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "log levels are handled by the LOGXI env variables, these are documented at https://github.com/mgutz/logxi")
}

func init() {
	flag.Usage = usage
}

// overrides returns a function that copies the options given on the command
// line, or through the environment, over a configuration
func overrides() func(cfg *model.Config) {
	set := map[string]struct{}{}
	flag.Visit(func(f *flag.Flag) {
		set[f.Name] = struct{}{}
	})
	return mergeFlags(set)
}

// mergeFlags copies the values of the named flags over a configuration
func mergeFlags(set map[string]struct{}) func(cfg *model.Config) {
	return func(cfg *model.Config) {
		for name := range set {
			switch name {
			case "max":
				cfg.MaxGbps = *maxGbps
			case "color":
				// A shared color replaces any per direction colors from the file
				// unless those were also given
				cfg.Color = *color
				if _, isPresent := set["tx-color"]; !isPresent {
					cfg.TxColor = ""
				}
				if _, isPresent := set["rx-color"]; !isPresent {
					cfg.RxColor = ""
				}
			case "tx-color":
				cfg.TxColor = *txColor
			case "rx-color":
				cfg.RxColor = *rxColor
			case "direction":
				cfg.Direction = *direction
			case "swap":
				cfg.Swap = *swap
			case "leds":
				cfg.TotalLEDs = *leds
			case "fps":
				cfg.FPS = *fps
			case "int":
				cfg.Interface = *iface
			case "wled-ip":
				cfg.WledIP = *wledIP
			}
		}
		cfg.Normalize()
	}
}

func main() {

	// Parse the CLI flags
	if !flag.Parsed() {
		envflag.Parse()
	}

	// Turn off logging regardless of the default levels if the verbose flag is not enabled.
	// By design this is a CLI tool and outputs information that is expected to be used by shell
	// scripts etc
	//
	if *verbose {
		logger.SetLevel(logxi.LevelDebug)
	}

	logger.Debug(fmt.Sprintf("%s built at %s, against commit id %s\n", os.Args[0], version.BuildTime, version.GitHash))

	quitC := make(chan struct{})

	stopC := make(chan os.Signal, 1)
	signal.Notify(stopC, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-stopC
		close(quitC)
	}()

	if err := run(quitC); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(-1)
	}
}

func run(quitC chan struct{}) (err errors.Error) {

	cfg, err := meter.LoadConfig(*configPath)
	if err != nil {
		return err
	}
	merge := overrides()
	merge(cfg)

	sink, err := meter.NewSink(cfg.WledIP)
	if err != nil {
		return err
	}
	defer sink.Close()

	if len(*test) != 0 {
		blinkLEDs, err := meter.ParseLEDNumbers(*test)
		if err != nil {
			return err
		}
		fmt.Fprintf(msgV, "Test mode: blinking LEDs %v on %s\n", blinkLEDs, cfg.WledIP)
		return meter.Blink(sink, blinkLEDs, time.Second, quitC)
	}

	errorC := make(chan errors.Error, 4)

	gw := &meter.Gateway{
		Config:     cfg,
		ConfigPath: *configPath,
		Host:       *host,
		FeedCmd:    *feedCmd,
		Overrides:  merge,
		Sink:       sink,
	}

	if len(*host) != 0 {
		fmt.Fprintf(msgV, "Connecting to %s, enter your ssh password if prompted\n", *host)
	}

	updater, subscribeC, err := gw.Start(errorC, quitC)
	if err != nil {
		return err
	}

	if !*quiet {
		go runMonitoring(updater, subscribeC, quitC)
	}

	msgWatch(errorC, quitC)
	return nil
}
