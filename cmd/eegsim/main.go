// eegsim simulates a multi-channel EEG amplifier. It publishes synthetic
// samples at a nominal rate on a ZMQ stream until interrupted.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/viper"
	"github.com/usnistgov/eegsim"
	"github.com/usnistgov/eegsim/internal/simdb"
)

var githash = "githash not computed"
var gitdate = "git date not computed"
var buildDate = "build date not computed"

// flagValues are the raw command-line values, before merging with viper.
type flagValues struct {
	name        string
	channels    int
	rate        float64
	port        int
	duration    time.Duration
	ticks       uint64
	record      string
	recordTicks int
	verbose     bool
}

// flagKeys maps each flag name to the config key it overrides.
var flagKeys = map[string]string{
	"n": "StreamName", "name": "StreamName",
	"c": "Channels", "channels": "Channels",
	"sr": "SamplingRate", "sampling_rate": "SamplingRate",
	"port":         "BasePort",
	"duration":     "Duration",
	"ticks":        "Ticks",
	"record":       "RecordFile",
	"record-ticks": "RecordTicks",
	"v":            "Verbose",
}

func defineFlags(fs *flag.FlagSet, fv *flagValues) {
	fs.StringVar(&fv.name, "n", eegsim.DefaultStreamName, "stream name (shorthand)")
	fs.StringVar(&fv.name, "name", eegsim.DefaultStreamName, "stream name")
	fs.IntVar(&fv.channels, "c", eegsim.DefaultChannels, "number of EEG channels to simulate (shorthand)")
	fs.IntVar(&fv.channels, "channels", eegsim.DefaultChannels, "number of EEG channels to simulate")
	fs.Float64Var(&fv.rate, "sr", eegsim.DefaultSamplingRate, "sampling rate in Hz (shorthand)")
	fs.Float64Var(&fv.rate, "sampling_rate", eegsim.DefaultSamplingRate, "sampling rate in Hz")
	fs.IntVar(&fv.port, "port", eegsim.DefaultBasePort, "data port; the status port is one higher")
	fs.DurationVar(&fv.duration, "duration", 0, "stop after this much stream time (0 = run until interrupted)")
	fs.Uint64Var(&fv.ticks, "ticks", 0, "stop after this many samples (0 = run until interrupted)")
	fs.StringVar(&fv.record, "record", "", "also save the first samples to this .npy file")
	fs.IntVar(&fv.recordTicks, "record-ticks", 10240, "number of samples to save with -record")
	fs.BoolVar(&fv.verbose, "v", false, "verbose: dump the resolved configuration")
}

// flagOverrides returns config-key overrides for just the flags that were set.
func flagOverrides(fs *flag.FlagSet, fv *flagValues) map[string]interface{} {
	values := map[string]interface{}{
		"StreamName":   fv.name,
		"Channels":     fv.channels,
		"SamplingRate": fv.rate,
		"BasePort":     fv.port,
		"Duration":     fv.duration,
		"Ticks":        fv.ticks,
		"RecordFile":   fv.record,
		"RecordTicks":  fv.recordTicks,
		"Verbose":      fv.verbose,
	}
	overrides := make(map[string]interface{})
	fs.Visit(func(f *flag.Flag) {
		if key, ok := flagKeys[f.Name]; ok {
			overrides[key] = values[key]
		}
	})
	return overrides
}

func main() {
	os.Exit(run())
}

func run() int {
	buildDate = strings.Replace(buildDate, ".", " ", -1) // workaround for Make problems
	eegsim.Build.Date = buildDate
	eegsim.Build.Githash = githash
	eegsim.Build.Gitdate = gitdate
	eegsim.Build.Summary = fmt.Sprintf("eegsim version %s (git commit %s of %s)", eegsim.Build.Version, githash, gitdate)
	if host, err := os.Hostname(); err == nil {
		eegsim.Build.Host = host
	} else {
		eegsim.Build.Host = "host not detected"
	}

	var fv flagValues
	defineFlags(flag.CommandLine, &fv)
	printVersion := flag.Bool("version", false, "print version and quit")
	flag.Parse()

	if *printVersion {
		fmt.Printf("This is eegsim version %s\n", eegsim.Build.Version)
		fmt.Printf("Git commit hash: %s\n", githash)
		fmt.Printf("Build time: %s\n", buildDate)
		fmt.Printf("Built on go version %s\n", runtime.Version())
		return 0
	}

	// Start logging problems and updates to 2 log files.
	HOME, err := os.UserHomeDir()
	if err != nil {
		fmt.Printf("Error finding User Home Dir: %s\n", err)
		return 1
	}
	dotEegsim := filepath.Join(HOME, ".eegsim")
	logdir := filepath.Join(dotEegsim, "logs")
	problemname, err := makeFileExist(logdir, "problems.log")
	if err != nil {
		fmt.Println(err)
		return 1
	}
	logname, err := makeFileExist(logdir, "updates.log")
	if err != nil {
		fmt.Println(err)
		return 1
	}
	eegsim.ProblemLogger = startLogger(problemname)
	eegsim.UpdateLogger = startLogger(logname)
	eegsim.UpdateLogger.Printf("\n\n%s\n", eegsim.Build.Summary)

	// Find config file, creating it if needed, and read it.
	v := viper.GetViper()
	if err := setupViper(v, dotEegsim); err != nil {
		fmt.Println(err)
		return 1
	}
	s := resolveSettings(v, flagOverrides(flag.CommandLine, &fv))
	if s.Verbose {
		fmt.Print(spew.Sdump(s))
		eegsim.UpdateLogger.Print(spew.Sdump(s))
	}

	fmt.Println("Setup")
	fmt.Println("=====")
	fmt.Printf("Sampling rate: %v\n", s.SamplingRate)
	fmt.Printf("Number of EEG channels: %d\n\n", s.Channels)

	config, err := eegsim.NewStreamConfig(s.StreamName, s.Channels, s.SamplingRate)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		eegsim.ProblemLogger.Println(err)
		return 1
	}

	ports := eegsim.PortsFromBase(s.BasePort)
	fmt.Println("EEG stream")
	fmt.Println("==========")
	fmt.Printf("ID: %s\n", config.SourceID())
	fmt.Printf("Name: %s\n", config.Name())
	fmt.Printf("Data:   %s\n", eegsim.ConnectAddress(eegsim.Build.Host, ports.Data))
	fmt.Printf("Status: %s\n\n", eegsim.ConnectAddress(eegsim.Build.Host, ports.Status))

	opener := eegsim.ZMQOpener(ports, s.SendBuffer)
	if s.RecordFile != "" {
		opener = eegsim.RecordingOpener(opener, s.RecordFile, s.RecordTicks)
	}
	sim := eegsim.NewSimulator(config, opener)
	sim.Duration = s.Duration
	sim.MaxTicks = s.Ticks

	db := simdb.DummyDBConnection()
	if s.Database {
		db = simdb.StartDBConnection(s.DatabaseAddr, &simdb.StreamActivityMessage{
			ID:         config.SourceID(),
			Hostname:   eegsim.Build.Host,
			Githash:    githash,
			Version:    eegsim.Build.Version,
			GoVersion:  runtime.Version(),
			CPUs:       runtime.NumCPU(),
			StreamName: config.Name(),
			Nchannels:  config.Nchan(),
			SampleRate: config.SampleRate(),
			Start:      time.Now(),
		})
		if !db.IsConnected() {
			eegsim.ProblemLogger.Printf("Not recording activity in database: %v\n", db.Err())
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Println("EEG stream pushing samples...")
	fmt.Println("Press Ctrl+C to finish")
	result, err := sim.Run(ctx)
	db.Disconnect(result.Ticks, result.Status.String())
	if err != nil {
		fmt.Printf("\nError: %v\n", err)
		if errors.Is(err, eegsim.ErrPublisherInit) {
			fmt.Println("Is another stream already using these ports? Try -port.")
		}
		return 1
	}
	fmt.Printf("\nPublished %d samples in %v (%s).\n", result.Ticks, result.Elapsed.Round(time.Millisecond), result.Status)
	fmt.Println("Stream finished.")
	return 0
}
