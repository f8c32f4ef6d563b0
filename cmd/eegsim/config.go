package main

import (
	"fmt"
	"log"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/usnistgov/eegsim"
	"github.com/usnistgov/eegsim/internal/simdb"
	"gopkg.in/natefinch/lumberjack.v2"
)

// settings holds the fully resolved run configuration: viper values from the
// config file, overridden by any command-line flags that were set.
type settings struct {
	StreamName   string
	Channels     int
	SamplingRate float64
	BasePort     int
	SendBuffer   int
	Verbose      bool
	Database     bool
	DatabaseAddr string
	RecordFile   string
	RecordTicks  int
	Duration     time.Duration
	Ticks        uint64
}

// setDefaults registers the default value of every configuration key.
func setDefaults(v *viper.Viper) {
	v.SetDefault("StreamName", eegsim.DefaultStreamName)
	v.SetDefault("Channels", eegsim.DefaultChannels)
	v.SetDefault("SamplingRate", eegsim.DefaultSamplingRate)
	v.SetDefault("BasePort", eegsim.DefaultBasePort)
	v.SetDefault("SendBuffer", 0)
	v.SetDefault("Verbose", false)
	v.SetDefault("Database", false)
	v.SetDefault("DatabaseAddr", simdb.DefaultAddress)
	v.SetDefault("RecordFile", "")
	v.SetDefault("RecordTicks", 10240)
}

// resolveSettings reads all keys from v. Values in `overrides` (keyed by
// config key, set only for flags the user actually gave) take precedence.
func resolveSettings(v *viper.Viper, overrides map[string]interface{}) settings {
	for key, value := range overrides {
		v.Set(key, value)
	}
	return settings{
		StreamName:   v.GetString("StreamName"),
		Channels:     v.GetInt("Channels"),
		SamplingRate: v.GetFloat64("SamplingRate"),
		BasePort:     v.GetInt("BasePort"),
		SendBuffer:   v.GetInt("SendBuffer"),
		Verbose:      v.GetBool("Verbose"),
		Database:     v.GetBool("Database"),
		DatabaseAddr: v.GetString("DatabaseAddr"),
		RecordFile:   v.GetString("RecordFile"),
		RecordTicks:  v.GetInt("RecordTicks"),
		Duration:     v.GetDuration("Duration"),
		Ticks:        v.GetUint64("Ticks"),
	}
}

// makeFileExist checks that dir/filename exists, and creates the directory
// and file if it doesn't.
func makeFileExist(dir, filename string) (string, error) {
	// Replace 1 instance of "$HOME" in the path with the actual home directory.
	if strings.Contains(dir, "$HOME") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dir = strings.Replace(dir, "$HOME", home, 1)
	}

	// Create directory <path>, if needed
	if _, err := os.Stat(dir); err != nil {
		if !os.IsNotExist(err) {
			return "", err
		}
		if err2 := os.MkdirAll(dir, 0775); err2 != nil {
			return "", err2
		}
	}

	// Create an empty file path/filename, if it doesn't exist.
	fullname := path.Join(dir, filename)
	_, err := os.Stat(fullname)
	if os.IsNotExist(err) {
		f, err2 := os.OpenFile(fullname, os.O_WRONLY|os.O_CREATE, 0664)
		if err2 != nil {
			return "", err2
		}
		f.Close()
	}
	return fullname, nil
}

// setupViper sets up the viper configuration manager: says where to find config
// files and the filename and suffix. Sets the defaults.
func setupViper(v *viper.Viper, dotEegsim string) error {
	setDefaults(v)

	const filename string = "config"
	const suffix string = ".yaml"
	if _, err := makeFileExist(dotEegsim, filename+suffix); err != nil {
		return err
	}

	v.SetConfigName(filename)
	v.SetConfigType("yaml")
	v.AddConfigPath(filepath.FromSlash("/etc/eegsim"))
	v.AddConfigPath(dotEegsim)
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil { // Handle errors reading the config file
		return fmt.Errorf("error reading config file: %w", err)
	}
	return nil
}

func startLogger(pfname string) *log.Logger {
	probLogger := log.New(os.Stderr, "", log.LstdFlags)
	probLogger.SetOutput(&lumberjack.Logger{
		Filename:   pfname,
		MaxSize:    10,   // megabytes after which new file is created
		MaxBackups: 4,    // number of backups
		MaxAge:     180,  // days
		Compress:   true, // whether to gzip the backups
	})
	return probLogger
}
