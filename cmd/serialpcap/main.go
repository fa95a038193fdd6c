package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"serialpcap/config"
	"serialpcap/internal/capture"
	"serialpcap/internal/collectlogs"
	"serialpcap/internal/logger"
	"serialpcap/internal/pcap"
	"serialpcap/internal/serialport"
	"serialpcap/internal/version"
)

var (
	flagBaud     int
	flagParity   string
	flagStopBits int
	flagGap      int
	flagOutput   string
	flagPipe     bool
	flagDatalink string
	flagSnapLen  uint32
	flagConfig   string
	flagLogLevel string
	flagLogFile  string
)

var rootCmd = &cobra.Command{
	Use:   "serialpcap <port>",
	Short: "Captures serial port data and writes it to a pcap file",
	Long: `serialpcap captures raw bytes from a serial port and writes them as
timestamped records in the classic PCAP format, so the traffic can be
inspected with standard analysis tools such as Wireshark.

Bytes arriving back-to-back are grouped into one record; a quiet gap on
the line (--gap) marks the record boundary.`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runCapture,
	Version:       version.Version,
}

var infoCmd = &cobra.Command{
	Use:   "info <file>",
	Short: "Print a summary of a capture file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		info, err := pcap.Describe(args[0])
		if err != nil {
			return err
		}
		fmt.Println(info)
		return nil
	},
}

var collectLogsCmd = &cobra.Command{
	Use:   "collect-logs",
	Short: "Package logs, captures, and diagnostics into a zip archive for support",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		zipName := fmt.Sprintf("serialpcap-logs-%s.zip", time.Now().Format("20060102-150405"))
		in := collectlogs.Inputs{
			LogFile:    flagLogFile,
			ConfigFile: flagConfig,
			CaptureDir: ".",
		}
		if err := collectlogs.Collect(zipName, in); err != nil {
			return fmt.Errorf("failed to collect logs: %w", err)
		}
		fmt.Printf("Created %s with logs, config, and diagnostics.\n", zipName)
		return nil
	},
}

func init() {
	rootCmd.Flags().IntVarP(&flagBaud, "baud", "b", 9600, "serial port speed")
	rootCmd.Flags().StringVarP(&flagParity, "parity", "y", "n", "o (=odd) | e (=even) | n (=none)")
	rootCmd.Flags().IntVarP(&flagStopBits, "stopbits", "p", 1, "1 | 2")
	rootCmd.Flags().IntVarP(&flagGap, "gap", "g", 0, "inter frame gap in milliseconds (default from config, 10)")
	rootCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "output file prefix or pipe (default port name)")
	rootCmd.Flags().BoolVar(&flagPipe, "pipe", false, "treat the output name as exact, not a prefix")
	rootCmd.Flags().StringVar(&flagDatalink, "datalink", "", "link type written to the file header (default USER0)")
	rootCmd.Flags().Uint32Var(&flagSnapLen, "snaplen", 0, "maximum payload bytes stored per record (default 1024)")

	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "JSON config file")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "minimum log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "rotating log file (in addition to stdout)")

	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(collectLogsCmd)
}

// loadConfig merges the optional config file with command line flags; set
// flags win over the file.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if flagConfig != "" {
		loaded, err := config.LoadConfig(flagConfig)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if cmd.Flags().Changed("gap") {
		cfg.Capture.FrameGapMS = flagGap
	}
	if cmd.Flags().Changed("datalink") {
		cfg.Capture.Datalink = flagDatalink
	}
	if cmd.Flags().Changed("snaplen") {
		cfg.Capture.SnapLen = flagSnapLen
	}
	if flagLogLevel != "" {
		cfg.Logging.Level = flagLogLevel
	}
	if flagLogFile != "" {
		cfg.Logging.File = flagLogFile
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *logger.Logger {
	level, _ := logger.ParseLogLevel(cfg.Logging.Level)
	var w io.Writer = os.Stdout
	if cfg.Logging.File != "" {
		w = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   cfg.Logging.File,
			MaxSize:    cfg.Logging.MaxSizeMB,
			MaxAge:     cfg.Logging.RetentionDays,
			MaxBackups: 3,
			Compress:   true,
		})
	}
	return logger.New(w, level)
}

// outputPath resolves the output file name: an exact name in pipe mode,
// otherwise a timestamped "<prefix>-YYYYMMDD-HHMMSS.pcap".
func outputPath(portName string) string {
	prefix := flagOutput
	if prefix == "" {
		prefix = filepath.Base(portName)
	}
	if flagPipe {
		return prefix
	}
	return fmt.Sprintf("%s-%s.pcap", prefix, time.Now().Format("20060102-150405"))
}

func runCapture(cmd *cobra.Command, args []string) error {
	portName := args[0]

	switch flagParity {
	case "n", "e", "o":
	default:
		return fmt.Errorf("invalid parity %q (valid: n, e, o)", flagParity)
	}
	if flagStopBits != 1 && flagStopBits != 2 {
		return fmt.Errorf("invalid stop bits %d (valid: 1, 2)", flagStopBits)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	link, err := pcap.ParseLinkType(cfg.Capture.Datalink)
	if err != nil {
		return err
	}
	encoder := pcap.NewEncoder(cfg.Capture.SnapLen, link)

	outPath := outputPath(portName)
	sink, err := pcap.OpenSink(outPath, encoder.FileHeader(), pcap.FlushPolicy{
		EveryRecords: cfg.Capture.FlushEveryRecords,
		MaxDelay:     time.Duration(cfg.Capture.FlushIntervalMS) * time.Millisecond,
	})
	if err != nil {
		return err
	}

	port, err := serialport.Open(serialport.Config{
		Name:         portName,
		BaudRate:     flagBaud,
		Parity:       flagParity[0],
		StopBits:     flagStopBits,
		FrameGap:     time.Duration(cfg.Capture.FrameGapMS) * time.Millisecond,
		MaxChunkSize: cfg.Capture.MaxChunkSize,
	})
	if err != nil {
		sink.Close()
		return err
	}
	defer port.Close()

	log.Info("capturing %s at %d baud to %s", portName, flagBaud, outPath)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	session := capture.NewSession(port, capture.SystemClock{}, encoder, sink, log)
	summary, err := session.Run(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Wrote %d records (%d bytes) to %s\n", summary.Records, summary.Bytes, outPath)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
