// Command therapy-tracker samples two push-buttons, classifies press
// patterns and forwards session metrics over the wireless serial link, the
// wired console and (optionally) MQTT.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sweeney/therapy-tracker/internal/gpio"
	"github.com/sweeney/therapy-tracker/internal/logic"
	"github.com/sweeney/therapy-tracker/internal/mqtt"
	"github.com/sweeney/therapy-tracker/internal/report"
	"github.com/sweeney/therapy-tracker/internal/status"
)

type config struct {
	poll        time.Duration
	debounce    time.Duration
	combine     time.Duration
	sequence    time.Duration
	heartbeat   time.Duration
	pinLeft     int
	pinRight    int
	pinLED      int
	gpioDriver  string
	linkPort    string
	linkBaud    int
	consolePort string
	consoleBaud int
	broker      string
	device      string
	logLevel    string
}

func main() {
	root := newRootCmd()
	root.SilenceUsage = true
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfg config
	cmd := &cobra.Command{
		Use:   "therapy-tracker",
		Short: "Classify therapy button presses and report session metrics",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return configureLogging(cfg.logLevel)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cfg)
		},
	}

	pf := cmd.PersistentFlags()
	pf.IntVar(&cfg.pinLeft, "pin-left", gpio.DefaultPinLeft, "BCM pin number for the left button")
	pf.IntVar(&cfg.pinRight, "pin-right", gpio.DefaultPinRight, "BCM pin number for the right button")
	pf.StringVar(&cfg.gpioDriver, "gpio-driver", gpio.DriverCdev, `GPIO driver: "cdev" or "periph"`)
	pf.StringVar(&cfg.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	f := cmd.Flags()
	f.DurationVar(&cfg.poll, "poll", 5*time.Millisecond, "Button polling interval")
	f.DurationVar(&cfg.debounce, "debounce", logic.DefaultDebounceDelay, "Minimum time between accepted presses")
	f.DurationVar(&cfg.combine, "combine", logic.DefaultCombineWindow, "Wait before re-sampling to detect a two-button press")
	f.DurationVar(&cfg.sequence, "sequence-timeout", logic.DefaultSequenceTimeout, "Quiet time that closes a press pattern (0 reports every press)")
	f.DurationVar(&cfg.heartbeat, "heartbeat", 15*time.Minute, "Heartbeat interval (0 to disable)")
	f.IntVar(&cfg.pinLED, "pin-led", gpio.DefaultPinLED, "BCM pin number for the status LED (-1 to disable)")
	f.StringVar(&cfg.linkPort, "link-port", "/dev/rfcomm0", "Wireless serial link device (empty to disable)")
	f.IntVar(&cfg.linkBaud, "link-baud", report.DefaultBaud, "Wireless serial link baud rate")
	f.StringVar(&cfg.consolePort, "console-port", "", "Wired console UART (empty for stdout)")
	f.IntVar(&cfg.consoleBaud, "console-baud", report.DefaultBaud, "Wired console baud rate")
	f.StringVar(&cfg.broker, "broker", "", "MQTT broker address (empty to disable)")
	f.StringVar(&cfg.device, "device", "therapy-tracker", "Device name (MQTT client ID and topic)")

	cmd.AddCommand(stateCmd(&cfg))
	return cmd
}

func stateCmd(cfg *config) *cobra.Command {
	return &cobra.Command{
		Use:   "state",
		Short: "Print the current button state and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reader, err := gpio.Open(cfg.gpioDriver, cfg.pinLeft, cfg.pinRight)
			if err != nil {
				return fmt.Errorf("init gpio: %w", err)
			}
			defer reader.Close()

			left, right, err := reader.Read()
			if err != nil {
				return fmt.Errorf("read gpio: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "LEFT: %s, RIGHT: %s\n", stateString(left), stateString(right))
			return nil
		},
	}
}

func configureLogging(level string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	log.SetLevel(lvl)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	return nil
}

func run(cfg config) error {
	reader, err := gpio.Open(cfg.gpioDriver, cfg.pinLeft, cfg.pinRight)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer reader.Close()

	led, err := gpio.OpenLED(cfg.pinLED)
	if err != nil {
		log.WithError(err).Warn("status led unavailable")
		led = gpio.NopLED{}
	}
	defer led.Close()

	reporters := report.NewMulti()
	defer reporters.Close()

	console, err := report.OpenConsole(cfg.consolePort, cfg.consoleBaud, nil)
	if err != nil {
		return err
	}
	reporters.Add("console", console)

	var link *report.LinkReporter
	if cfg.linkPort != "" {
		link = report.NewLinkReporter(report.LinkConfig{Port: cfg.linkPort, Baud: cfg.linkBaud})
		reporters.Add("link", link)
	}

	var publisher *mqtt.RealPublisher
	if cfg.broker != "" {
		publisher, err = mqtt.NewRealPublisher(cfg.broker, cfg.device)
		if err != nil {
			return fmt.Errorf("init mqtt: %w", err)
		}
		defer publisher.Close()
		reporters.Add("mqtt", report.ReporterFunc(publisher.Publish))
	}

	tracker := status.NewTracker(cfg.device, time.Now(), status.Config{
		PollMs:      cfg.poll.Milliseconds(),
		DebounceMs:  cfg.debounce.Milliseconds(),
		CombineMs:   cfg.combine.Milliseconds(),
		SequenceMs:  cfg.sequence.Milliseconds(),
		HeartbeatMs: cfg.heartbeat.Milliseconds(),
		GPIODriver:  cfg.gpioDriver,
		LinkPort:    cfg.linkPort,
		ConsolePort: cfg.consolePort,
		Broker:      cfg.broker,
	})
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}

	d := newDaemon(reader, cfg, time.Sleep, time.Now)
	d.reporter = reporters
	d.led = led
	d.link = link
	d.tracker = tracker
	if publisher != nil {
		d.publisher = publisher
		d.mqttStatus = publisher
	}

	d.publishLifecycle(mqtt.EventStartup, "", time.Now())

	log.Printf("started: poll=%v debounce=%v combine=%v sequence=%v link=%q broker=%q",
		cfg.poll, cfg.debounce, cfg.combine, cfg.sequence, cfg.linkPort, cfg.broker)

	ticker := time.NewTicker(cfg.poll)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return d.runLoop(ticker.C, sigCh)
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}

func stateString(pressed bool) string {
	if pressed {
		return "PRESSED"
	}
	return "RELEASED"
}
