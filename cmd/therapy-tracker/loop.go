package main

import (
	"os"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/sweeney/therapy-tracker/internal/gpio"
	"github.com/sweeney/therapy-tracker/internal/logic"
	"github.com/sweeney/therapy-tracker/internal/mqtt"
	"github.com/sweeney/therapy-tracker/internal/report"
	"github.com/sweeney/therapy-tracker/internal/status"
)

// daemon owns the single poll loop and everything it drives.
type daemon struct {
	reader     gpio.Reader
	classifier *logic.Classifier
	sequencer  *logic.Sequencer
	tally      *logic.Tally
	reporter   report.Reporter
	led        gpio.LED
	ledOn      bool
	heartbeat  time.Duration
	now        func() time.Time

	// Optional collaborators; nil when disabled.
	publisher  mqtt.Publisher
	mqttStatus mqtt.ConnectionStatus
	link       *report.LinkReporter
	tracker    *status.Tracker
}

func newDaemon(reader gpio.Reader, cfg config, sleep logic.Sleeper, now func() time.Time) *daemon {
	d := &daemon{
		reader:    reader,
		sequencer: logic.NewSequencer(cfg.sequence),
		tally:     logic.NewTally(now()),
		reporter:  report.NewMulti(),
		led:       gpio.NopLED{},
		heartbeat: cfg.heartbeat,
		now:       now,
	}
	d.classifier = logic.NewClassifier(cfg.debounce, cfg.combine, d.resample, sleep)
	return d
}

// resample re-reads the buttons for the classifier's combine window.
func (d *daemon) resample() (bool, bool, bool) {
	left, right, err := d.reader.Read()
	if err != nil {
		log.WithError(err).Warn("gpio re-sample error")
		return false, false, false
	}
	return left, right, true
}

func (d *daemon) runLoop(tick <-chan time.Time, sig <-chan os.Signal) error {
	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			d.publishLifecycle(mqtt.EventShutdown, signalName, d.now())
			return nil

		case <-tick:
			d.step(d.now())
		}
	}
}

// step runs one poll: sample, classify, group, report.
func (d *daemon) step(t time.Time) {
	left, right, err := d.reader.Read()
	if err != nil {
		log.WithError(err).Warn("gpio read error")
	} else if c := d.classifier.Poll(logic.Input{Left: left, Right: right, Time: t}); c != logic.None {
		log.WithField("press", c).Debug("press")
		d.sequencer.Add(c, t)
	}

	if p, ok := d.sequencer.Flush(t); ok {
		m := d.tally.Record(p)
		log.WithFields(log.Fields{
			"key":      m.Key,
			"action":   m.Name,
			"interval": m.Interval,
			"count":    m.Count,
		}).Info("pattern")
		// Failures are logged per transport by the reporter.
		_ = d.reporter.Report(m)
		if d.tracker != nil {
			d.tracker.RecordMetric(m)
		}
	}

	d.setLED(d.sequencer.Pending())

	if d.tracker != nil {
		d.tracker.Update(d.tally.CountsSnapshot(), d.tally.Total())
	}

	if hb := d.tally.CheckHeartbeat(t, d.heartbeat); hb != nil {
		log.Printf("heartbeat: uptime=%v total=%d left=%d right=%d both=%d",
			hb.Uptime, hb.Total, hb.Counts.Left, hb.Counts.Right, hb.Counts.Both)
		if net := readNetworkInfo(); net != nil && d.tracker != nil {
			d.tracker.SetNetwork(net)
		}
		d.publishLifecycle(mqtt.EventHeartbeat, "", hb.Timestamp)
	}
}

// setLED lights the status LED while a pattern is being collected.
func (d *daemon) setLED(on bool) {
	if on == d.ledOn {
		return
	}
	if err := d.led.Set(on); err != nil {
		log.WithError(err).Warn("status led error")
		return
	}
	d.ledOn = on
}

// publishLifecycle sends a system event with a status snapshot over MQTT.
func (d *daemon) publishLifecycle(event, reason string, t time.Time) {
	if d.publisher == nil {
		return
	}

	ev := mqtt.SystemEvent{
		Timestamp: t,
		Event:     event,
		Reason:    reason,
		Retained:  event != mqtt.EventHeartbeat,
	}
	if d.tracker != nil {
		if d.mqttStatus != nil {
			d.tracker.SetMQTTConnected(d.mqttStatus.IsConnected())
		}
		if d.link != nil {
			d.tracker.SetLinkConnected(d.link.Connected())
		}
		ev.RawPayload = status.FormatStatusEvent(d.tracker.Snapshot(), event, reason)
	}

	if err := d.publisher.PublishSystem(ev); err != nil {
		log.WithError(err).Warnf("failed to publish %s event", event)
	} else {
		log.Debugf("published %s event", event)
	}
}
