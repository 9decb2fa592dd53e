// Command shipperdemo wires a Shipper via facebookgo/inject and
// facebookgo/startstop, the same dependency-injection pattern the
// teacher's refinery binary uses for its own App graph, then streams a
// handful of events through it before draining and exiting.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/facebookgo/inject"
	"github.com/facebookgo/startstop"
	"github.com/sirupsen/logrus"

	"github.com/relayhive/shipper/config"
	"github.com/relayhive/shipper/shipper"
	"github.com/relayhive/shipper/transmit"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to a YAML or TOML shipper config file")
	flag.Parse()

	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.Load(*configPath)
	} else {
		cfg, err = config.Default()
	}
	if err != nil {
		fmt.Printf("%+v\n", err)
		os.Exit(1)
	}

	lgr, err := cfg.Logger.BuildLogger(nil)
	if err != nil {
		fmt.Printf("%+v\n", err)
		os.Exit(1)
	}
	met, err := cfg.Metrics.BuildMetrics()
	if err != nil {
		fmt.Printf("%+v\n", err)
		os.Exit(1)
	}

	ring := cfg.NewResponseRing()
	sender, err := cfg.BuildSender(version, lgr, met, ring.Callback)
	if err != nil {
		fmt.Printf("%+v\n", err)
		os.Exit(1)
	}

	s := &shipper.Shipper{Version: version}

	var g inject.Graph
	err = g.Provide(
		&inject.Object{Value: cfg},
		&inject.Object{Value: lgr},
		&inject.Object{Value: met},
		&inject.Object{Value: sender},
		&inject.Object{Value: s},
	)
	if err != nil {
		fmt.Printf("failed to provide injection graph: %+v\n", err)
		os.Exit(1)
	}
	if err := g.Populate(); err != nil {
		fmt.Printf("failed to populate injection graph: %+v\n", err)
		os.Exit(1)
	}

	ststLogger := logrus.New()
	if err := startstop.Start(g.Objects(), ststLogger); err != nil {
		fmt.Printf("failed to start injected dependencies: %+v\n", err)
		os.Exit(1)
	}
	defer startstop.Stop(g.Objects(), ststLogger)

	for i := 0; i < 5; i++ {
		s.SendEvent(&transmit.ValidatedEvent{
			Timestamp:  time.Now(),
			APIHost:    cfg.APIHost,
			WriteKey:   cfg.WriteKey,
			Dataset:    cfg.Dataset,
			SampleRate: cfg.SampleRate,
			PostData:   map[string]any{"seq": i},
			Metadata:   i,
		})
	}

	select {
	case <-s.Flush():
	case <-time.After(cfg.Timeout + 5*time.Second):
	}

	for _, o := range ring.Drain() {
		fmt.Printf("outcome: metadata=%v status=%d err=%v\n", o.Metadata, o.StatusCode, o.Err)
	}
}
