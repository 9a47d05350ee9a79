// Command hmpdetector recognizes human motion primitives from a wrist-worn
// accelerometer: it trains per-motion models from recorded trials, classifies
// recorded or live streams against them, and extracts activation intervals.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/wearable-data/hmpdetector/internal/bracelet"
	"github.com/wearable-data/hmpdetector/internal/classifier"
	"github.com/wearable-data/hmpdetector/internal/config"
	"github.com/wearable-data/hmpdetector/internal/creator"
	"github.com/wearable-data/hmpdetector/internal/device"
	"github.com/wearable-data/hmpdetector/internal/publish"
	"github.com/wearable-data/hmpdetector/internal/report"
	"github.com/wearable-data/hmpdetector/internal/serialmux"
)

var (
	// operations (exactly one per run)
	modelMode   = flag.Bool("model", false, "create the models of every motion in the dataset")
	validate    = flag.String("validate", "", "validate the named model against recorded trials")
	testTrial   = flag.String("test", "", "off-line classification of one long recorded trial")
	classify    = flag.String("classify", "", "on-line classification of a serial port stream")
	braceletArg = flag.String("bracelet", "", "on-line classification plus interval tracking of a serial port stream")
	reason      = flag.String("reason", "", "off-line interval reasoning over a recorded possibilities file")
	reportArg   = flag.String("report", "", "render a recorded possibilities file as an HTML chart")

	// operation parameters
	trials     = flag.Int("trials", 1, "number of validation trials (with -validate)")
	reportOut  = flag.String("out", "report.html", "output path (with -report)")
	fixtures   = flag.String("fixtures", "", "recorded stream standing in for serial hardware (with -classify/-bracelet)")
	deviceName = flag.String("device", "mpu6050", "wrist device driver")
	dataset    = flag.String("dataset", "Sweden", "dataset name under the models directory")

	// paths
	modelsDir     = flag.String("models-dir", "Models", "root directory of model datasets")
	validationDir = flag.String("validation-dir", "Validation", "root directory of validation trials")
	resultsDir    = flag.String("results-dir", "Results", "root directory for result files")
	tuningPath    = flag.String("tuning", "", "optional detector tuning JSON")

	// publishing
	publisher = flag.String("publish", "log", "publisher backend: log, mqtt or sqlite")
	logPath   = flag.String("log-file", "log.txt", "tuple log path (with -publish log)")
	broker    = flag.String("broker", "tcp://localhost:1883", "broker URL (with -publish mqtt)")
	dbPath    = flag.String("db-file", "tuples.db", "tuple store path (with -publish sqlite)")
)

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintf(out, "Usage of %s:\n\n", os.Args[0])
	fmt.Fprint(out, `Typical calls:
  hmpdetector -model [-dataset Sweden]
  hmpdetector -validate climb -dataset Sweden -trials 6
  hmpdetector -test drink_drink_stand_sit_drink.txt
  hmpdetector -classify /dev/ttyUSB0
  hmpdetector -bracelet /dev/ttyUSB0 -publish mqtt
  hmpdetector -reason Results/longTest/res_drink.txt
  hmpdetector -report Results/longTest/res_drink.txt -out drink.html

Flags:
`)
	flag.PrintDefaults()
}

func newPublisher() (publish.Publisher, error) {
	switch *publisher {
	case "log":
		return publish.NewLogFile(*logPath)
	case "mqtt":
		return publish.NewMQTT(publish.MQTTConfig{
			Broker:   *broker,
			ClientID: "hmpdetector",
		})
	case "sqlite":
		return publish.NewSQLite(*dbPath)
	}
	return nil, fmt.Errorf("unknown publisher backend %q", *publisher)
}

func loadTuning() (*config.Tuning, error) {
	if *tuningPath == "" {
		return config.Empty(), nil
	}
	return config.Load(*tuningPath)
}

// runLive wires the serial mux, the classifier and (optionally) the interval
// tracker together and runs them until interrupted.
func runLive(port string, withTracker bool) error {
	tun, err := loadTuning()
	if err != nil {
		return err
	}
	dev, err := device.New(*deviceName)
	if err != nil {
		return err
	}
	pub, err := newPublisher()
	if err != nil {
		return err
	}
	defer pub.Close()

	var mux *serialmux.Mux
	if *fixtures != "" {
		data, err := os.ReadFile(*fixtures)
		if err != nil {
			return fmt.Errorf("read fixtures: %w", err)
		}
		mux = serialmux.NewMock(string(data))
	} else {
		mux, err = serialmux.NewReal(port)
		if err != nil {
			return fmt.Errorf("open serial port: %w", err)
		}
	}
	defer mux.Close()

	datasetDir := filepath.Join(*modelsDir, *dataset)
	c, err := classifier.New(datasetDir, dev, publish.Namespaced(pub, "HMPdetector."), tun)
	if err != nil {
		return err
	}
	c.ValidationDir = *validationDir
	c.ResultsDir = *resultsDir

	var tracker *bracelet.Tracker
	if withTracker {
		tracker = bracelet.NewTracker(c.ModelNames(), tun.GetSimpleOpenThreshold(), bracelet.LiveForwarder(pub))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup

	// run the monitor routine to manage IO on the serial port
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := mux.Monitor(ctx); err != nil && err != context.Canceled {
			log.Printf("serial monitor: %v", err)
		}
		// no more samples will arrive; let the classifier loop drain and stop
		stop()
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := c.Online(ctx, mux, tracker); err != nil && err != context.Canceled {
			log.Printf("classifier loop: %v", err)
		}
		stop()
	}()

	wg.Wait()
	return nil
}

func runOffline(run func(c *classifier.Classifier) error) error {
	tun, err := loadTuning()
	if err != nil {
		return err
	}
	dev, err := device.New(*deviceName)
	if err != nil {
		return err
	}
	pub, err := newPublisher()
	if err != nil {
		return err
	}
	defer pub.Close()

	datasetDir := filepath.Join(*modelsDir, *dataset)
	c, err := classifier.New(datasetDir, dev, publish.Namespaced(pub, "HMPdetector."), tun)
	if err != nil {
		return err
	}
	c.ValidationDir = *validationDir
	c.ResultsDir = *resultsDir
	return run(c)
}

// modelNames reads the dataset's classifier config for modes that need the
// model list without loading the models themselves.
func modelNames() ([]string, error) {
	specs, err := classifier.ParseConfigFile(filepath.Join(*modelsDir, *dataset, "Classifierconfig.txt"))
	if err != nil {
		return nil, err
	}
	names := make([]string, len(specs))
	for i, s := range specs {
		names[i] = s.Name
	}
	return names, nil
}

func run() error {
	modes := 0
	for _, selected := range []bool{
		*modelMode, *validate != "", *testTrial != "", *classify != "",
		*braceletArg != "", *reason != "", *reportArg != "",
	} {
		if selected {
			modes++
		}
	}
	if modes != 1 {
		flag.Usage()
		return fmt.Errorf("choose exactly one operation")
	}

	switch {
	case *modelMode:
		tun, err := loadTuning()
		if err != nil {
			return err
		}
		dev, err := device.New(*deviceName)
		if err != nil {
			return err
		}
		cr, err := creator.New(filepath.Join(*modelsDir, *dataset), dev, tun)
		if err != nil {
			return err
		}
		if err := cr.GenerateAll(); err != nil {
			return err
		}
		log.Printf("created dataset in %s", cr.DatasetDir)
		return nil

	case *validate != "":
		return runOffline(func(c *classifier.Classifier) error {
			if err := c.ValidateModel(*validate, *dataset, *trials); err != nil {
				return err
			}
			log.Printf("results in %s", filepath.Join(*resultsDir, *dataset))
			return nil
		})

	case *testTrial != "":
		return runOffline(func(c *classifier.Classifier) error {
			if err := c.LongTest(*testTrial); err != nil {
				return err
			}
			log.Printf("results in %s", filepath.Join(*resultsDir, "longTest"))
			return nil
		})

	case *classify != "":
		return runLive(*classify, false)

	case *braceletArg != "":
		return runLive(*braceletArg, true)

	case *reason != "":
		names, err := modelNames()
		if err != nil {
			return err
		}
		dir, file := filepath.Split(*reason)
		if dir == "" {
			dir = "."
		}
		if err := bracelet.OfflineReason(dir, file, names); err != nil {
			return err
		}
		log.Printf("results in %s", filepath.Join(dir, "Rres_"+file))
		return nil

	case *reportArg != "":
		names, err := modelNames()
		if err != nil {
			// chart without series labels if the dataset config is absent
			names = nil
		}
		if err := report.WriteChart(*reportArg, *reportOut, names); err != nil {
			return err
		}
		log.Printf("chart written to %s", *reportOut)
		return nil
	}
	return nil
}

func main() {
	flag.Usage = usage
	flag.Parse()
	if args := flag.Args(); len(args) > 0 {
		flag.Usage()
		log.Fatalf("unexpected arguments: %s", strings.Join(args, " "))
	}
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
