package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"

	easy "git.fiblab.net/utils/logrus-easy-formatter"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/venomous-maker/RideshareSimulation/pkg/api"
	"github.com/venomous-maker/RideshareSimulation/pkg/config"
	"github.com/venomous-maker/RideshareSimulation/pkg/graph"
	osmparser "github.com/venomous-maker/RideshareSimulation/pkg/osm"
	"github.com/venomous-maker/RideshareSimulation/pkg/randengine"
	"github.com/venomous-maker/RideshareSimulation/pkg/routemodel"
	"github.com/venomous-maker/RideshareSimulation/pkg/sim"
)

var (
	configPath = flag.String("config", "", "YAML config file path")
	mapPath    = flag.String("map", "", "road network input (.osm.pbf extract or .bin cache), overrides config")
	listen     = flag.String("listen", "", "snapshot API listen address, overrides config")

	logLevels = map[string]logrus.Level{
		"trace": logrus.TraceLevel,
		"debug": logrus.DebugLevel,
		"info":  logrus.InfoLevel,
		"warn":  logrus.WarnLevel,
		"error": logrus.ErrorLevel,
		"off":   logrus.PanicLevel,
	}
	logLevel = flag.String("log.level", "info", "log level (trace debug info warn error off)")

	log = logrus.WithField("module", "ridesim")
)

func main() {
	// Local overrides first so flags and config see them.
	_ = godotenv.Load()
	flag.Parse()

	logrus.SetFormatter(&easy.Formatter{
		TimestampFormat: "2006-01-02 15:04:05.0000",
		LogFormat:       "[%module%] [%time%] [%lvl%] %msg%\n",
	})
	if level, ok := logLevels[*logLevel]; ok {
		logrus.SetLevel(level)
	} else {
		log.Panicf("log.level must be one of %v", logLevels)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *mapPath != "" {
		cfg.Map.Path = *mapPath
	}
	if *listen != "" {
		cfg.API.Listen = *listen
	}

	g, err := loadGraph(cfg.Map)
	if err != nil {
		log.Fatalf("map load: %v", err)
	}
	log.Infof("road graph: %d nodes, %d arcs", g.NumNodes, g.NumEdges)

	eng := randengine.New(cfg.Seed)
	model, err := routemodel.New(g, eng)
	if err != nil {
		log.Fatalf("route model: %v", err)
	}

	s := sim.New(model, eng, sim.Options{
		MaxVehicles:      cfg.Sim.MaxVehicles,
		MaxPassengers:    cfg.Sim.MaxPassengers,
		FailureLimit:     cfg.Sim.FailureLimit,
		DistancePerCycle: cfg.Sim.DistancePerCycle,
		TickInterval:     cfg.Sim.TickInterval(),
		GenerateInterval: cfg.Sim.GenerateInterval(),
		MatchInterval:    cfg.Sim.MatchInterval(),
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runID := uuid.NewString()
	log.Infof("run %s: %d vehicles, %d passengers", runID, cfg.Sim.MaxVehicles, cfg.Sim.MaxPassengers)

	s.Start(ctx)
	defer s.Stop()

	handlers := api.NewHandlers(s, runID)
	srvCfg := api.DefaultConfig(cfg.API.Listen)
	srvCfg.CORSOrigin = cfg.API.CORSOrigin
	if err := api.Serve(ctx, api.NewServer(srvCfg, handlers)); err != nil {
		log.Fatalf("api server: %v", err)
	}
}

// loadGraph reads the road network, from the binary cache when the path
// ends in .bin, otherwise by parsing an OSM PBF extract.
func loadGraph(m config.Map) (*graph.Graph, error) {
	var g *graph.Graph

	if strings.HasSuffix(m.Path, ".bin") {
		var err error
		g, err = graph.ReadBinary(m.Path)
		if err != nil {
			return nil, err
		}
	} else {
		f, err := os.Open(m.Path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		result, err := osmparser.Parse(context.Background(), f)
		if err != nil {
			return nil, err
		}
		g = graph.Build(result)
	}

	if m.LargestComponent {
		g = graph.FilterToComponent(g, graph.LargestComponent(g))
	}
	return g, nil
}
