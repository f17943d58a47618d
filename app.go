package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/geomesh/dedupjoin/sjoin"
)

// App encapsulates the application state and dependencies
type App struct {
	Config   *sjoin.Config
	Points   *sjoin.Collection
	Polygons *sjoin.Collection
	Pairs    *sjoin.PairTable
	Result   *sjoin.AggregatedTable

	// CLI Flags (effectively dependencies)
	ConfigFile   string
	Demo         bool
	Predicate    string
	Mode         string
	ShowPairs    bool
	RenderFormat string
	OutputFile   string
	HTTPPort     int
	MQTTMode     bool
	HTTPMode     bool
}

// AppOptions carries the CLI options into the App
type AppOptions struct {
	ConfigFile   string
	Demo         bool
	Predicate    string
	Mode         string
	ShowPairs    bool
	RenderFormat string
	OutputFile   string
	HTTPPort     int
	MQTTMode     bool
	HTTPMode     bool
}

// NewApp creates a new App instance
func NewApp() *App {
	return &App{}
}

// ApplyOptions applies CLI options to the App instance
func (a *App) ApplyOptions(opts AppOptions) {
	a.ConfigFile = opts.ConfigFile
	a.Demo = opts.Demo
	a.Predicate = opts.Predicate
	a.Mode = opts.Mode
	a.ShowPairs = opts.ShowPairs
	a.RenderFormat = opts.RenderFormat
	a.OutputFile = opts.OutputFile
	a.HTTPPort = opts.HTTPPort
	a.MQTTMode = opts.MQTTMode
	a.HTTPMode = opts.HTTPMode
}

// Load resolves the configuration and input collections. In demo mode the
// config file is optional; without it the built-in demo column layout is
// used.
func (a *App) Load() error {
	if _, err := os.Stat(a.ConfigFile); err == nil {
		config, err := sjoin.LoadConfig(a.ConfigFile)
		if err != nil {
			return err
		}
		a.Config = config
		log.Printf("Loaded config from %s", a.ConfigFile)
	} else if !a.Demo {
		return fmt.Errorf("config file not found: %s (use --demo for built-in data)", a.ConfigFile)
	}

	if a.Config == nil {
		// Demo defaults: the demo collections with an intersects left join.
		a.Config = &sjoin.Config{
			Columns: sjoin.ColumnsConfig{
				PointID:   sjoin.DemoPointIDColumn,
				PolygonID: sjoin.DemoPolygonIDColumn,
				Keep:      []string{sjoin.DemoPointIDColumn, sjoin.DemoPolygonIDColumn},
			},
			Join: sjoin.JoinConfig{Predicate: string(sjoin.PredicateIntersects)},
		}
	}

	// CLI overrides take priority over config.
	if a.Predicate != "" {
		a.Config.Join.Predicate = a.Predicate
	}
	if a.Mode != "" {
		a.Config.Join.Mode = a.Mode
	}
	if a.RenderFormat != "" {
		a.Config.Render.Format = a.RenderFormat
	}
	if a.OutputFile != "" {
		a.Config.Render.Output = a.OutputFile
	}

	return a.loadCollections()
}

func (a *App) loadCollections() error {
	if a.Demo {
		a.Points = sjoin.DemoPoints(a.Config.Columns.PointID)
		a.Polygons = sjoin.DemoPolygons(a.Config.Columns.PolygonID)
		fmt.Printf("Using demo data: %d points, %d polygons\n", a.Points.Len(), a.Polygons.Len())
		return nil
	}

	if a.Config.Points == "" || a.Config.Polygons == "" {
		return fmt.Errorf("config must name both points and polygons files (or use --demo)")
	}

	points, err := sjoin.LoadCollection(a.Config.Points, "points", a.Config.Columns.PointID)
	if err != nil {
		return err
	}
	polygons, err := sjoin.LoadCollection(a.Config.Polygons, "polygons", a.Config.Columns.PolygonID)
	if err != nil {
		return err
	}

	a.Points = points
	a.Polygons = polygons
	fmt.Printf("Loaded %d points from %s\n", points.Len(), a.Config.Points)
	fmt.Printf("Loaded %d polygons from %s\n", polygons.Len(), a.Config.Polygons)
	return nil
}

// RunJoin performs the spatial join and aggregation, then prints the result
// table.
func (a *App) RunJoin() error {
	pred, err := a.Config.Predicate()
	if err != nil {
		return err
	}

	pairs, err := sjoin.Join(a.Points, a.Polygons, pred, a.Config.ColumnSpec())
	if err != nil {
		return err
	}
	result, err := sjoin.Deduplicate(pairs)
	if err != nil {
		return err
	}

	a.Pairs = pairs
	a.Result = result

	// Demo mode prints the plain within join alongside for comparison.
	if a.Demo && pred != sjoin.PredicateWithin {
		within, err := sjoin.Join(a.Points, a.Polygons, sjoin.PredicateWithin, a.Config.ColumnSpec())
		if err != nil {
			return err
		}
		fmt.Printf("\nWithin join (%d rows):\n", len(within.Rows))
		fmt.Print(within.String())
	}

	if a.ShowPairs || a.Demo {
		fmt.Printf("\nPair table (%q, %d rows):\n", pred, len(pairs.Rows))
		fmt.Print(pairs.String())
	}

	fmt.Printf("\nResult (%q, %d rows, geometry arity %d):\n", pred, len(result.Rows), result.GeometryArity)
	fmt.Print(result.String())
	return nil
}

// SaveGeoJSON writes the aggregated result as a GeoJSON FeatureCollection.
func (a *App) SaveGeoJSON(path string) error {
	if a.Result == nil {
		return fmt.Errorf("no result computed yet")
	}
	return sjoin.SaveFeatureCollection(path, a.Result.ToFeatureCollection())
}

// RunRender renders the result map per the render configuration.
func (a *App) RunRender() error {
	if a.Result == nil {
		return fmt.Errorf("no result computed yet")
	}

	format := a.Config.Render.Format
	if format == "" {
		format = "raster"
	}

	output := a.Config.Render.Output
	if output == "" {
		if format == "svg" {
			output = "result-map.svg"
		} else {
			output = "result-map.png"
		}
	}

	switch format {
	case "raster":
		renderer := sjoin.NewRasterRenderer(a.Polygons, a.Result)
		if a.Config.Render.Scale > 0 {
			renderer.Scale = a.Config.Render.Scale
		}
		if err := renderer.SavePNG(output); err != nil {
			return err
		}

	case "svg":
		if filepath.Ext(output) != ".svg" {
			output = strings.TrimSuffix(output, filepath.Ext(output)) + ".svg"
		}
		renderer := a.vectorRenderer()
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("creating output file %s: %w", output, err)
		}
		defer f.Close()
		if err := renderer.RenderToSVG(f); err != nil {
			return err
		}

	case "png":
		renderer := a.vectorRenderer()
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("creating output file %s: %w", output, err)
		}
		defer f.Close()
		if err := renderer.RenderToPNG(f); err != nil {
			return err
		}

	default:
		return fmt.Errorf("invalid render format %q (must be raster, svg, or png)", format)
	}

	fmt.Printf("Created map: %s\n", output)
	return nil
}

func (a *App) vectorRenderer() *sjoin.VectorRenderer {
	renderer := sjoin.NewVectorRenderer(a.Polygons, a.Result)
	if a.Config.Render.Resolution > 0 {
		renderer.Resolution = sjoin.DPI(a.Config.Render.Resolution)
	}
	return renderer
}

// RunService publishes the result over MQTT and/or serves it over HTTP,
// then blocks until interrupted.
func (a *App) RunService() {
	fmt.Println("Starting dedupjoin service...")

	if a.MQTTMode {
		if a.Config.MQTT == nil {
			log.Fatal("MQTT broker not configured in config.yaml")
		}

		client, err := sjoin.ConnectMQTT(a.Config.MQTT)
		if err != nil {
			log.Fatalf("Failed to connect to MQTT: %v", err)
		}
		defer client.Disconnect(250)

		publisher := sjoin.NewPublisher(client, a.Config.MQTT.PublishPrefix)
		if err := publisher.PublishResult(a.Result); err != nil {
			log.Fatalf("Failed to publish result: %v", err)
		}
		if err := publisher.PublishSummary(a.Pairs, a.Result); err != nil {
			log.Printf("Warning: failed to publish summary: %v", err)
		}
	}

	if !a.HTTPMode {
		return
	}

	httpServer := newHTTPServer(a)
	go func() {
		addr := fmt.Sprintf(":%d", a.HTTPPort)
		log.Printf("[HTTP] Starting server on %s", addr)
		if err := http.ListenAndServe(addr, httpServer); err != nil {
			log.Fatalf("[HTTP] Server error: %v", err)
		}
	}()

	fmt.Printf("\nHTTP endpoints (port %d):\n", a.HTTPPort)
	fmt.Println("  GET /health         - Health check")
	fmt.Println("  GET /result.geojson - Aggregated result as GeoJSON")
	fmt.Println("  GET /result.txt     - Aggregated result table")
	fmt.Println("  GET /map.svg        - Vector result map")
	fmt.Println("  GET /map.png        - Raster result map")
	fmt.Println("\nPress Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	fmt.Println("\nShutting down service...")
}
