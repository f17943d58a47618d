package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
)

// Version is set at build time via -ldflags
var Version = "dev"

// appRunner abstracts the App for flag-dispatch testing.
type appRunner interface {
	ApplyOptions(opts AppOptions)
	Load() error
	RunJoin() error
	SaveGeoJSON(path string) error
	RunRender() error
	RunService()
}

func run(args []string, out io.Writer, app appRunner) error {
	fs := flag.NewFlagSet("dedupjoin", flag.ContinueOnError)
	fs.SetOutput(out)

	var (
		configFile   = fs.String("config", "config.yaml", "Path to configuration file")
		demoMode     = fs.Bool("demo", false, "Run with the built-in demo points and polygons")
		predicate    = fs.String("predicate", "", "Spatial predicate: intersects, within, touches, or contains (overrides config)")
		joinMode     = fs.String("mode", "", "Join mode: left, inner, or right (overrides config)")
		showPairs    = fs.Bool("pairs", false, "Also print the row-per-pair table before aggregation")
		renderOnly   = fs.Bool("render", false, "Render the result map and exit")
		renderFormat = fs.String("format", "", "Render format: raster, svg, or png (overrides config)")
		outputFile   = fs.String("output", "", "Output file for --render mode (overrides config)")
		geojsonOut   = fs.String("geojson", "", "Write the aggregated result as GeoJSON to this file")
		mqttMode     = fs.Bool("mqtt", false, "Publish the result to the configured MQTT broker")
		httpMode     = fs.Bool("http", false, "Serve the result over HTTP")
		httpPort     = fs.Int("http-port", 8080, "HTTP server port (default 8080)")
	)

	if err := fs.Parse(args); err != nil {
		return err
	}

	fmt.Fprintf(out, "dedupjoin version: %s\n", Version)

	app.ApplyOptions(AppOptions{
		ConfigFile:   *configFile,
		Demo:         *demoMode,
		Predicate:    *predicate,
		Mode:         *joinMode,
		ShowPairs:    *showPairs,
		RenderFormat: *renderFormat,
		OutputFile:   *outputFile,
		HTTPPort:     *httpPort,
		MQTTMode:     *mqttMode,
		HTTPMode:     *httpMode,
	})

	if err := app.Load(); err != nil {
		return fmt.Errorf("loading inputs: %w", err)
	}

	if err := app.RunJoin(); err != nil {
		return fmt.Errorf("joining: %w", err)
	}

	if *geojsonOut != "" {
		if err := app.SaveGeoJSON(*geojsonOut); err != nil {
			return fmt.Errorf("writing GeoJSON: %w", err)
		}
		fmt.Fprintf(out, "Created GeoJSON: %s\n", *geojsonOut)
	}

	if *renderOnly {
		if err := app.RunRender(); err != nil {
			return fmt.Errorf("rendering: %w", err)
		}
		return nil
	}

	if *mqttMode || *httpMode {
		app.RunService()
	}

	return nil
}

func main() {
	if err := run(os.Args[1:], os.Stdout, NewApp()); err != nil {
		log.Fatal(err)
	}
}
