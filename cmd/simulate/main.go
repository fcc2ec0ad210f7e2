package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Bytix-in/Prana-AI/module/dispatch/domain"
	"github.com/Bytix-in/Prana-AI/module/dispatch/simulator"
)

// Exit codes
const (
	ExitSuccess      = 0
	ExitGeneralError = 1
	ExitInvalidArgs  = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("simulate", flag.ContinueOnError)
	fs.SetOutput(stderr)

	pickup := fs.String("pickup", "", "Pickup point as lat,lon (required)")
	origin := fs.String("origin", "", "Ambulance start as lat,lon (default: pickup shifted by -offset)")
	offset := fs.Float64("offset", 0.02, "Degrees added to both pickup axes when -origin is not set")
	steps := fs.Int("steps", simulator.DefaultTotalSteps, "Number of ticks from origin to pickup")
	interval := fs.Duration("interval", simulator.DefaultTickInterval, "Delay between ticks, 0 to print at once")
	etaFactor := fs.Float64("eta-factor", simulator.DefaultETAFactor, "Minutes per remaining kilometre")
	asJSON := fs.Bool("json", false, "Print one JSON object per tick")

	fs.Usage = func() {
		fmt.Fprintln(stderr, `Usage: simulate -pickup lat,lon [options]

Drive one simulated ambulance trip and print every tick.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		return ExitInvalidArgs
	}

	if *pickup == "" {
		fmt.Fprintln(stderr, "Error: -pickup is required")
		fs.Usage()
		return ExitInvalidArgs
	}
	destination, err := parsePoint(*pickup)
	if err != nil {
		fmt.Fprintf(stderr, "Error: -pickup: %v\n", err)
		return ExitInvalidArgs
	}

	start := destination.Offset(*offset)
	if *origin != "" {
		if start, err = parsePoint(*origin); err != nil {
			fmt.Fprintf(stderr, "Error: -origin: %v\n", err)
			return ExitInvalidArgs
		}
	}
	if *interval < 0 || *etaFactor < 0 {
		fmt.Fprintln(stderr, "Error: -interval and -eta-factor must not be negative")
		return ExitInvalidArgs
	}

	sr, err := simulator.Start(start, destination, *steps)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return ExitInvalidArgs
	}

	enc := json.NewEncoder(stdout)
	emit := func(res domain.TickResult) error {
		if *asJSON {
			return enc.Encode(res)
		}
		_, err := fmt.Fprintf(stdout, "[%3d/%d] %.6f,%.6f  %.2f km  ETA %s\n",
			res.Step, res.TotalSteps, res.Position.Lat, res.Position.Lon, res.RemainingDistanceKm, res.ETA)
		return err
	}

	if !*asJSON {
		fmt.Fprintf(stdout, "Ambulance dispatched: %.2f km away\n", sr.TotalDistanceKm)
	}

	if sr.Completed() {
		if err := emit(simulator.Current(sr, *etaFactor)); err != nil {
			return ExitGeneralError
		}
	}

	var tick <-chan time.Time
	if *interval > 0 {
		t := time.NewTicker(*interval)
		defer t.Stop()
		tick = t.C
	}

	for !sr.Completed() {
		if tick != nil {
			<-tick
		}
		res, err := simulator.Tick(sr, *etaFactor)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return ExitGeneralError
		}
		if err := emit(res); err != nil {
			return ExitGeneralError
		}
	}

	if !*asJSON {
		fmt.Fprintln(stdout, "Ambulance has arrived!")
	}
	return ExitSuccess
}

func parsePoint(s string) (domain.GeoPoint, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return domain.GeoPoint{}, fmt.Errorf("expected lat,lon, got %q", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return domain.GeoPoint{}, fmt.Errorf("latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return domain.GeoPoint{}, fmt.Errorf("longitude: %w", err)
	}
	p := domain.GeoPoint{Lat: lat, Lon: lon}
	if err := p.Validate(); err != nil {
		return domain.GeoPoint{}, err
	}
	return p, nil
}
