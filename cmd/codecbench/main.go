// Command codecbench runs every error-control method against increasing noise and prints
// how often the text survived. With -svg it also draws the results.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/rocketscienceinc/tictactoe-relay/internal/bench"
	"github.com/rocketscienceinc/tictactoe-relay/internal/codec"
	"github.com/rocketscienceinc/tictactoe-relay/internal/message"
	"github.com/rocketscienceinc/tictactoe-relay/internal/noise"
)

func main() {
	text := flag.String("text", "Hello, relay!", "text to send through the channel")
	methods := flag.String("methods", "parity,crc,hamming,checksum", "comma separated methods")
	flips := flag.Int("flips", 5, "highest number of flipped bits")
	rates := flag.String("rates", "", "comma separated bit error rates, replaces -flips when set")
	trials := flag.Int("trials", 200, "trials per method and noise level")
	seed := flag.Int64("seed", 0, "noise seed, 0 seeds from the clock")
	svg := flag.String("svg", "", "write a chart to this file")
	flag.Parse()

	if err := run(*text, *methods, *flips, *rates, *trials, *seed, *svg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(text, rawMethods string, flips int, rawRates string, trials int, seed int64, svg string) (err error) {
	methods, err := parseMethods(rawMethods)
	if err != nil {
		return err
	}

	runner := bench.NewRunner(message.Default(), noise.NewInjector(seed))

	var report bench.Report
	if rawRates != "" {
		rates, err := parseRates(rawRates)
		if err != nil {
			return err
		}
		report, err = runner.RunRates(text, methods, rates, trials)
		if err != nil {
			return err
		}
	} else if report, err = runner.Run(text, methods, flips, trials); err != nil {
		return err
	}

	printReport(report)

	if svg == "" {
		return nil
	}

	file, err := os.Create(svg)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer func() {
		err = errors.Join(err, file.Close())
	}()

	return bench.RenderChart(report, file)
}

func parseMethods(raw string) ([]codec.Method, error) {
	var methods []codec.Method
	for _, name := range strings.Split(raw, ",") {
		method, err := codec.ParseMethod(strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}
		methods = append(methods, method)
	}

	return methods, nil
}

func parseRates(raw string) ([]float64, error) {
	var rates []float64
	for _, value := range strings.Split(raw, ",") {
		rate, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid rate %q: %w", value, err)
		}
		rates = append(rates, rate)
	}

	return rates, nil
}

func printReport(report bench.Report) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintf(w, "method\t%s\ttrials\tvalid\trecovered\tsilent\trecovered rate\n", report.Axis)
	for _, method := range report.Methods() {
		for _, result := range report.ByMethod(method) {
			fmt.Fprintf(w, "%s\t%g\t%d\t%d\t%d\t%d\t%.2f\n",
				result.Method, result.Noise, result.Trials, result.Valid, result.Recovered, result.Silent, result.RecoveredRate())
		}
	}
}
