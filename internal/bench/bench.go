// Package bench measures how each error-control method copes with noise: it encodes a text,
// corrupts it, decodes it and tallies the outcome.
package bench

import (
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-relay/internal/bits"
	"github.com/rocketscienceinc/tictactoe-relay/internal/codec"
	"github.com/rocketscienceinc/tictactoe-relay/internal/message"
	"github.com/rocketscienceinc/tictactoe-relay/internal/noise"
)

const (
	AxisFlips = "bit flips"
	AxisRate  = "bit error rate"
)

var ErrInvalidRun = errors.New("bench: invalid run parameters")

// Result tallies the trials of one method at one noise level.
type Result struct {
	Method codec.Method `json:"method"`
	Noise  float64      `json:"noise"`
	Trials int          `json:"trials"`

	// Valid counts decodes the method reported as valid.
	Valid int `json:"valid"`
	// Recovered counts decodes whose text equals the original.
	Recovered int `json:"recovered"`
	// Silent counts decodes reported valid with the wrong text.
	Silent int `json:"silent"`
}

func (that Result) RecoveredRate() float64 {
	if that.Trials == 0 {
		return 0
	}
	return float64(that.Recovered) / float64(that.Trials)
}

type Report struct {
	Text    string   `json:"text"`
	Axis    string   `json:"axis"`
	Results []Result `json:"results"`
}

// Methods lists the methods in the order they first appear.
func (that Report) Methods() []codec.Method {
	seen := make(map[codec.Method]struct{})
	methods := make([]codec.Method, 0, len(codec.Methods()))

	for _, result := range that.Results {
		if _, ok := seen[result.Method]; ok {
			continue
		}
		seen[result.Method] = struct{}{}
		methods = append(methods, result.Method)
	}

	return methods
}

func (that Report) ByMethod(method codec.Method) []Result {
	var results []Result
	for _, result := range that.Results {
		if result.Method == method {
			results = append(results, result)
		}
	}
	return results
}

type Runner struct {
	pipeline *message.Pipeline
	injector *noise.Injector
}

func NewRunner(pipeline *message.Pipeline, injector *noise.Injector) *Runner {
	return &Runner{
		pipeline: pipeline,
		injector: injector,
	}
}

// Run flips k random bits for every k in [0, maxFlips], trials times per method and k.
func (that *Runner) Run(text string, methods []codec.Method, maxFlips, trials int) (Report, error) {
	if maxFlips < 0 {
		return Report{}, fmt.Errorf("%w: max flips %d", ErrInvalidRun, maxFlips)
	}

	levels := make([]float64, 0, maxFlips+1)
	for k := range maxFlips + 1 {
		levels = append(levels, float64(k))
	}

	return that.run(text, methods, AxisFlips, levels, trials, func(data bits.Sequence, level float64) (bits.Sequence, error) {
		corrupted, _ := that.injector.FlipRandomBits(data, int(level))
		return corrupted, nil
	})
}

// RunRates flips every bit independently with each probability in rates.
func (that *Runner) RunRates(text string, methods []codec.Method, rates []float64, trials int) (Report, error) {
	return that.run(text, methods, AxisRate, rates, trials, func(data bits.Sequence, rate float64) (bits.Sequence, error) {
		corrupted, _, err := that.injector.ApplyRate(data, rate)
		return corrupted, err
	})
}

func (that *Runner) run(
	text string,
	methods []codec.Method,
	axis string,
	levels []float64,
	trials int,
	corrupt func(bits.Sequence, float64) (bits.Sequence, error),
) (Report, error) {
	if trials < 1 {
		return Report{}, fmt.Errorf("%w: trials %d", ErrInvalidRun, trials)
	}

	if len(methods) == 0 {
		methods = codec.Methods()
	}

	report := Report{Text: text, Axis: axis}

	for _, method := range methods {
		encoded, err := that.pipeline.Encode(text, method)
		if err != nil {
			return Report{}, err
		}

		for _, level := range levels {
			result := Result{Method: method, Noise: level, Trials: trials}

			for range trials {
				corrupted, err := corrupt(encoded.EncodedData, level)
				if err != nil {
					return Report{}, err
				}

				decoded, err := that.pipeline.Decode(corrupted, method)
				if err != nil {
					return Report{}, err
				}

				recovered := decoded.DecodedText == text
				if recovered {
					result.Recovered++
				}

				if decoded.Valid {
					result.Valid++
					if !recovered {
						result.Silent++
					}
				}
			}

			report.Results = append(report.Results, result)
		}
	}

	return report, nil
}
