// Package message encodes arbitrary text for one of the four codec methods and decodes it back,
// reporting every detected or corrected error as data.
package message

import (
	"fmt"
	"strings"

	"github.com/rocketscienceinc/tictactoe-relay/internal/bits"
	"github.com/rocketscienceinc/tictactoe-relay/internal/codec"
)

const (
	parityDataBits  = bits.ByteWidth
	parityBlockBits = parityDataBits + 1

	controlParity  = "parity_bits"
	controlHamming = "hamming_7_4"
)

type Encoded struct {
	OriginalText string        `json:"original_text"`
	Binary       bits.Sequence `json:"binary"`
	Method       codec.Method  `json:"method"`
	ControlInfo  string        `json:"control_info"`
	EncodedData  bits.Sequence `json:"encoded_data"`
}

type Decoded struct {
	Valid             bool     `json:"valid"`
	ErrorsDetected    bool     `json:"errors_detected"`
	ErrorsCorrected   bool     `json:"errors_corrected"`
	ErrorDetails      []string `json:"error_details"`
	DecodedText       string   `json:"decoded_text"`
	ReceivedControl   string   `json:"received_control"`
	CalculatedControl string   `json:"calculated_control"`
	ControlMatch      bool     `json:"control_match"`
}

// Outcome summarizes a decode as clean, corrected or detected.
func (that Decoded) Outcome() string {
	switch {
	case that.ErrorsCorrected:
		return "corrected"
	case that.ErrorsDetected:
		return "detected"
	default:
		return "clean"
	}
}

type Pipeline struct {
	opts codec.Options
}

// New validates opts and returns a pipeline bound to them.
func New(opts codec.Options) (*Pipeline, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid codec options: %w", err)
	}

	return &Pipeline{opts: opts}, nil
}

var defaultPipeline = &Pipeline{opts: codec.DefaultOptions()}

// Default returns the pipeline using even parity, generator 1011 and 8-bit checksum blocks.
func Default() *Pipeline {
	return defaultPipeline
}

func Encode(text string, method codec.Method) (Encoded, error) {
	return defaultPipeline.Encode(text, method)
}

func Decode(encoded bits.Sequence, method codec.Method) (Decoded, error) {
	return defaultPipeline.Decode(encoded, method)
}

func (that *Pipeline) Options() codec.Options {
	return that.opts
}

// Encode converts text to its bit payload and protects it with method.
func (that *Pipeline) Encode(text string, method codec.Method) (Encoded, error) {
	payload := bits.TextToBinary(text)

	result := Encoded{
		OriginalText: text,
		Binary:       payload,
		Method:       method,
	}

	switch method {
	case codec.MethodParity:
		var sb strings.Builder
		for _, block := range payload.Chunks(parityDataBits) {
			if len(block) < parityDataBits {
				continue
			}
			sb.WriteString(string(block))
			sb.WriteString(string(codec.CalculateParity(block, that.opts.Parity)))
		}
		result.ControlInfo = controlParity
		result.EncodedData = bits.Sequence(sb.String())

	case codec.MethodCRC:
		crc := codec.CalculateCRC(payload, that.opts.Generator)
		result.ControlInfo = string(crc)
		result.EncodedData = payload + crc

	case codec.MethodHamming:
		var sb strings.Builder
		for _, nibble := range payload.Chunks(codec.HammingDataBits) {
			sb.WriteString(string(codec.EncodeHamming(nibble.PadRight(codec.HammingDataBits))))
		}
		result.ControlInfo = controlHamming
		result.EncodedData = bits.Sequence(sb.String())

	case codec.MethodChecksum:
		checksum := codec.CalculateChecksum(payload, that.opts.BlockWidth)
		result.ControlInfo = string(checksum)
		result.EncodedData = payload + checksum

	default:
		return Encoded{}, fmt.Errorf("%w: %q", codec.ErrUnknownMethod, method)
	}

	return result, nil
}

// Decode reverses Encode for method. Corruption never produces an error; it is reported in the result.
func (that *Pipeline) Decode(encoded bits.Sequence, method codec.Method) (Decoded, error) {
	result := Decoded{
		ErrorDetails: []string{},
		ControlMatch: true,
	}

	switch method {
	case codec.MethodParity:
		that.decodeParity(encoded, &result)
	case codec.MethodCRC:
		that.decodeTrailer(encoded, codec.CRCWidth(that.opts.Generator), "CRC mismatch", func(data bits.Sequence) bits.Sequence {
			return codec.CalculateCRC(data, that.opts.Generator)
		}, &result)
	case codec.MethodHamming:
		that.decodeHamming(encoded, &result)
	case codec.MethodChecksum:
		that.decodeTrailer(encoded, that.opts.BlockWidth, "Checksum mismatch", func(data bits.Sequence) bits.Sequence {
			return codec.CalculateChecksum(data, that.opts.BlockWidth)
		}, &result)
	default:
		return Decoded{}, fmt.Errorf("%w: %q", codec.ErrUnknownMethod, method)
	}

	result.Valid = !result.ErrorsDetected || result.ErrorsCorrected
	return result, nil
}

// decodeParity walks 9-bit groups. A final group holding only the 8 data bits reads its missing parity bit as 0.
func (that *Pipeline) decodeParity(encoded bits.Sequence, result *Decoded) {
	var data, received, calculated strings.Builder

	for i, block := range encoded.Chunks(parityBlockBits) {
		if len(block) < parityDataBits {
			continue
		}

		chunk := block[:parityDataBits]
		receivedParity := bits.Sequence("0")
		if len(block) == parityBlockBits {
			receivedParity = block[parityDataBits:]
		}
		calculatedParity := codec.CalculateParity(chunk, that.opts.Parity)

		received.WriteString(string(receivedParity))
		calculated.WriteString(string(calculatedParity))

		if receivedParity != calculatedParity {
			result.ErrorsDetected = true
			result.ControlMatch = false
			result.ErrorDetails = append(result.ErrorDetails, fmt.Sprintf("Parity error at block %d", i))
		}

		data.WriteString(string(chunk))
	}

	result.ReceivedControl = received.String()
	result.CalculatedControl = calculated.String()
	result.DecodedText = bits.BinaryToText(bits.Sequence(data.String()))
}

// decodeTrailer handles the methods that append one control block of width bits to the whole payload.
// A payload without at least one data bit in front of the control block is reported as detected.
func (that *Pipeline) decodeTrailer(
	encoded bits.Sequence,
	width int,
	mismatch string,
	calculate func(bits.Sequence) bits.Sequence,
	result *Decoded,
) {
	if len(encoded) <= width {
		result.ErrorsDetected = true
		result.ControlMatch = false
		result.ErrorDetails = append(result.ErrorDetails,
			fmt.Sprintf("Payload of %d bits carries no data before its %d bit control field", len(encoded), width))
		return
	}

	data := encoded[:len(encoded)-width]
	receivedControl := encoded[len(encoded)-width:]
	calculatedControl := calculate(data)

	result.ReceivedControl = string(receivedControl)
	result.CalculatedControl = string(calculatedControl)
	result.ControlMatch = receivedControl == calculatedControl

	if !result.ControlMatch {
		result.ErrorsDetected = true
		result.ErrorDetails = append(result.ErrorDetails, mismatch)
	}

	result.DecodedText = bits.BinaryToText(data)
}

// decodeHamming corrects each 7-bit block independently. A trailing partial block is ignored.
// This path records corrections only and never raises ErrorsDetected.
func (that *Pipeline) decodeHamming(encoded bits.Sequence, result *Decoded) {
	var data strings.Builder

	for _, block := range encoded.Chunks(codec.HammingCodeBits) {
		decoded, err := codec.DecodeHamming(block)
		if err != nil {
			continue
		}

		data.WriteString(string(decoded.Data))

		if decoded.Corrected {
			result.ErrorsCorrected = true
			result.ErrorDetails = append(result.ErrorDetails,
				fmt.Sprintf("Hamming corrected bit %d", decoded.ErrorPosition))
		}
	}

	result.DecodedText = bits.BinaryToText(bits.Sequence(data.String()))
	result.ControlMatch = !result.ErrorsDetected
}
