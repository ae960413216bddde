package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tuomas-lb/hamming74/internal/bitstream"
	"github.com/tuomas-lb/hamming74/internal/channel"
	"github.com/tuomas-lb/hamming74/internal/logging"
	"github.com/tuomas-lb/hamming74/pkg/hamming74"
)

type cliOptions struct {
	bits     bool
	workers  int
	flip     string
	ber      float64
	seed     int64
	logLevel int
	logPath  string
}

func getOptions(fs *flag.FlagSet, args []string) (cliOptions, error) {
	var result cliOptions
	fs.BoolVar(&result.bits, "bits", false, "treat input (encode) and output (decode) as raw '0'/'1' strings instead of text")
	fs.IntVar(&result.workers, "workers", 1, "number of goroutines coding blocks")
	fs.StringVar(&result.flip, "flip", "", "comma separated stream indices to flip after encoding")
	fs.Float64Var(&result.ber, "ber", 0, "probability of flipping each encoded bit")
	fs.Int64Var(&result.seed, "seed", 1, "seed of the noise source used with -ber")
	fs.IntVar(&result.logLevel, "log-level", int(zerolog.WarnLevel), "log level: 0-debug 1-info 2-warn 3-error")
	fs.StringVar(&result.logPath, "log", "stderr", "log destination: stdout, stderr or a file path")
	err := fs.Parse(args)
	return result, err
}

func parseIndices(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	var out []int
	for _, field := range strings.Split(s, ",") {
		i, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil {
			return nil, fmt.Errorf("bad flip index %q: %w", field, err)
		}
		out = append(out, i)
	}
	return out, nil
}

func readInput(args []string, stdin io.Reader) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	if len(data) == 0 {
		return "", errors.New("no input data provided")
	}
	return string(data), nil
}

// addNoise applies the -flip and -ber options to an encoded stream.
func addNoise(opts cliOptions, encoded string, log zerolog.Logger) (string, error) {
	indices, err := parseIndices(opts.flip)
	if err != nil {
		return "", err
	}
	if len(indices) == 0 && opts.ber == 0 {
		return encoded, nil
	}

	bits, err := bitstream.Parse(encoded)
	if err != nil {
		return "", err
	}
	bits, err = channel.Flip(bits, indices...)
	if err != nil {
		return "", err
	}
	flipped := indices
	if opts.ber > 0 {
		res, err := channel.NewNoise(opts.seed).Apply(bits, opts.ber)
		if err != nil {
			return "", err
		}
		bits = res.Bits
		flipped = append(flipped, res.Positions...)
	}
	log.Info().Ints(logging.Flipped, flipped).Msg("noise applied")
	return bitstream.Format(bits), nil
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("hamming74", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: hamming74 [flags] <encode|decode> [data]\n")
		fs.PrintDefaults()
	}
	opts, err := getOptions(fs, args)
	if err != nil {
		return err
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return errors.New("missing operation")
	}

	log, closeLog, err := logging.InitLogger(logging.LogConfig{Level: opts.logLevel, Path: opts.logPath})
	if err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	defer closeLog()
	log = log.With().Int(logging.Workers, opts.workers).Logger()

	codec, err := hamming74.NewCodec(hamming74.Options{
		Workers: opts.workers,
		Scheme:  hamming74.ECCSchemeHamming74,
		Logger:  &log,
	})
	if err != nil {
		return err
	}

	input, err := readInput(fs.Args()[1:], stdin)
	if err != nil {
		return err
	}

	switch op := fs.Arg(0); op {
	case "encode":
		bits := strings.TrimSpace(input)
		if !opts.bits {
			bits = hamming74.BytesToBits([]byte(input))
		}
		encoded, err := codec.EncodeStream(bits)
		if err != nil {
			return err
		}
		encoded, err = addNoise(opts, encoded, log)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(stdout, encoded)
		return err

	case "decode":
		decoded, err := codec.DecodeStream(strings.TrimSpace(input))
		if err != nil {
			return err
		}
		if opts.bits {
			_, err = fmt.Fprint(stdout, decoded)
			return err
		}
		text, err := hamming74.BitsToBytes(decoded)
		if err != nil {
			return err
		}
		_, err = stdout.Write(text)
		return err

	default:
		return fmt.Errorf("invalid operation %q, use encode or decode", op)
	}
}

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
