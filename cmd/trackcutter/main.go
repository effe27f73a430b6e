package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"

	"github.com/linuxmatters/trackcutter/internal/audio"
	"github.com/linuxmatters/trackcutter/internal/cli"
	"github.com/linuxmatters/trackcutter/internal/config"
	"github.com/linuxmatters/trackcutter/internal/detector"
	"github.com/linuxmatters/trackcutter/internal/logging"
	"github.com/linuxmatters/trackcutter/internal/sink"
	"github.com/linuxmatters/trackcutter/internal/ui"
)

// version is set via ldflags at build time
// Local dev builds: "dev"
// Release builds: git tag (e.g. "0.1.0")
var version = "dev"

// CLI defines the command-line interface
type CLI struct {
	Cut     bool `short:"C" help:"Search for track delimiters (default mode)" xor:"mode"`
	Analyse bool `short:"a" help:"Perform statistical analysis on the input" xor:"mode"`

	CutsFile       string `short:"o" placeholder:"CUTSFILE" default:"-" help:"Write track indices/durations to this file ('-' = standard output)"`
	ExtractDir     string `short:"d" placeholder:"DIR" help:"Extract tracks to individual files in this directory"`
	TrackNamesFile string `short:"i" placeholder:"LISTFILE" help:"Text file containing track names, one per line ('-' = standard input)"`
	OutputFormat   string `short:"f" placeholder:"EXT" help:"Container for extracted files; the input's if omitted"`

	PrintFrameIndices bool `short:"P" xor:"cutfmt" help:"Cut points and durations given in frames"`
	PrintTimeIndices  bool `short:"p" xor:"cutfmt" help:"Cut points and durations given in hrs:min:sec (default)"`
	PrintSecIndices   bool `short:"A" xor:"cutfmt" help:"Cut points and durations given in seconds"`
	NoCutsFileHeader  bool `short:"N" help:"Suppress printing a header in the cuts file"`

	TimeRange  string `short:"t" placeholder:"S-F" help:"Only process input between the given timecodes"`
	FrameRange string `short:"I" placeholder:"S-F" help:"Only process input between the given frame bounds"`
	TrackRange string `short:"T" placeholder:"A-B" help:"Start track numbering at A; stop after track B"`

	MinSilencePeriod *int     `short:"s" placeholder:"MS" help:"Minimum silence period delimiting tracks, in milliseconds"`
	MinSignalPeriod  *int     `short:"n" placeholder:"MS" help:"Minimum non-silence period starting a track, in milliseconds"`
	MinTrackLength   *int     `short:"l" placeholder:"SEC" help:"Minimum track length, in seconds"`
	NoiseFloor       *float64 `short:"S" placeholder:"DBFS" help:"Noise floor separating signal from silence (negative dBFS)"`
	DcOffset         string   `short:"D" placeholder:"N,N,..." help:"Per-channel DC offset correction, each within [-1.0, +1.0]"`
	HighPass         *bool    `short:"H" help:"Run the signal through a 20Hz high-pass filter before processing"`

	Raw           bool `short:"r" help:"Input recording is raw (headerless) audio"`
	Rate          int  `short:"R" placeholder:"N" help:"Raw audio sampling rate in Hz"`
	Channels      int  `short:"c" placeholder:"N" help:"Raw audio channel count (max 8)"`
	Bits          int  `short:"b" placeholder:"N" help:"Raw audio bits per sample (8, 16, 24, 32 or 64)"`
	Signed        bool `short:"x" help:"Raw samples are signed integers" xor:"sign"`
	Unsigned      bool `short:"u" help:"Raw samples are unsigned integers (8-bit only)" xor:"sign"`
	FloatingPoint bool `short:"X" help:"Raw samples are floating point (32 or 64-bit)" xor:"sign"`
	BigEndian     bool `short:"E" help:"Raw sample words are big-endian" xor:"endian"`
	LittleEndian  bool `short:"e" help:"Raw sample words are little-endian" xor:"endian"`

	Config  string `placeholder:"FILE" type:"existingfile" help:"TOML config file with detector tuning defaults"`
	NoUI    bool   `help:"Disable the live progress display"`
	Verbose bool   `short:"v" help:"Print informative messages to standard error"`
	Version bool   `short:"V" help:"Show version information"`

	File string `arg:"" optional:"" name:"file" help:"Audio recording to process ('-' = standard input)"`
}

func main() {
	cliArgs := &CLI{}
	kong.Parse(cliArgs,
		kong.Name("trackcutter"),
		kong.Description("Divides an audio recording into multiple tracks delimited by silence"),
		kong.UsageOnError(),
		kong.Vars{"version": version},
		kong.Help(cli.StyledHelpPrinter(kong.HelpOptions{Compact: true})),
	)

	if cliArgs.Version {
		cli.PrintVersion(version)
		os.Exit(0)
	}

	log.SetOutput(os.Stderr)
	if cliArgs.Verbose {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.WarnLevel)
	}

	opts, err := buildOptions(cliArgs)
	if err == nil {
		err = opts.Validate()
	}
	if err != nil {
		cli.PrintError(err.Error())
		fmt.Fprintln(os.Stderr, "Try `trackcutter --help' for more information.")
		os.Exit(1)
	}

	if err := run(opts); err != nil {
		if errors.Is(err, context.Canceled) {
			cli.PrintError("interrupted")
		} else {
			cli.PrintError(err.Error())
		}
		os.Exit(1)
	}
}

// buildOptions layers the tuning defaults, the optional config file and
// the command line into the immutable run configuration.
func buildOptions(c *CLI) (*config.Options, error) {
	tuning, err := config.LoadTuning(c.Config)
	if err != nil {
		return nil, err
	}

	opts := &config.Options{
		Mode:             config.ModeCut,
		Action:           config.ActionCutLog,
		CutFormat:        config.FormatTime,
		InputPath:        c.File,
		CutsPath:         c.CutsFile,
		ExtractDir:       c.ExtractDir,
		NamesPath:        c.TrackNamesFile,
		OutputFormat:     c.OutputFormat,
		MinSilencePeriod: tuning.MinSilencePeriod,
		MinSignalPeriod:  tuning.MinSignalPeriod,
		MinTrackLength:   tuning.MinTrackLength,
		NoiseFloor:       tuning.NoiseFloor,
		HighPass:         tuning.HighPass,
		StartFrame:       0,
		EndFrame:         math.MaxInt64,
		TrackNumStart:    1,
		TrackNumEnd:      math.MaxInt32,
		NoHeader:         c.NoCutsFileHeader,
		Verbose:          c.Verbose,
		NoUI:             c.NoUI,
	}

	if c.Analyse {
		opts.Mode = config.ModeAnalyse
	}
	if c.ExtractDir != "" {
		opts.Action = config.ActionExtract
	}
	switch {
	case c.PrintFrameIndices:
		opts.CutFormat = config.FormatFrame
	case c.PrintSecIndices:
		opts.CutFormat = config.FormatSec
	}

	// CLI tuning flags override the config file individually.
	if c.MinSilencePeriod != nil {
		opts.MinSilencePeriod = *c.MinSilencePeriod
	}
	if c.MinSignalPeriod != nil {
		opts.MinSignalPeriod = *c.MinSignalPeriod
	}
	if c.MinTrackLength != nil {
		opts.MinTrackLength = *c.MinTrackLength
	}
	if c.NoiseFloor != nil {
		opts.NoiseFloor = *c.NoiseFloor
	}
	if c.HighPass != nil {
		opts.HighPass = *c.HighPass
	}

	if c.TimeRange != "" {
		start, end, err := config.ParseTimeRange(c.TimeRange)
		if err != nil {
			return nil, err
		}
		opts.TimeRangeGiven = true
		opts.StartTime, opts.EndTime = start, end
	}
	if c.FrameRange != "" {
		start, end, err := config.ParseFrameRange(c.FrameRange)
		if err != nil {
			return nil, err
		}
		opts.TimeRangeGiven = false
		opts.StartFrame, opts.EndFrame = start, end
	}
	if c.TrackRange != "" {
		first, last, err := config.ParseTrackRange(c.TrackRange)
		if err != nil {
			return nil, err
		}
		opts.TrackNumStart, opts.TrackNumEnd = first, last
	}

	offsets, err := config.ParseDCOffsets(c.DcOffset)
	if err != nil {
		return nil, err
	}
	opts.DCOffset = offsets

	if c.Raw {
		raw, err := rawParams(c)
		if err != nil {
			return nil, err
		}
		opts.Raw = raw
	}

	return opts, nil
}

// rawParams validates that every raw-audio parameter was given explicitly;
// there are no defaults for headerless input.
func rawParams(c *CLI) (*audio.RawParams, error) {
	switch {
	case c.Rate == 0:
		return nil, fmt.Errorf("raw audio sampling rate must be given with `--rate'")
	case c.Channels == 0:
		return nil, fmt.Errorf("raw audio number of channels must be given with `--channels'")
	case c.Bits == 0:
		return nil, fmt.Errorf("raw audio sample bit size must be given with `--bits'")
	case !c.Signed && !c.Unsigned && !c.FloatingPoint:
		return nil, fmt.Errorf("raw audio sample type must be given with either `--signed', `--unsigned' or `--floating-point'")
	case !c.BigEndian && !c.LittleEndian:
		return nil, fmt.Errorf("raw audio endian direction must be given with either `--big-endian' or `--little-endian'")
	}
	raw := &audio.RawParams{
		Rate:      c.Rate,
		Channels:  c.Channels,
		Bits:      c.Bits,
		Signed:    c.Signed,
		Float:     c.FloatingPoint,
		BigEndian: c.BigEndian,
	}
	if err := raw.Validate(); err != nil {
		return nil, err
	}
	return raw, nil
}

func run(opts *config.Options) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r, err := audio.Open(opts.InputPath, opts.Raw)
	if err != nil {
		return err
	}
	defer r.Close()
	info := r.Info()
	log.Debug("opened input",
		"file", opts.InputPath,
		"container", info.Container,
		"rate", info.SampleRate,
		"channels", info.Channels,
		"bits", info.BitDepth)

	params, err := detector.NewParams(info.SampleRate, info.Channels, detector.Config{
		MinSilencePeriod: opts.MinSilencePeriod,
		MinSignalPeriod:  opts.MinSignalPeriod,
		MinTrackLength:   opts.MinTrackLength,
		NoiseFloor:       opts.NoiseFloor,
		DCOffset:         opts.DCOffset,
		HighPass:         opts.HighPass,
	})
	if err != nil {
		return err
	}
	log.Debug("derived detector parameters",
		"window", params.Window,
		"min_signal_len", params.MinSignalLen,
		"min_silence_len", params.MinSilenceLen,
		"min_track_len", params.MinTrackLen)

	start, end := opts.FrameRange(info.SampleRate)
	src, err := detector.NewSource(r, start, end, params.ReadAhead)
	if err != nil {
		return err
	}
	det := detector.New(params)

	if opts.Mode == config.ModeAnalyse {
		return runAnalysis(ctx, src, det)
	}
	return runCut(ctx, opts, info, src, det, params)
}

func runAnalysis(ctx context.Context, src *detector.Source, det *detector.Detector) error {
	ana := detector.NewAnalyzer(det.Params())
	drv := &detector.Driver{Src: src, Det: det, Ana: ana, TrackNumEnd: math.MaxInt32}
	if err := drv.Run(ctx); err != nil {
		return err
	}
	fmt.Print(logging.RenderAnalysis(ana.Results(det, src.FramesRead())))
	return nil
}

func runCut(ctx context.Context, opts *config.Options, info audio.Info, src *detector.Source, det *detector.Detector, params detector.Params) error {
	var nextName func() (string, error)
	if opts.NamesPath != "" {
		names, err := sink.OpenNames(opts.NamesPath, opts.TrackNumStart-1)
		if err != nil {
			return err
		}
		defer names.Close()
		nextName = names.Next
	}

	var (
		trackSink detector.Sink
		closeSink func() error
	)
	if opts.Action == config.ActionExtract {
		ex, err := sink.NewExtract(opts.ExtractDir, opts.OutputFormat, info)
		if err != nil {
			return err
		}
		trackSink = ex
		closeSink = ex.Close
	} else {
		cl, err := sink.NewCutLog(opts.CutsPath, info.SampleRate, opts.CutFormat, opts.NamesPath != "", opts.NoHeader)
		if err != nil {
			return err
		}
		trackSink = cl
		closeSink = cl.Close
	}

	seg := detector.NewSegmenter(params, trackSink, opts.TrackNumStart, nextName)
	drv := &detector.Driver{Src: src, Det: det, Seg: seg, TrackNumEnd: opts.TrackNumEnd}

	var runErr error
	if useUI(opts) {
		runErr = runWithUI(ctx, opts, info, seg, drv)
	} else {
		runErr = drv.Run(ctx)
	}
	if err := closeSink(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

// useUI enables the live progress display only for interactive extraction
// runs; cut-log mode owns standard output.
func useUI(opts *config.Options) bool {
	return opts.Action == config.ActionExtract &&
		!opts.NoUI &&
		isatty.IsTerminal(os.Stdout.Fd())
}

// runWithUI drives the pipeline in the background and feeds the Bubbletea
// model, following the progress-channel pattern.
func runWithUI(ctx context.Context, opts *config.Options, info audio.Info, seg *detector.Segmenter, drv *detector.Driver) error {
	model := ui.NewModel(opts.InputPath, info.SampleRate, info.TotalFrames)
	p := tea.NewProgram(model, tea.WithAltScreen())

	seg.SetNotify(func(ev detector.TrackEvent) {
		if ev.Done {
			model.ProgressChan <- ui.TrackDoneMsg{Num: ev.Num, Start: ev.Start, End: ev.End, Name: ev.Name}
		} else {
			model.ProgressChan <- ui.TrackStartMsg{Num: ev.Num, Start: ev.Start, Name: ev.Name}
		}
	})
	drv.OnProgress = func(pr detector.Progress) {
		model.ProgressChan <- ui.ProgressMsg{Frame: pr.Frame, LevelDB: pr.LevelDB}
	}

	var runErr error
	go func() {
		runErr = drv.Run(ctx)
		model.ProgressChan <- ui.DoneMsg{Err: runErr}
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("UI error: %w", err)
	}
	return runErr
}
