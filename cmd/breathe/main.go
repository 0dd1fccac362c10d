// Command breathe renders a box-breathing session with its audio cues to a
// WAV file, or plays it on the speaker.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"

	"github.com/simukka/breath/audio"
	"github.com/simukka/breath/common"
	"github.com/simukka/breath/settings"
)

func main() {
	outputPath := flag.String("out", "", "Path to the output WAV file")
	live := flag.Bool("play", false, "Play on the speaker instead of writing a file")
	planPath := flag.String("plan", "", "Path to a YAML session plan")
	seconds := flag.Float64("seconds", 0, "Length in seconds (default 64, or until interrupted with -play)")
	seed := flag.Uint("seed", 0, "Seed for detune and noise (overrides the plan)")
	sampleRate := flag.Int("sample-rate", 0, "Sample rate in Hz (default 44100)")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn or error")
	profiles := flag.Bool("profiles", false, "Print the voicing of every phase and exit")
	sound := flag.String("sound", "", "Sound on or off; saved as the default for later runs")
	flag.Parse()

	logger, err := common.InitLogger(os.Stderr, *logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if *profiles {
		printProfiles(os.Stdout)
		return
	}

	plan := &Plan{}
	if *planPath != "" {
		plan, err = loadPlan(*planPath)
		if err != nil {
			logger.Error("plan", "path", *planPath, "err", err)
			os.Exit(1)
		}
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "seed":
			plan.Seed = uint32(*seed)
		case "sample-rate":
			plan.SampleRate = *sampleRate
		case "seconds":
			plan.Seconds = *seconds
		}
	})
	if plan.SampleRate == 0 {
		plan.SampleRate = 44100
	}

	var store settings.Store
	if fs, err := settings.DefaultFileStore(); err != nil {
		logger.Warn("preferences unavailable", "err", err)
	} else {
		store = fs
	}
	if err := applySoundFlag(*sound, plan, store); err != nil {
		fmt.Fprintln(os.Stderr, "breathe:", err)
		os.Exit(2)
	}

	if !*live && *outputPath == "" {
		fmt.Fprintln(os.Stderr, "breathe: one of -out or -play is required")
		flag.Usage()
		os.Exit(2)
	}

	p := newPlayer(plan, plan.SampleRate, logger)

	if *live {
		stop := make(chan struct{})
		interrupts := make(chan os.Signal, 1)
		signal.Notify(interrupts, os.Interrupt)
		go func() {
			<-interrupts
			close(stop)
		}()
		go readControls(os.Stdin, p)

		logger.Info("playing", "sampleRate", plan.SampleRate, "seconds", plan.Seconds,
			"controls", "p=pause/resume r=reset s=sound on m=sound off")
		if err := p.play(plan.Seconds, stop); err != nil {
			logger.Error("play", "err", err)
			os.Exit(1)
		}
		return
	}

	length := plan.Seconds
	if length == 0 {
		length = 64
	}
	logger.Info("rendering", "path", *outputPath, "seconds", length, "sampleRate", plan.SampleRate)
	if err := p.writeWAV(*outputPath, length); err != nil {
		logger.Error("render", "err", err)
		os.Exit(1)
	}
	logger.Info("done", "voices", len(p.engine.Voices()), "faults", len(p.session.Faults()))
}

// readControls maps single-letter lines on r to actions.
func readControls(r io.Reader, p *player) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		switch strings.TrimSpace(scanner.Text()) {
		case "p":
			p.enqueue(ActionToggle)
		case "r":
			p.enqueue(ActionReset)
		case "s":
			p.enqueue(ActionSoundOn)
		case "m":
			p.enqueue(ActionSoundOff)
		}
	}
}

func printProfiles(w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PHASE\tKEY\tTONE\tHARMONY\tBOWL\tBOWL AT\tWIND\tSHIMMER")
	for _, p := range audio.AllProfiles() {
		fmt.Fprintf(tw, "%s\t%s\t%.2f Hz\t%.2f Hz\t%.2f Hz\t+%.2fs\t%.0f->%.0f Hz\t%.0f->%.0f Hz\n",
			p.Phase.Spec().ID, p.Key, p.ToneFreq, p.HarmonyFreq, p.BowlFreq, p.BowlOffset,
			p.WindCenter, p.WindEnd, p.ShimmerCenter, p.ShimmerEnd)
	}
	tw.Flush()
}
