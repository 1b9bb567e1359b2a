package dtcli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cdr.dev/slog"
	"github.com/spf13/pflag"
	"oss.terrastruct.com/xdefer"

	"oss.terrastruct.com/drawtex/dtedit"
	"oss.terrastruct.com/drawtex/dtrenderers/dttikz"
	"oss.terrastruct.com/drawtex/dtscript"
	"oss.terrastruct.com/drawtex/lib/color"
	"oss.terrastruct.com/drawtex/lib/go2"
	"oss.terrastruct.com/drawtex/lib/log"
	"oss.terrastruct.com/drawtex/lib/version"
	"oss.terrastruct.com/drawtex/lib/xmain"
)

func Run(ctx context.Context, ms *xmain.State) (err error) {
	ctx = log.WithDefault(ctx, ms.Stderr)

	colorFlag := ms.Opts.String("DRAWTEX_COLOR", "color", "c", string(color.Black), "initial palette color. Any CSS color is accepted and mapped to the nearest palette entry")
	toolFlag := ms.Opts.String("DRAWTEX_TOOL", "tool", "t", dtedit.ToolLine.String(), "initial tool. See the tools subcommand for options")
	snapFlag, err := ms.Opts.Bool("DRAWTEX_SNAP", "snap", "s", false, "snap line endpoints onto nearby ellipse and rectangle boundaries")
	if err != nil {
		return err
	}
	currentColorFlag, err := ms.Opts.Bool("DRAWTEX_CURRENT_COLOR", "current-color", "", false, "export every command in the color selected at export time instead of each shape's own color")
	if err != nil {
		return err
	}
	precisionFlag, err := ms.Opts.Int64("DRAWTEX_PRECISION", "precision", "p", dttikz.DEFAULT_PRECISION, "number of decimals coordinates are rounded to")
	if err != nil {
		return err
	}
	watchFlag, err := ms.Opts.Bool("DRAWTEX_WATCH", "watch", "w", false, "watch for changes to input and re-render")
	if err != nil {
		return err
	}
	debugFlag, err := ms.Opts.Bool("DEBUG", "debug", "d", false, "print debug logs.")
	if err != nil {
		ms.Log.Warn.Printf("Invalid DEBUG flag value ignored")
		debugFlag = go2.Pointer(false)
	}
	timeoutFlag, err := ms.Opts.Int64("DRAWTEX_TIMEOUT", "timeout", "", 120, "the maximum number of seconds a render may take. Ignored in watch mode")
	if err != nil {
		return err
	}
	versionFlag, err := ms.Opts.Bool("", "version", "v", false, "get the version")
	if err != nil {
		return err
	}

	err = ms.Opts.Flags.Parse(ms.Opts.Args)
	if !errors.Is(err, pflag.ErrHelp) && err != nil {
		return xmain.UsageErrorf("failed to parse flags: %v", err)
	}
	if errors.Is(err, pflag.ErrHelp) {
		help(ms)
		return nil
	}

	if len(ms.Opts.Flags.Args()) > 0 {
		switch ms.Opts.Flags.Arg(0) {
		case "version":
			if len(ms.Opts.Flags.Args()) > 1 {
				return xmain.UsageErrorf("version subcommand accepts no arguments")
			}
			fmt.Fprintln(ms.Stdout, version.Version)
			return nil
		case "palette":
			paletteCmd(ms)
			return nil
		case "tools":
			toolsCmd(ms)
			return nil
		}
	}

	if *debugFlag {
		ctx = log.Leveled(ctx, slog.LevelDebug)
	}
	if ms.Opts.Flags.Changed("timeout") {
		os.Setenv("DRAWTEX_TIMEOUT", fmt.Sprintf("%d", *timeoutFlag))
	}

	if len(ms.Opts.Flags.Args()) == 0 {
		if *versionFlag {
			fmt.Fprintln(ms.Stdout, version.Version)
			return nil
		}
		help(ms)
		return nil
	} else if len(ms.Opts.Flags.Args()) >= 3 {
		return xmain.UsageErrorf("too many arguments passed")
	}

	inputPath := ms.Opts.Flags.Arg(0)
	var outputPath string
	if len(ms.Opts.Flags.Args()) >= 2 {
		outputPath = ms.Opts.Flags.Arg(1)
	} else if inputPath == "-" {
		outputPath = "-"
	} else {
		outputPath = renameExt(inputPath, ".tex")
	}
	inputPath = ms.AbsPath(inputPath)
	outputPath = ms.AbsPath(outputPath)

	tool, err := dtedit.ParseTool(*toolFlag)
	if err != nil {
		return xmain.UsageErrorf("-t[ool]: %v", err)
	}
	col, err := color.Parse(*colorFlag)
	if err != nil {
		return xmain.UsageErrorf("-c[olor]: %v", err)
	}
	if *precisionFlag < 0 {
		return xmain.UsageErrorf("-p[recision] must be non-negative, got %d", *precisionFlag)
	}

	opts := renderOpts{
		tool:  tool,
		color: col,
		snap:  *snapFlag,
		tikz: dttikz.RenderOpts{
			UseCurrentColor: *currentColorFlag,
			Precision:       precisionFlag,
		},
		inputPath:  inputPath,
		outputPath: outputPath,
	}

	if *watchFlag {
		if inputPath == "-" {
			return xmain.UsageErrorf("-w[atch] cannot be combined with reading input from stdin")
		}
		if outputPath == "-" {
			return xmain.UsageErrorf("-w[atch] cannot be combined with writing output to stdout")
		}
		w, err := newWatcher(ctx, ms, opts)
		if err != nil {
			return err
		}
		return w.run()
	}

	ctx, cancel := log.WithTimeout(ctx, time.Duration(*timeoutFlag)*time.Second)
	defer cancel()

	err = render(ctx, ms, opts)
	if err != nil {
		return fmt.Errorf("failed to render %s: %w", ms.HumanPath(inputPath), err)
	}
	return nil
}

type renderOpts struct {
	tool  dtedit.Tool
	color color.Name
	snap  bool
	tikz  dttikz.RenderOpts

	inputPath  string
	outputPath string
}

func (opts renderOpts) session() *dtedit.Session {
	s := dtedit.NewSession()
	s.Tool = opts.tool
	s.Color = opts.color
	s.Snap = opts.snap
	return s
}

// render replays the script at opts.inputPath on a fresh canvas and writes
// every exported document to opts.outputPath.
func render(ctx context.Context, ms *xmain.State, opts renderOpts) (err error) {
	defer xdefer.Errorf(&err, "failed to replay script")

	start := time.Now()
	input, err := ms.ReadPath(opts.inputPath)
	if err != nil {
		return err
	}

	events, err := dtscript.Parse(ms.HumanPath(opts.inputPath), bytes.NewReader(input))
	if err != nil {
		return err
	}

	c := dtedit.New(opts.session())
	ctx = log.WithFields(ctx, slog.F("session", c.Session.ID.String()))
	log.Debug(ctx, "replaying script", slog.F("events", len(events)))

	tikz := opts.tikz
	docs, err := dtscript.Play(ctx, c, events, &tikz)
	if err != nil {
		return err
	}

	out := append(bytes.Join(docs, []byte("\n\n")), '\n')
	err = ms.WritePath(opts.outputPath, out)
	if err != nil {
		return err
	}

	if opts.outputPath != "-" {
		dur := time.Since(start)
		ms.Log.Success.Printf("successfully rendered %s to %s in %s", ms.HumanPath(opts.inputPath), ms.HumanPath(opts.outputPath), dur)
	}
	return nil
}

func paletteCmd(ms *xmain.State) {
	for _, n := range color.Palette {
		fmt.Fprintf(ms.Stdout, "%-8s %s\n", n, n.Hex())
	}
}

func toolsCmd(ms *xmain.State) {
	for _, t := range dtedit.Tools {
		kind := "edit"
		if t.Draws() {
			kind = "draw"
		}
		fmt.Fprintf(ms.Stdout, "%-14s %s\n", t, kind)
	}
}

func renameExt(fp string, newExt string) string {
	ext := filepath.Ext(fp)
	if ext == "" {
		return fp + newExt
	}
	return strings.TrimSuffix(fp, ext) + newExt
}
