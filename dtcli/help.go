package dtcli

import (
	"fmt"
	"path/filepath"

	"oss.terrastruct.com/drawtex/lib/version"
	"oss.terrastruct.com/drawtex/lib/xmain"
)

func help(ms *xmain.State) {
	fmt.Fprintf(ms.Stdout, `%[1]s %[2]s
Usage:
  %[1]s [--watch=false] [--color=black] [--tool=line] file.dtx [file.tex]
  %[1]s palette
  %[1]s tools

%[1]s replays the drawing events in file.dtx on a blank 10x10 canvas and writes
the resulting scene to file.tex as TikZ. It defaults to file.tex if an output
path is not provided. Every export event in the script produces one
tikzpicture; a script without one is exported once at the end.

Use - to have %[1]s read from stdin or write to stdout.

Script commands, one per line, # starts a comment:
  tool NAME            select a tool
  color NAME           select a palette color, any CSS color maps to the nearest
  snap on|off          snap line endpoints to ellipses and rectangle corners
  down X Y / move X Y / up X Y
  drag X0 Y0 X1 Y1     down, move and up in one line
  key C                one key press, or <backspace> <return> <space>
  type TEXT            one key press per character
  recolor NAME         recolor the selected shape
  undo / clear / export

Flags:
%[3]s

Subcommands:
  %[1]s palette - Lists the palette colors
  %[1]s tools - Lists the tools
  %[1]s version - Prints the version
`, filepath.Base(ms.Name), version.Version, ms.Opts.Defaults())
}
