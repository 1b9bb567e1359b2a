package xmain

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"oss.terrastruct.com/cmdlog"
	"oss.terrastruct.com/xos"
)

type Opts struct {
	Args  []string
	Flags *pflag.FlagSet
	env   *xos.Env
	log   *cmdlog.Logger

	registeredEnvs map[string]string
}

func NewOpts(env *xos.Env, log *cmdlog.Logger, args []string) *Opts {
	flags := pflag.NewFlagSet("", pflag.ContinueOnError)
	flags.SortFlags = false
	flags.Usage = func() {}
	flags.SetOutput(io.Discard)
	return &Opts{
		Args:           args,
		Flags:          flags,
		env:            env,
		log:            log,
		registeredEnvs: make(map[string]string),
	}
}

// Defaults renders every flag with its default, usage and environment
// variable, wrapped to 80 columns.
func (o *Opts) Defaults() string {
	b := &strings.Builder{}

	lines := make([]string, 0)
	maxlen := 0
	o.Flags.VisitAll(func(f *pflag.Flag) {
		line := ""
		if f.Shorthand != "" {
			line = fmt.Sprintf("  -%s, --%s", f.Shorthand, f.Name)
		} else {
			line = fmt.Sprintf("      --%s", f.Name)
		}
		varname, _ := pflag.UnquoteUsage(f)
		if varname != "" {
			line += " " + varname
		}
		line += "\x00"
		if len(line) > maxlen {
			maxlen = len(line)
		}

		usage := f.Usage
		if f.DefValue != "" {
			if f.Value.Type() == "string" {
				usage += fmt.Sprintf(" (default %q)", f.DefValue)
			} else {
				usage += fmt.Sprintf(" (default %s)", f.DefValue)
			}
		}
		if e, ok := o.registeredEnvs[f.Name]; ok {
			usage += fmt.Sprintf(" ($%s)", e)
		}
		line += usage
		lines = append(lines, line)
	})

	for _, line := range lines {
		sidx := strings.Index(line, "\x00")
		spacing := strings.Repeat(" ", maxlen-sidx)
		fmt.Fprintln(b, line[:sidx], spacing, wrap(maxlen+2, 80, line[sidx+1:]))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (o *Opts) getEnv(flag, k string) string {
	if k != "" {
		o.registeredEnvs[flag] = k
		return o.env.Getenv(k)
	}
	return ""
}

func (o *Opts) Int64(envKey, flag, shortFlag string, defaultVal int64, usage string) (*int64, error) {
	if env := o.getEnv(flag, envKey); env != "" {
		envVal, err := strconv.ParseInt(env, 10, 64)
		if err != nil {
			return nil, fmt.Errorf(`invalid environment variable %s. Expected int64. Found "%v".`, envKey, env)
		}
		defaultVal = envVal
	}

	return o.Flags.Int64P(flag, shortFlag, defaultVal, usage), nil
}

func (o *Opts) String(envKey, flag, shortFlag string, defaultVal, usage string) *string {
	if env := o.getEnv(flag, envKey); env != "" {
		defaultVal = env
	}

	return o.Flags.StringP(flag, shortFlag, defaultVal, usage)
}

func (o *Opts) Bool(envKey, flag, shortFlag string, defaultVal bool, usage string) (*bool, error) {
	if env := o.getEnv(flag, envKey); env != "" {
		if !boolyEnv(env) {
			return nil, fmt.Errorf(`invalid environment variable %s. Expected bool. Found "%s".`, envKey, env)
		}
		defaultVal = truthyEnv(env)
	}

	return o.Flags.BoolP(flag, shortFlag, defaultVal, usage), nil
}

func boolyEnv(s string) bool {
	return falseyEnv(s) || truthyEnv(s)
}

func falseyEnv(s string) bool {
	return s == "0" || s == "false"
}

func truthyEnv(s string) bool {
	return s == "1" || s == "true"
}

// wrap fills s into lines of at most w columns, indenting every line after
// the first by i spaces. Words longer than a line are kept whole.
func wrap(i, w int, s string) string {
	if w-i < 24 {
		return s
	}
	var b strings.Builder
	col := i
	for j, word := range strings.Fields(s) {
		if j > 0 {
			if col+1+len(word) > w {
				b.WriteString("\n" + strings.Repeat(" ", i))
				col = i
			} else {
				b.WriteByte(' ')
				col++
			}
		}
		b.WriteString(word)
		col += len(word)
	}
	return b.String()
}
