// Package flagx lets several flag sets share one argument list: each set
// sees only the flags it owns.
package flagx

import (
	"flag"
	"io"
	"strings"
)

// FilterArgs keeps the arguments of args that belong to one of the named
// flags, together with their values. Both "-f value" and "-f=value" forms
// are recognised; a following argument that starts with '-' is never
// taken as a value. Everything else is dropped, so the result can be fed
// to a flag.FlagSet that does not know the other flags.
func FilterArgs(args []string, names []string) []string {
	owned := make(map[string]bool, len(names))
	for _, n := range names {
		owned[n] = true
	}

	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") {
			continue
		}
		if name, _, ok := strings.Cut(arg, "="); ok {
			if owned[name] {
				out = append(out, arg)
			}
			continue
		}
		if !owned[arg] {
			continue
		}
		out = append(out, arg)
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			i++
			out = append(out, args[i])
		}
	}
	return out
}

// ConfigPath returns the JSON config file named by -c or -config in args,
// or "" when neither is given. The last occurrence wins.
func ConfigPath(args []string) string {
	var path string

	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&path, "config", "", "path to config file")
	fs.StringVar(&path, "c", "", "path to config file (short)")
	_ = fs.Parse(FilterArgs(args, []string{"-c", "-config", "--config"}))

	return path
}
