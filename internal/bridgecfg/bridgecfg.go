// Package bridgecfg loads the optional BridgeDefaults file: a small YAML
// document overriding the slave-side termios tweaks and default working
// directory applied during the handshake's pre-exec setup.
package bridgecfg

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/nick/ptybridge/internal/launch"
)

// BridgeDefaults is the top-level YAML schema for --defaults.
type BridgeDefaults struct {
	// Verase overrides the erase character bound to VERASE. Expressed as a
	// single-character string so the YAML stays human-editable; empty means
	// "use the built-in default" (DEL).
	Verase string `yaml:"verase"`
	// ExtraIflag and ExtraLflag are symbolic names OR'd onto the slave's
	// termios, matching the flag names recognized by golang.org/x/sys/unix.
	ExtraIflag []string `yaml:"extra_iflag"`
	ExtraLflag []string `yaml:"extra_lflag"`
	// Chdir is applied before exec, same as --dir, but lets a defaults file
	// fix it for every invocation.
	Chdir string `yaml:"chdir"`
}

// Load parses path into a BridgeDefaults. A missing path is not an error —
// callers get the zero value, which Resolve below turns into
// launch.StandardDefaults().
func Load(path string) (BridgeDefaults, error) {
	var d BridgeDefaults
	if path == "" {
		return d, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return d, nil
		}
		return d, fmt.Errorf("bridgecfg: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &d); err != nil {
		return d, fmt.Errorf("bridgecfg: parsing %s: %w", path, err)
	}
	return d, nil
}

// Resolve turns a parsed BridgeDefaults into launch.Defaults, falling back
// to launch.StandardDefaults() for any field left unset.
func (d BridgeDefaults) Resolve() (launch.Defaults, error) {
	out := launch.StandardDefaults()

	if d.Verase != "" {
		out.Erase = d.Verase[0]
	}
	if len(d.ExtraIflag) > 0 {
		iflag, err := resolveFlags(d.ExtraIflag)
		if err != nil {
			return out, err
		}
		out.ExtraIflag = iflag
	}
	if len(d.ExtraLflag) > 0 {
		lflag, err := resolveFlags(d.ExtraLflag)
		if err != nil {
			return out, err
		}
		out.ExtraLflag = lflag
	}
	return out, nil
}

func resolveFlags(names []string) (uint32, error) {
	var acc uint32
	for _, name := range names {
		bit, ok := termiosFlagNames[name]
		if !ok {
			return 0, fmt.Errorf("bridgecfg: unknown termios flag %q", name)
		}
		acc |= bit
	}
	return acc, nil
}
