package bridgecfg

import "golang.org/x/sys/unix"

// termiosFlagNames maps the symbolic names accepted in a BridgeDefaults
// YAML file to their golang.org/x/sys/unix bit values. Only the flags the
// reference slave setup actually touches are listed; anything else is
// rejected rather than silently ignored.
var termiosFlagNames = map[string]uint32{
	"IXANY":   unix.IXANY,
	"IMAXBEL": unix.IMAXBEL,
	"ECHOE":   unix.ECHOE,
	"ECHOK":   unix.ECHOK,
	"ECHOCTL": unix.ECHOCTL,
	"ECHOKE":  unix.ECHOKE,
}
