package dispatch

import "github.com/chainnote/e2e/envelope"

// routeKind identifies which codec+decrypter a registered (version,
// protocol) pair routes to.
type routeKind int

const (
	routeStandard routeKind = iota
	routePSK
)

type protocolKey struct {
	version  byte
	protocol byte
}

// registry maps the wire-format (version, protocol) pair of spec.md §3
// to its route, mirroring the teacher's crypto/chain/registry.go
// RegisterProvider/lookup shape. Only two pairs exist today; a third
// envelope kind would register here rather than growing a type switch.
var registry = map[protocolKey]routeKind{
	{envelope.StandardVersion, envelope.StandardProtocol}: routeStandard,
	{envelope.PSKVersion, envelope.PSKProtocol}:            routePSK,
}

// lookup reads the leading version/protocol bytes of note and returns the
// registered route, if any. Unrecognized or too-short input is reported
// as "not registered," never as an error — per spec.md §4.I, unrelated
// chain traffic must be ignored silently.
func lookup(note []byte) (routeKind, bool) {
	if len(note) < 2 {
		return 0, false
	}
	kind, ok := registry[protocolKey{note[0], note[1]}]
	return kind, ok
}
