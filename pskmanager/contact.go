package pskmanager

import "time"

// Contact is the in-memory view of a PSK correspondent, mirroring
// store.Contact but exposed without requiring callers to import the
// store package directly.
type Contact struct {
	Address    string
	StaticPub  [32]byte
	InitialPSK [32]byte
	Label      string
	CreatedAt  time.Time
}
