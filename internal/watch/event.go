package watch

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Kind is the platform-neutral kind of a filesystem event.
type Kind int

// Event kinds.
const (
	KindOther Kind = iota
	KindModifyData
	KindModifyName
	KindModifyMetadata
	KindCreate
	KindRemove
)

func (k Kind) String() string {
	switch k {
	case KindModifyData:
		return "modify-data"
	case KindModifyName:
		return "modify-name"
	case KindModifyMetadata:
		return "modify-metadata"
	case KindCreate:
		return "create"
	case KindRemove:
		return "remove"
	default:
		return "other"
	}
}

// Event is a raw filesystem event: a kind plus the affected paths.
type Event struct {
	Kind  Kind
	Paths []string
}

// opKinds lists fsnotify op bits in the order their events are produced.
var opKinds = []struct {
	op   fsnotify.Op
	kind Kind
}{
	{fsnotify.Create, KindCreate},
	{fsnotify.Write, KindModifyData},
	{fsnotify.Rename, KindModifyName},
	{fsnotify.Chmod, KindModifyMetadata},
	{fsnotify.Remove, KindRemove},
}

// EventsFromFsnotify splits an fsnotify event into one Event per op bit.
// fsnotify reports the destination of a rename as Create on the new name,
// and the source as Rename on the old name.
//
// An event with no known op bit or an empty name yields nil.
func EventsFromFsnotify(ev fsnotify.Event) []Event {
	if ev.Name == "" {
		return nil
	}

	paths := []string{filepath.Clean(ev.Name)}

	var events []Event

	for _, ok := range opKinds {
		if ev.Has(ok.op) {
			events = append(events, Event{Kind: ok.kind, Paths: paths})
		}
	}

	return events
}
