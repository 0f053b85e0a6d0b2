package msgq

import (
	"errors"
	"fmt"
	"sync/atomic"
)

// UID uniquely identifies a message for the lifetime of the process.
type UID uint64

// NoUID is never issued to a message.
const NoUID UID = 0

// Kind is an application-defined message discriminator.
type Kind int

// KindTimeout is the kind of the message Get returns when its timeout elapses
// before anything was put in the queue. Applications must not use it for their
// own messages.
const KindTimeout Kind = -1

// ErrMoved is the panic value raised when a moved-from message is used.
var ErrMoved = errors.New("msgq: use of moved message")

// lastUID is the process-wide identifier source. It is 64 bits wide; after
// 2^64-1 messages it wraps and skips NoUID, at which point uniqueness is no
// longer guaranteed.
var lastUID atomic.Uint64

func nextUID() UID {
	for {
		if id := UID(lastUID.Add(1)); id != NoUID {
			return id
		}
	}
}

// Message is implemented by everything a Queue can carry.
//
// A Message has exactly one owner. Move hands the contents to a new handle
// and leaves the receiver empty; any later use of the receiver panics with
// ErrMoved.
type Message interface {
	Kind() Kind
	ID() UID
	Move() Message
	Valid() bool
}

// Msg is a message without a payload.
type Msg struct {
	kind  Kind
	id    UID
	moved bool
}

// NewMsg creates a Msg of the given kind with a fresh UID.
func NewMsg(kind Kind) *Msg {
	return &Msg{kind: kind, id: nextUID()}
}

// Kind returns the kind the message was created with.
func (m *Msg) Kind() Kind {
	m.mustOwn()
	return m.kind
}

// ID returns the message's UID.
func (m *Msg) ID() UID {
	m.mustOwn()
	return m.id
}

// Move transfers the message to a new handle. m is unusable afterwards.
func (m *Msg) Move() Message {
	return m.take()
}

// Valid reports whether m still owns its contents.
func (m *Msg) Valid() bool {
	return m != nil && !m.moved
}

func (m *Msg) String() string {
	if !m.Valid() {
		return "Msg{moved}"
	}
	return fmt.Sprintf("Msg{Kind: %d, ID: %d}", m.kind, m.id)
}

func (m *Msg) take() *Msg {
	m.mustOwn()
	n := &Msg{kind: m.kind, id: m.id}
	m.kind, m.id, m.moved = 0, NoUID, true
	return n
}

func (m *Msg) mustOwn() {
	if !m.Valid() {
		panic(ErrMoved)
	}
}

// DataMsg is a message that carries a payload of type T.
type DataMsg[T any] struct {
	Msg
	payload T
}

// NewDataMsg creates a DataMsg of the given kind holding payload.
func NewDataMsg[T any](kind Kind, payload T) *DataMsg[T] {
	return &DataMsg[T]{
		Msg:     Msg{kind: kind, id: nextUID()},
		payload: payload,
	}
}

// Payload returns the data the message was created with.
func (d *DataMsg[T]) Payload() T {
	d.mustOwn()
	return d.payload
}

// Move transfers the message and its payload to a new handle. d is unusable
// afterwards.
func (d *DataMsg[T]) Move() Message {
	n := &DataMsg[T]{Msg: *d.Msg.take(), payload: d.payload}
	var zero T
	d.payload = zero
	return n
}

// Valid reports whether d still owns its contents.
func (d *DataMsg[T]) Valid() bool {
	return d != nil && d.Msg.Valid()
}

func (d *DataMsg[T]) String() string {
	if !d.Valid() {
		return "DataMsg{moved}"
	}
	return fmt.Sprintf("DataMsg{Kind: %d, ID: %d, Payload: %v}", d.kind, d.id, d.payload)
}
