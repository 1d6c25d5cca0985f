package nats

import (
	"strconv"

	"github.com/nats-io/nats.go"

	"github.com/SebastienMelki/eframe/pkg/eframe"
)

// Headers carrying frame metadata across NATS.
const (
	// HeaderEntity names the logical entity a message describes. Messages
	// without it bypass deduplication.
	HeaderEntity = "Eframe-Entity"

	// HeaderInitial marks a message as an initial snapshot ("true").
	HeaderInitial = "Eframe-Initial"
)

// Message is the payload relayed through an eframe channel. Initial records
// how the message arrived so it can be republished the same way; it plays
// no part in its identity.
type Message struct {
	Subject string
	Entity  string
	Initial bool
	Data    []byte
}

// IdentityHash keys deduplication on the entity name. Messages without an
// entity are untracked.
func (m Message) IdentityHash() (uint64, bool) {
	if m.Entity == "" {
		return 0, false
	}
	return eframe.HashString(m.Entity), true
}

// Header builds the NATS headers describing m. The initial header is only
// set for initial messages.
func (m Message) Header() nats.Header {
	h := nats.Header{}
	if m.Entity != "" {
		h.Set(HeaderEntity, m.Entity)
	}
	if m.Initial {
		h.Set(HeaderInitial, "true")
	}
	return h
}

// DecodeMessage builds a Message from an inbound NATS message. An
// unparsable initial header counts as not initial.
func DecodeMessage(subject string, header nats.Header, data []byte) Message {
	msg := Message{
		Subject: subject,
		Data:    data,
	}
	if header == nil {
		return msg
	}

	msg.Entity = header.Get(HeaderEntity)
	if initial, err := strconv.ParseBool(header.Get(HeaderInitial)); err == nil {
		msg.Initial = initial
	}
	return msg
}
