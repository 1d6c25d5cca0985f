// Package eframe provides a bounded multi-producer/multi-consumer channel
// whose consumers deduplicate "initial" frames per logical entity.
//
// Producers send values either as ordinary updates (Send) or as initial
// snapshots (SendInitial). Each Receiver remembers the identity hash of every
// value it has delivered, and silently drops an initial frame whose identity
// it has already seen. Ordinary frames are always delivered and always
// recorded, so a plain update also primes the receiver against a later
// snapshot of the same entity.
//
// Payload types opt in by implementing Identifier:
//
//	type Device struct{ ID string }
//
//	func (d Device) IdentityHash() (uint64, bool) {
//		return eframe.HashString(d.ID), true
//	}
//
//	tx, rx := eframe.Bounded[Device](64)
//	defer tx.Release()
//	defer rx.Release()
//
//	_ = tx.SendInitial(ctx, Device{ID: "a"})
//	_ = tx.SendInitial(ctx, Device{ID: "a"}) // dropped by rx
//	dev, err := rx.Recv(ctx)
//
// The dedup memory of a Receiver grows with the number of distinct
// identities it delivers and is only cleared by ResetProcessed. Long-lived
// receivers over high-cardinality entity sets should either reset
// periodically or opt into WithBloomMemory.
package eframe
