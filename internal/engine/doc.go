// Package engine provides the protocol engine: the single component that
// talks to the outside world. It exposes the Window API to a synchronous
// interpreter, turns window and stream mutations into buffered update
// messages on the output stream, and blocks on the input stream when the
// interpreter asks for input.
//
// # State machine
//
// An engine moves through four states:
//
//	Uninitialized -> AwaitingFirstWindow -> Running <-> AwaitingInput
//
// The first OpenRoot call blocks until the host has sent exactly one
// init message carrying display metrics. After that every input wait
// performs a flush: all dirty state since the last flush is serialized
// into one update line, the generation number is incremented, and the
// engine reads events until one completes the wait.
//
// # Concurrency
//
// The engine is single-threaded and cooperative. Exactly one logical
// thread of control may call it; the read of the next inbound event is
// the only point that suspends. There is no internal locking because
// there is no internal concurrency.
package engine
