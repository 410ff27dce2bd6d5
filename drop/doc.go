// Package drop implements a concurrent dataflow pipeline engine: workers
// (suppliers, functions, transformers, consumers, actions, and the
// internal fork/join/drain/forward primitives) connected by bounded,
// order-preserving pipes, assembled into a directed acyclic graph and
// run concurrently with backpressure, cancellation, and retry.
package drop
