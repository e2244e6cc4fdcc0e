// Package plasma defines the parametric plasma field and its genome.
//
// A plasma is a sum of integer-frequency sine waves:
//
//   - [WaveTerm]: one periodic contributor (amplitude, spatial and temporal frequency, phase)
//   - [Genome]: an ordered set of wave terms plus a [ColorMap] descriptor
//   - [Field]: evaluates a genome at normalised pixel coordinates and integer frames
//   - [Grid]: the same evaluation with per-column and per-row tables for whole frames
//
// # Seamless loops
//
// Every frequency is an integer, and the temporal angle of a term is looked up in an
// exact table indexed by (temporal * frame) mod loopFrames. Frame 0 and frame
// loopFrames therefore produce bit-identical values:
//
//	f := plasma.NewField(g, 1)
//	f.At(x, y, 0) == f.At(x, y, g.LoopLength()) // always true
//
// # Thread Safety
//
// Genomes are plain values. A Field or Grid is immutable after construction and may be
// read by any number of goroutines.
package plasma
