// Package analysis inspects genomes and populations.
//
//   - [Spectrum]: temporal spectrum of one pixel over a full loop
//   - [SeamDelta]: largest intensity jump between the last and first frame
//   - [Summarize]: structure and diversity statistics of a population
//
// A genome whose term has temporal frequency t puts its energy in bin t of the
// spectrum, so
//
//	bins := analysis.Spectrum(plasma.NewField(g, 4), 0.3, 0.7)
//
// peaks exactly at the temporal frequencies present in g.
package analysis
