// Package dataset prepares the public Titanic passenger list for analysis.
//
// A run is a fixed, linear pipeline over an immutable [table.Table]:
//
//  1. [Fetch] downloads the CSV from [SourceURL] and parses it.
//  2. [ReplaceSentinel] turns every "?" cell into the missing-value marker.
//  3. [ApplyColumn] reduces the cabin column to its first cabin with [FirstToken].
//  4. [Persist] writes the result to [OutputFile], header first, no index column.
//
// [Preparer.Run] executes the stages once, in order. Each stage returns a new
// table, so nothing is shared between runs.
//
// # Errors
//
// Cabin extraction never fails: a missing, non-textual or blank cell becomes
// missing. No distinction is kept between those cases because consumers of the
// output rely on the single missing marker.
//
// Network, parse and filesystem errors are returned wrapped and are fatal to
// the run. There is no retry and no partial output.
package dataset
