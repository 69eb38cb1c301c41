// Package reconcile implements the add and update workflows that keep a
// catalog snapshot in step with its manifest.
//
// A catalog type plugs in through [Kind], which knows how to read and write
// its manifest and how to parse user supplied ids. The [Reconciler] combines
// a Kind with a [catalog.Store] and the fetch orchestrator:
//
//   - Add parses the given ids, fetches them, adds them to the manifest and
//     merges the fresh entries into the snapshot.
//   - Update refetches some or all manifest entries and replaces their
//     snapshot values. Every other snapshot entry is kept unchanged.
//
// By default any fetch failure aborts the run after the fetch phase and
// nothing is written. With Options.KeepGoing successful results are
// persisted, failed ids keep their previous value, and the call returns a
// [*PartialError].
package reconcile
