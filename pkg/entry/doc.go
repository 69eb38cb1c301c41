// Package entry defines the identity and record model shared by every catalog
// type.
//
// An [Info] is a small comparable value naming one catalog item (for example
// an owner/repo pair). It knows its stable ID and how to fetch the full record
// for itself. The record, an [Entry], is only ever produced by Info.Fetch and
// carries the Info it was fetched for.
//
// Infos are compared structurally with ==, so two infos built from the same
// manifest row are the same info. [Set] keeps a deduplicated, insertion
// ordered collection of infos for the reconciler.
package entry
