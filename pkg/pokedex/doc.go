// Package pokedex models the two datasets basesync works with.
//
// The source dataset is a JSON object keyed by string-encoded numeric IDs,
// each entry carrying a `base` object with snake_case stat names and the
// `url` the values were taken from. The singularity dataset is a JSON array
// of curated records whose optional `base` object uses human-readable labels.
//
// Singularity records keep every member in its original order so that
// rewriting the file only changes the `base` member of updated records.
package pokedex
