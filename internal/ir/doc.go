// Package ir provides the data model shared by every studyseq package.
//
// This package contains type definitions, their JSON codec, deep copies and
// content hashing. All other internal packages import ir; ir imports nothing
// internal.
//
// Two shapes live here:
//   - OrderObject: the author-written ordering template (fixed, random or
//     latinSquare blocks, optional sampling and interruptions).
//   - Sequence: one participant's concrete realization of the template, with
//     every choice resolved and the "end" step appended at the root.
//
// Both keep the leaf/block union as a tagged struct (Component, SequenceEntry)
// instead of relying on dynamic type inspection. On the wire a leaf is a JSON
// string and a block is a JSON object.
package ir
