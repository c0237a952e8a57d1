// Package liberty implements the Liberty timing-library document model:
// characterization variants, the value tree, fragment decoding, merge and
// noise-strip transforms, and the deterministic text serializer.
//
// # Overview
//
// Standard-cell characterization produces one JSON fragment per cell per
// process corner, plus corner-wide and library-wide fragments. This package
// turns those fragments into a single Liberty-format text document:
//
//   - Decode JSON fragments into a value tree that preserves the
//     integer/float distinction of the source literals
//   - Merge fragments under a disjoint-key guarantee
//   - Strip ccsnoise data when the target variant does not include it
//   - Serialize the tree into Liberty text with a fixed, deterministic layout
//
// # Characterization Variants
//
// Each corner is characterized in up to three variants, encoded as a
// [TimingType] bit set:
//
//   - basic: delay and transition tables
//   - ccsnoise: basic plus composite current source noise data
//   - leakage: standalone power leakage tables
//
// File names carry the variant as a suffix ("_ccsnoise", "_pwrlkg"; basic is
// unsuffixed). A ccsnoise fragment is a strict superset of the basic one, so
// a basic document can be produced from ccsnoise input by stripping.
//
// # Document Layout
//
// Liberty text is a nested group structure:
//
//	library ("name") {
//	    define(attr,group,type);
//
//	    cell ("cell_name") {
//	        leakage_power () {
//	            value : 0.0000000000;
//	        }
//	    }
//	}
//
// The serializer emits groups with four-space indentation, attribute lines
// in a fixed sort order, and numeric tables as quoted comma-separated rows
// with backslash continuations. Numeric formatting is width-padded so that
// regenerating a document from identical input is byte-for-byte stable.
//
// # Errors
//
// Structural problems (duplicate keys, booleans or nulls in fragments,
// embedded quotes, malformed tables) are fatal and reported with codes from
// the errors package. The serializer never writes a partial group.
package liberty
