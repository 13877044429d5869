// Package keys provides key-set primitives for crosstalk groups.
//
// A key is an opaque string that identifies one row of the dataset shared by
// every participant in a group. Key sets are unordered, but they are exposed
// as slices, so this package fixes one stable order for them: keys are
// de-duplicated and sorted in ascending byte-wise order.
//
// # Absent vs. Empty
//
// A selection can be absent (nobody is selecting anything) and a filter can be
// inactive (nobody is filtering). Both differ from an empty key set, which for
// filters means "every row is filtered out". [Optional] carries that
// distinction explicitly instead of relying on nil slices:
//
//	keys.None()               // no selection / filter inactive
//	keys.Some([]string{})     // active, but matches nothing
//	keys.Some([]string{"a"})  // active, matches "a"
package keys
