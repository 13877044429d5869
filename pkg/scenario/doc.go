// Package scenario loads coordination scenarios from YAML and runs them
// against a fresh registry.
//
// A scenario declares named handles and a list of steps. Each step performs
// one action on one handle and may check expectations afterwards:
//
//	id: filter-intersection
//	name: Filters intersect
//	handles:
//	  - {name: f1, kind: filter, group: G}
//	  - {name: f2, kind: filter, group: G}
//	steps:
//	  - action: set
//	    handle: f1
//	    keys: [a, b, c]
//	    expect:
//	      filtered_keys: [a, b, c]
//	  - action: set
//	    handle: f2
//	    keys: [a, c]
//	    expect:
//	      filtered_keys: [a, c]
//
// A null key list in an expectation means "absent": no selection, or no
// active filter.
package scenario
