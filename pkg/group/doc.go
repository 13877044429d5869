// Package group implements the shared substrate of crosstalk: a registry of
// named groups, the observable variables that live inside each group, and the
// filter contribution set whose intersection is a group's effective filter.
//
// # Groups
//
// A [Group] is a named scope shared by every handle bound to that name.
// Names are case-sensitive and the empty string is a valid name. The
// [Registry] creates a group the first time its name is referenced and never
// holds two records for the same name at once.
//
// # Eviction
//
// Handles bind through [Registry.Acquire] and leave through
// [Registry.Release]. When the last bound handle leaves, the group record is
// dropped, unless [Config.RetainIdleGroups] is set or the group was fetched
// directly with [Registry.Group], which pins it for the registry's lifetime.
// A later binding to the same name starts from an empty group.
//
// # Vars and Events
//
// Each group holds named [Var]s. The selection lives in [VarSelection]; the
// filter intersection lives in [VarFilter], which is derived from the group's
// [FilterSet] and cannot be written directly. Setting a Var broadcasts a
// [ChangeEvent] to every "change" listener, including the sender's own, so a
// listener can compare [ChangeEvent.Sender] with itself to tell its own
// updates from foreign ones.
//
// # Dispatch
//
// Dispatch is synchronous: listeners run on the caller's goroutine before
// Set returns, in registration order, after the group's state has been
// updated and its locks released. A listener may call Set again; the nested
// broadcast completes before the outer one resumes. A panicking listener is
// recovered and logged, and the remaining listeners still run.
//
// # Members
//
// [Member] is the lifecycle shared by selection and filter handles:
// construct, bind to a group, subscribe, publish, close. The selection and
// filter packages embed it.
package group
