// Package widget connects a rendering host to crosstalk.
//
// A Binding owns one selection handle and one filter handle for a single
// widget. The host feeds it the widget's Payload on every render, reports
// user gestures through Select and Filter, and repaints from Rows whenever
// OnChange fires. Binding renders nothing itself.
//
// When another widget in the group makes a selection, the binding calls its
// OnBrushReset hooks so the host can drop its own in-progress brush. Only
// one widget in a group should show an active brush at a time.
package widget
