// Package model defines the types shared by the report form pipeline and the
// training dashboard: field and section definitions produced by the section
// grammar parser, the form state snapshot (Values), the resolved view types
// renderers consume, and the opaque training records relayed from the remote
// gateway. Decorators run after parsing and may enrich a FormModel (for
// example by attaching configured default values) before controllers bind
// state to it.
package model
