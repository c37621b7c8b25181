// Package components contains the general purpose component variants:
// rendering, simple motion, a stats overlay and Lua scripted behaviour.
package components
