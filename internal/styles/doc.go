// Package styles is the public face of the style engine. A Manager creates,
// updates, deletes, applies, imports and exports styles. It keeps a backup
// file of every changed style in the styles directory, keeps the apply
// shortcut of each style registered under its current name, and reports the
// outcome of every operation to a Notifier.
package styles
