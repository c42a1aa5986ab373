// Package console implements the scrollback surface that reveals command
// output. Sink creates its Surface lazily and forgets it when the user closes
// the console, so the next append starts a fresh one.
package console
