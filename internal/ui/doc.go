// Package ui renders shell command activity for people at a terminal.
//
// ConsoleCommandEventLogger turns executor lifecycle events into one-line
// messages on the console logger, and StreamEcho copies streamed output chunks
// to the terminal as the child process writes them.
package ui
