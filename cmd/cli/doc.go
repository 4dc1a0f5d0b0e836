// Package cli constructs the cmdrun command-line interface, wiring the Cobra
// command hierarchy, configuration loader, structured logging, and the shell
// executor behind the run, stream, and simple commands. It exposes helpers to
// build reusable application instances and to execute the default command set.
package cli
