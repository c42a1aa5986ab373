// Package execshell runs external commands on behalf of an interactive tool.
//
// ShellExecutor owns a single-threaded EventLoop on which every process
// callback runs: output chunks are normalized by OutputCollector, a per-process
// WatchdogTimer reveals the console for slow or failing commands, and
// SuppressionController turns that automatic reveal off while scripted batches
// run. Process offers callback, blocking and suspending entry points over one
// Spawn primitive. OSCommandRunner launches commands behind a fixed-size
// pseudo-terminal.
package execshell
