// Package workflow runs scripted batches of commands described in YAML.
//
// A batch is a list of steps, each naming a command and a with map of options
// decoded into StepOptions. Executor runs the steps one at a time through the
// shell executor and keeps automatic console reveal suppressed until the batch
// ends.
package workflow
