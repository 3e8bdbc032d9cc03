// Package present turns a successful transformation response into a timed
// reveal sequence. BuildPlan computes the ordered task list; a Scheduler runs
// it on a single goroutine; the Presenter renders each task and appends it to
// a result area under the generation it was started with.
package present
