/*
Package waypoint turns a run of Dijkstra's single-source shortest-path algorithm into a replayable sequence of steps and plays it back one step at a time.

It separates the computation (the Trace Engine, a pure function from a graph and a start vertex to an immutable step list) from the presentation (a Playback Controller that owns the current index, the paused/playing state and a single cancellable timer, and calls your renderer on every index change).

# Concept

Every step records what the algorithm just did: its kind (init-distance, probe-candidate, relax-edge, ...), a private snapshot of the distance table and visited set, the vertices in focus, a log message and the line of the reference listing being executed. A front end never inspects the algorithm itself; it only draws step records.

# Usage

	package main

	import (
		"fmt"
		"log"

		"github.com/aretw0/waypoint"
		"github.com/aretw0/waypoint/pkg/domain"
	)

	func main() {
		vis, err := waypoint.New(
			waypoint.WithRenderer(func(s domain.Step) {
				fmt.Printf("%-16s %v  %s\n", s.Kind, s.Distances, s.Message)
			}),
		)
		if err != nil {
			log.Fatal(err)
		}
		defer vis.Close()

		// Renders step 0.
		if _, err := vis.Build(); err != nil {
			log.Fatal(err)
		}

		// Step through manually, or call Play to advance on a timer.
		for vis.Controller().StepForward() {
		}
	}
*/
package waypoint
