package reschedule

import (
	"fmt"

	"github.com/slackfocus/slackfocus/internal/omnifocus"
)

// Collect flattens every task under root: the container's own items, their
// nested sub-items at any depth, and the items of every sub-container,
// depth-first with parents before children.
//
// The walk is iterative with a visited set keyed by item ID. The store is
// assumed acyclic, but a snapshot that revisits an ID fails loudly instead
// of looping.
func Collect(root *omnifocus.Container) ([]*omnifocus.Item, error) {
	var out []*omnifocus.Item
	seenItems := make(map[string]bool)
	seenContainers := make(map[string]bool)

	containers := []*omnifocus.Container{root}
	for len(containers) > 0 {
		c := containers[0]
		containers = containers[1:]

		if c.ID != "" {
			if seenContainers[c.ID] {
				return nil, fmt.Errorf("cycle detected at project %q (%s)", c.Name, c.ID)
			}
			seenContainers[c.ID] = true
		}

		items, err := collectItems(c.Items, seenItems)
		if err != nil {
			return nil, err
		}
		out = append(out, items...)

		// Sub-containers are walked after this container's items, keeping
		// parent-before-children order across levels.
		containers = append(c.Children, containers...)
	}

	return out, nil
}

// collectItems walks an item forest depth-first, parent before children.
func collectItems(roots []*omnifocus.Item, seen map[string]bool) ([]*omnifocus.Item, error) {
	var out []*omnifocus.Item

	stack := make([]*omnifocus.Item, len(roots))
	copy(stack, roots)

	for len(stack) > 0 {
		item := stack[0]
		stack = stack[1:]
		if item == nil {
			continue
		}

		if item.ID != "" {
			if seen[item.ID] {
				return nil, fmt.Errorf("cycle detected at task %q (%s)", item.Name, item.ID)
			}
			seen[item.ID] = true
		}

		out = append(out, item)
		stack = append(item.Children, stack...)
	}

	return out, nil
}
