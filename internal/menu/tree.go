package menu

import "strings"

// Pure traversal helpers over a menu forest. Rendering state (which nodes
// are expanded) is passed in, never stored here, so every walk is a plain
// function of its inputs.

// Option is a flattened entry for select dropdowns.
type Option struct {
	ID       string `json:"value"`
	Label    string `json:"label"`
	Path     string `json:"path,omitempty"`
	IsParent bool   `json:"isParent"`
}

// Row is one line of the admin table view.
type Row struct {
	Node       Node `json:"node"`
	Depth      int  `json:"depth"`
	Number     int  `json:"number,omitempty"`
	Expandable bool `json:"expandable"`
	Expanded   bool `json:"expanded"`
}

// Walk visits every node depth-first in pre-order, passing the depth. The
// visitor returns false to stop early.
func Walk(forest []Node, visit func(n Node, depth int) bool) {
	walk(forest, 0, visit)
}

func walk(nodes []Node, depth int, visit func(n Node, depth int) bool) bool {
	for _, n := range nodes {
		if !visit(n, depth) {
			return false
		}
		if !walk(n.SubMenus, depth+1, visit) {
			return false
		}
	}
	return true
}

// Options flattens the forest for dropdown use: pre-order, so a parent
// always immediately precedes its children, with a depth-proportional
// indent marker on the label.
func Options(forest []Node) []Option {
	var options []Option
	Walk(forest, func(n Node, depth int) bool {
		label := n.Title
		if depth > 0 {
			label = strings.Repeat("—", depth) + " " + n.Title
		}
		options = append(options, Option{
			ID:       n.ID,
			Label:    label,
			Path:     n.Path,
			IsParent: n.HasChildren(),
		})
		return true
	})
	return options
}

// Rows produces the admin table rows. Children of a collapsed node are
// omitted entirely; row numbering applies only to top-level nodes.
func Rows(forest []Node, expanded map[string]bool) []Row {
	var rows []Row
	for i, n := range forest {
		rows = appendRows(rows, n, 0, i+1, expanded)
	}
	return rows
}

func appendRows(rows []Row, n Node, depth, number int, expanded map[string]bool) []Row {
	isExpanded := expanded[n.ID]
	// The row carries its node without children: collapsed descendants must
	// not leak through the payload, and expanded ones get rows of their own.
	flat := n
	flat.SubMenus = nil
	row := Row{
		Node:       flat,
		Depth:      depth,
		Expandable: n.HasChildren(),
		Expanded:   n.HasChildren() && isExpanded,
	}
	if depth == 0 {
		row.Number = number
	}
	rows = append(rows, row)
	if row.Expanded {
		for _, child := range n.SubMenus {
			rows = appendRows(rows, child, depth+1, 0, expanded)
		}
	}
	return rows
}

// Find locates a node by ID anywhere in the forest.
func Find(forest []Node, id string) *Node {
	var found *Node
	Walk(forest, func(n Node, depth int) bool {
		if n.ID == id {
			node := n
			found = &node
			return false
		}
		return true
	})
	return found
}

// Patch replaces the node matching updated.ID, looking at the top level and
// one level deep inside each parent's children, and returns the new forest.
// It reports whether a match was found; deeper trees need a refetch.
func Patch(forest []Node, updated Node) ([]Node, bool) {
	patched := false
	result := make([]Node, len(forest))
	for i, n := range forest {
		if n.ID == updated.ID {
			updated.SubMenus = n.SubMenus
			result[i] = updated
			patched = true
			continue
		}
		if n.HasChildren() {
			children := make([]Node, len(n.SubMenus))
			for j, child := range n.SubMenus {
				if child.ID == updated.ID {
					updated.SubMenus = child.SubMenus
					children[j] = updated
					patched = true
					continue
				}
				children[j] = child
			}
			n.SubMenus = children
		}
		result[i] = n
	}
	return result, patched
}

// IDs collects every node ID in the forest in pre-order.
func IDs(forest []Node) []string {
	var ids []string
	Walk(forest, func(n Node, depth int) bool {
		ids = append(ids, n.ID)
		return true
	})
	return ids
}
