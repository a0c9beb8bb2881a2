package dagger

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// Visualizer renders a resolved component tree for debugging, grounded on
// the same three output shapes as a dependency-graph visualizer: Graphviz
// DOT, an indented text report grouped by component, and a flat adjacency
// list.
type Visualizer struct {
	tree *ResolvedComponentTree
}

// NewVisualizer wraps a tree produced by BuildGraph.
func NewVisualizer(tree *ResolvedComponentTree) *Visualizer {
	return &Visualizer{tree: tree}
}

// WriteDOT writes the graph in Graphviz DOT format: one node per binding
// node in each component's local resolution table, filled lightgreen for
// reusable-scoped bindings, lightblue for other scoped bindings, lightgray
// for unscoped UNRESOLVED_DELEGATE bindings and lightyellow otherwise, with
// edges to the nodes that resolve each dependency.
func (v *Visualizer) WriteDOT(w io.Writer) error {
	fmt.Fprintln(w, "digraph bindings {")
	fmt.Fprintln(w, "  rankdir=LR;")
	fmt.Fprintln(w, "  node [shape=box];")

	ids := make(map[BindingNodeHandle]string)
	i := 0
	for _, r := range v.tree.Flatten() {
		for _, rb := range r.LocalResolvedBindings() {
			for _, n := range rb.Nodes {
				id := fmt.Sprintf("n%d", i)
				ids[n.Handle] = id
				i++
				fmt.Fprintf(w, "  %s [label=%q, fillcolor=%q, style=filled];\n",
					id, v.formatNodeLabel(n), v.nodeColor(n))
			}
		}
	}

	for _, r := range v.tree.Flatten() {
		for _, rb := range r.LocalResolvedBindings() {
			for _, n := range rb.Nodes {
				fromID, ok := ids[n.Handle]
				if !ok {
					continue
				}
				for _, dep := range n.Binding.Dependencies {
					resolved := r.ResolvedBindings(dep)
					for _, depNode := range resolved.Nodes {
						if toID, ok := ids[depNode.Handle]; ok {
							fmt.Fprintf(w, "  %s -> %s;\n", fromID, toID)
						}
					}
				}
			}
		}
	}

	fmt.Fprintln(w, "}")
	return nil
}

// WriteText writes an indented report grouped by component, root first.
func (v *Visualizer) WriteText(w io.Writer) error {
	fmt.Fprintln(w, "Resolved Component Tree:")
	fmt.Fprintln(w, "========================")
	fmt.Fprintln(w)
	v.writeComponent(w, v.tree, 0)
	return nil
}

func (v *Visualizer) writeComponent(w io.Writer, node *ResolvedComponentTree, depth int) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(w, "%s%s\n", indent, node.Resolver.ComponentPath())

	keys := node.Resolver.LocalResolvedBindings()
	sort.Slice(keys, func(i, j int) bool { return keys[i].Key.String() < keys[j].Key.String() })

	for _, rb := range keys {
		if rb.IsEmpty() {
			fmt.Fprintf(w, "%s  %s => (missing)\n", indent, rb.Key)
			continue
		}
		for _, n := range rb.Nodes {
			fmt.Fprintf(w, "%s  %s\n", indent, n)
			if len(n.Binding.Dependencies) > 0 {
				deps := make([]string, len(n.Binding.Dependencies))
				for i, d := range n.Binding.Dependencies {
					deps[i] = d.String()
				}
				fmt.Fprintf(w, "%s    depends on: [%s]\n", indent, strings.Join(deps, ", "))
			}
		}
	}
	fmt.Fprintln(w)

	for _, child := range node.Children {
		v.writeComponent(w, child, depth+1)
	}
}

// WriteAdjacencyList writes every (component, key) -> dependency edge as a
// flat, sorted list.
func (v *Visualizer) WriteAdjacencyList(w io.Writer) error {
	fmt.Fprintln(w, "Adjacency List:")
	fmt.Fprintln(w, "===============")
	fmt.Fprintln(w)

	type line struct {
		from string
		tos  []string
	}
	var lines []line

	for _, r := range v.tree.Flatten() {
		for _, rb := range r.LocalResolvedBindings() {
			for _, n := range rb.Nodes {
				var tos []string
				for _, d := range n.Binding.Dependencies {
					tos = append(tos, d.String())
				}
				lines = append(lines, line{from: fmt.Sprintf("%s@%s", n.Binding.Key, r.ComponentPath()), tos: tos})
			}
		}
	}

	sort.Slice(lines, func(i, j int) bool { return lines[i].from < lines[j].from })
	for _, l := range lines {
		fmt.Fprintf(w, "%s -> [%s]\n", l.from, strings.Join(l.tos, ", "))
	}
	return nil
}

func (v *Visualizer) formatNodeLabel(n *BindingNode) string {
	typeStr := formatType(n.Binding.Key.Type)
	parts := strings.Split(typeStr, ".")
	if len(parts) > 1 {
		typeStr = parts[len(parts)-1]
	}
	return fmt.Sprintf("%s\\n%s", typeStr, n.Binding.Kind)
}

func (v *Visualizer) nodeColor(n *BindingNode) string {
	switch {
	case n.Binding.Scope != nil && n.Binding.Scope.IsReusable():
		return "lightgreen"
	case n.Binding.Scope != nil:
		return "lightblue"
	case n.Binding.Kind == UnresolvedDelegate:
		return "lightgray"
	default:
		return "lightyellow"
	}
}
