package telemetry

import (
	"fmt"
	"io"
	"time"

	"github.com/robinvdvleuten/roclex/output"
)

const slowThreshold = 100 * time.Millisecond

// formatTimingTree writes a timer and its children:
//
//	highlight main.roc: 12ms
//	├─ tokenize: 3ms (412 tokens)
//	└─ render terminal: 9ms
func formatTimingTree(w io.Writer, root *timerNode, styles *output.Styles) {
	name := root.name
	if styles != nil {
		name = styles.Keyword(name)
	}
	_, _ = fmt.Fprintf(w, "%s: %s\n", name, formatNodeStats(root, styles))

	for i, child := range root.children {
		formatNode(w, child, "", i == len(root.children)-1, styles)
	}
}

func formatNode(w io.Writer, node *timerNode, prefix string, isLast bool, styles *output.Styles) {
	branch, extension := "├─ ", "│  "
	if isLast {
		branch, extension = "└─ ", "   "
	}

	tree := prefix + branch
	if styles != nil {
		tree = styles.Dim(tree)
	}
	_, _ = fmt.Fprintf(w, "%s%s: %s\n", tree, node.name, formatNodeStats(node, styles))

	for i, child := range node.children {
		formatNode(w, child, prefix+extension, i == len(node.children)-1, styles)
	}
}

func formatNodeStats(node *timerNode, styles *output.Styles) string {
	duration := node.duration()
	stats := formatDuration(duration)
	if node.tokens > 0 {
		stats += fmt.Sprintf(" (%d tokens)", node.tokens)
	}

	if styles == nil {
		return stats
	}
	if duration >= slowThreshold {
		return styles.Warning(stats)
	}
	return styles.Dim(stats)
}

// duration of a timer that was never ended counts up to now.
func (n *timerNode) duration() time.Duration {
	if n.end.IsZero() {
		return time.Since(n.start)
	}
	return n.end.Sub(n.start)
}

// formatDuration shows milliseconds below one second, seconds above.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%.0fms", float64(d)/float64(time.Millisecond))
	}
	return fmt.Sprintf("%.2fs", float64(d)/float64(time.Second))
}
