package plan

import (
	"fmt"
	"strings"
)

// Render produces EXPLAIN's plan text: one indented line per node,
// children nested under their parent.
func Render(n Node) string {
	var b strings.Builder
	renderNode(&b, n, 0)
	return b.String()
}

func renderNode(b *strings.Builder, n Node, depth int) {
	indent := strings.Repeat("  ", depth)
	switch node := n.(type) {
	case *CreateTableNode:
		fmt.Fprintf(b, "%sCreateTable %s\n", indent, node.Schema.Name)
	case *DropTableNode:
		fmt.Fprintf(b, "%sDropTable %s\n", indent, node.Name)
	case *InsertNode:
		fmt.Fprintf(b, "%sInsert %s (%d rows)\n", indent, node.Table, len(node.Values))
	case *ScanNode:
		if node.Filter != nil {
			fmt.Fprintf(b, "%sScan %s (filter: %s)\n", indent, node.Table, node.Filter)
		} else {
			fmt.Fprintf(b, "%sScan %s\n", indent, node.Table)
		}
	case *PrimaryKeyScanNode:
		fmt.Fprintf(b, "%sPrimaryKeyScan %s = %s\n", indent, node.Table, node.Value.String_())
	case *IndexScanNode:
		fmt.Fprintf(b, "%sIndexScan %s.%s = %s\n", indent, node.Table, node.Field, node.Value.String_())
	case *NestedLoopJoinNode:
		fmt.Fprintf(b, "%sNestedLoopJoin outer=%v predicate=%v\n", indent, node.Outer, node.Predicate)
		renderNode(b, node.Left, depth+1)
		renderNode(b, node.Right, depth+1)
	case *HashJoinNode:
		fmt.Fprintf(b, "%sHashJoin outer=%v predicate=%v\n", indent, node.Outer, node.Predicate)
		renderNode(b, node.Left, depth+1)
		renderNode(b, node.Right, depth+1)
	case *AggregateNode:
		fmt.Fprintf(b, "%sAggregate\n", indent)
		renderNode(b, node.Source, depth+1)
	case *FilterNode:
		fmt.Fprintf(b, "%sFilter %s\n", indent, node.Predicate)
		renderNode(b, node.Source, depth+1)
	case *OrderNode:
		fmt.Fprintf(b, "%sOrder\n", indent)
		renderNode(b, node.Source, depth+1)
	case *OffsetNode:
		fmt.Fprintf(b, "%sOffset %d\n", indent, node.Offset)
		renderNode(b, node.Source, depth+1)
	case *LimitNode:
		fmt.Fprintf(b, "%sLimit %d\n", indent, node.Limit)
		renderNode(b, node.Source, depth+1)
	case *ProjectionNode:
		fmt.Fprintf(b, "%sProjection\n", indent)
		renderNode(b, node.Source, depth+1)
	case *UpdateNode:
		fmt.Fprintf(b, "%sUpdate %s\n", indent, node.Table)
		renderNode(b, node.Source, depth+1)
	case *DeleteNode:
		fmt.Fprintf(b, "%sDelete %s\n", indent, node.Table)
		renderNode(b, node.Source, depth+1)
	default:
		fmt.Fprintf(b, "%s?\n", indent)
	}
}
