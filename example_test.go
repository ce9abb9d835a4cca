package apidrift_test

import (
	"context"
	"fmt"

	"github.com/agentstation/apidrift"
	"github.com/agentstation/apidrift/pkg/conflicts"
	"github.com/agentstation/apidrift/pkg/records"
)

func ExampleReconcile() {
	pages := [][]records.RawDocEntry{{
		{IdentityHint: "Node.rotate", Text: "Rotates the node.", CodeBlock: "rotate(angle: float)"},
	}}
	files := [][]records.RawCodeSymbol{{
		{QualifiedName: "Node.rotate", Parameters: []records.RawParameter{{Name: "angle", Type: "float"}}, Docstring: "Rotates the node."},
		{QualifiedName: "Node.queue_free", Docstring: "Queues the node for deletion."},
	}}

	set, err := apidrift.Reconcile(context.Background(), pages, files)
	if err != nil {
		fmt.Println(err)
		return
	}
	for _, e := range set.Entries {
		fmt.Printf("%s: %d conflict(s), chosen from %s\n", e.Identity, len(e.Conflicts), e.Chosen.Origin)
	}
	fmt.Println("medium:", set.Summary.Count(conflicts.SeverityMedium))
	// Output:
	// Node.queue_free: 1 conflict(s), chosen from code
	// Node.rotate: 0 conflict(s), chosen from code
	// medium: 1
}
