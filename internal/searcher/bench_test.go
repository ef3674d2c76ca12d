package searcher

import (
	"fmt"
	"testing"

	"github.com/dshills/godocsearch/internal/searchindex"
	"github.com/dshills/godocsearch/pkg/types"
)

// largeIndex builds an index of n owners with a handful of members each
func largeIndex(b *testing.B, n int) *searchindex.Artifact {
	b.Helper()
	members := []string{"Get", "Set", "Close", "ReadAll", "WriteString", "ServeHTTP"}
	entries := make([]types.DocEntry, 0, n*(len(members)+1))
	for i := 0; i < n; i++ {
		owner := fmt.Sprintf("example.com/pkg%d::Type%d", i%50, i)
		entries = append(entries, module(owner))
		for _, m := range members {
			entries = append(entries, member(owner, m))
		}
	}

	artifact, err := searchindex.NewBuilder().Build(entries)
	if err != nil {
		b.Fatal(err)
	}
	return artifact
}

func BenchmarkQuery(b *testing.B) {
	artifact := largeIndex(b, 1000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		results, err := Query(artifact, "readall")
		if err != nil {
			b.Fatal(err)
		}
		if len(results) == 0 {
			b.Fatal("no results")
		}
	}
}

func BenchmarkEngine_Superseded(b *testing.B) {
	artifact := largeIndex(b, 1000)
	queue := &QueueScheduler{}
	engine, err := NewEngine(artifact, queue, nil)
	if err != nil {
		b.Fatal(err)
	}

	queries := []string{"r", "re", "rea", "read", "reada", "readal", "readall"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		// One chunk per keystroke, then the last query runs to completion.
		for _, q := range queries {
			engine.Search(q)
			queue.RunNext()
		}
		queue.Drain()
	}
}
