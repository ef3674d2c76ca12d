package searchindex

import (
	"fmt"
	"testing"

	"github.com/dshills/godocsearch/pkg/types"
)

func BenchmarkDeriveNgrams(b *testing.B) {
	names := []string{
		"net/http",
		"net/http::Client",
		"net/http::Client#Do",
		"encoding/json::Decoder#DisallowUnknownFields",
		"io::EOF",
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, name := range names {
			_ = DeriveNgrams(name)
		}
	}
}

func BenchmarkBuilder_Build(b *testing.B) {
	var entries []types.DocEntry
	for i := 0; i < 500; i++ {
		owner := fmt.Sprintf("example.com/pkg%d::Type%d", i%20, i)
		entries = append(entries, types.DocEntry{
			CanonicalName:   owner,
			Kind:            types.KindModule,
			Path:            fmt.Sprintf("types/pkg%d/Type%d.html", i%20, i),
			OwnerName:       owner,
			DescriptionHTML: "<p>Type holds <code>state</code> for a single request.</p>",
		})
		entries = append(entries, types.DocEntry{
			CanonicalName: owner + "#Close",
			Kind:          types.KindMethod,
			Path:          fmt.Sprintf("types/pkg%d/Type%d.html#method-i-Close", i%20, i),
			OwnerName:     owner,
			MemberLabel:   "#Close()",
		})
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := NewBuilder().Build(entries); err != nil {
			b.Fatal(err)
		}
	}
}
