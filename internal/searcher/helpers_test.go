package searcher

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dshills/godocsearch/internal/searchindex"
	"github.com/dshills/godocsearch/pkg/types"
)

// module and member build minimal valid entries for tests
func module(name string) types.DocEntry {
	return types.DocEntry{
		CanonicalName: name,
		Kind:          types.KindModule,
		Path:          "classes/" + name + ".html",
		OwnerName:     name,
	}
}

func member(owner, name string) types.DocEntry {
	return types.DocEntry{
		CanonicalName: owner + "#" + name,
		Kind:          types.KindMethod,
		Path:          "classes/" + owner + ".html#method-i-" + name,
		OwnerName:     owner,
		MemberLabel:   "#" + name + "()",
	}
}

func buildIndex(t *testing.T, entries ...types.DocEntry) *searchindex.Artifact {
	t.Helper()
	artifact, err := searchindex.NewBuilder().Build(entries)
	require.NoError(t, err)
	return artifact
}

// corpus returns a few dozen realistic names
func corpus() []types.DocEntry {
	var entries []types.DocEntry
	owners := []string{
		"ActiveRecord::Base", "ActiveRecord::Querying", "ActiveRecord::FinderMethods",
		"ActiveSupport::TimeZone", "ActiveSupport::TimeWithZone", "ActionView::Template",
		"ActionController::Rendering", "ActionController::Renderer",
	}
	members := []string{"find_by", "find_by_sql", "render", "save", "where", "in_time_zone"}
	for _, owner := range owners {
		entries = append(entries, module(owner))
		for _, m := range members {
			entries = append(entries, member(owner, m))
		}
	}
	return entries
}

type recorder struct {
	results []Results
}

func (r *recorder) record(res Results) {
	r.results = append(r.results, res)
}

func (r *recorder) final(t *testing.T) Results {
	t.Helper()
	require.NotEmpty(t, r.results)
	last := r.results[len(r.results)-1]
	require.True(t, last.Final, "last delivery must be final")
	return last
}
