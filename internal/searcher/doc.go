// Package searcher ranks search index entries against free-text queries.
//
// The Engine is built for a single UI thread. A query is compiled to the bit
// positions of its n-grams, then the index is scored in chunks, each chunk a
// task on a host-provided Scheduler so keystrokes can be handled in between.
//
// # Basic Usage
//
//	queue := &searcher.QueueScheduler{}
//	engine, err := searcher.NewEngine(artifact, queue, func(r searcher.Results) {
//	    if r.Final {
//	        render(r.Entries)
//	    }
//	})
//	if err != nil {
//	    return err
//	}
//
//	engine.Search("find_by")
//	queue.Drain()
//
// # Scoring
//
// An entry scores weight[p] + bonus for every queried position p set in its
// fingerprint. Weights favor n-grams carrying call syntax ("#", ".", "("),
// then segment starts (":"), then token starts (" "), then capitals and
// punctuation. The per-entry tiebreaker bonus is below 0.01, so it only
// orders entries whose weight sums are equal.
//
// # Cancellation
//
// Every Search increments a generation counter. A scheduled chunk whose
// generation is no longer current returns without scoring or reporting, so
// only the latest query ever delivers results.
//
// # Lifecycle
//
//	Idle -> Compiling -> Scanning -> Scanning ... -> Done -> Idle
//	                        \-> Superseded (a newer Search started)
//
// Queries with no known n-grams skip scanning and deliver an empty final
// result immediately.
package searcher
