// Package types provides shared type definitions for godocsearch.
//
// This package defines the records that flow between the documentation
// producer, the search index builder and the query engine.
//
// # Documentation Entries
//
// DocEntry is a tagged variant over four kinds of documented objects:
//
//	entry := types.DocEntry{
//	    CanonicalName: "net/http::Client#Do",
//	    Kind:          types.KindMethod,
//	    Path:          "types/net/http/Client.html#method-i-Do",
//	    OwnerName:     "net/http::Client",
//	    MemberLabel:   "#Do(req *Request)",
//	}
//
// Modules (packages and types) carry no member label. Members (methods,
// package functions, struct fields, consts and vars) always do.
//
// # Validation
//
//	if err := entry.Validate(); err != nil {
//	    return fmt.Errorf("invalid entry %s: %w", entry.CanonicalName, err)
//	}
//
// # Ranked Results
//
// RankedEntry is what the query engine hands to its consumer: display
// metadata plus the score that placed it. Scores are unbounded sums of
// n-gram weights; only entries with a positive score are ever reported.
package types
