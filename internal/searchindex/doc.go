// Package searchindex builds the static name search index.
//
// Every documentation entry's canonical name is expanded into a set of
// 3-character n-grams covering several views of the name: original case,
// lower case, acronyms ("AR" for "ActiveRecord"), space separated,
// underscore stripped, and for members a ".name" and "name(" form. The
// n-grams of all entries are ranked by how many entries contain them and
// each is given a bit position in that order, so common n-grams share the
// low-order bytes of the fingerprints.
//
// # Basic Usage
//
//	artifact, err := searchindex.NewBuilder().Build(entries)
//	if err != nil {
//	    return err
//	}
//	if _, err := artifact.WriteFile("doc/js/search_index.js", searchindex.FormatScript); err != nil {
//	    return err
//	}
//
// # Wire Format
//
// The artifact is a JSON object with three members:
//
//	{
//	  "ngrams":  {":Cl": 12, "#Do": 87, ...},
//	  "weights": [1, 2, 4, ...],
//	  "entries": [[[255, 3], 0.0087, "types/net/http/Client.html", "net/http::Client"], ...]
//	}
//
// Entry records are positional: fingerprint bytes, tiebreaker bonus, path,
// owner name, then the optional member label and description snippet.
// The script format wraps the object as "var search_data = {...};".
//
// Load rejects any artifact that does not satisfy the invariants the query
// engine depends on, wrapping ErrMalformedArtifact.
package searchindex
