// Package route compiles textual path patterns into matchers with a specificity score.
//
// # Pattern Syntax
//
// A pattern is a slash-separated list of segments:
//
//	/blog                 literal segment
//	/blog/:slug           named parameter, matches exactly one segment
//	/shop/:page?          optional parameter, matches one segment or nothing
//	/docs/:path*          catch-all, matches zero or more remaining segments
//	/files/:path+         catch-all, matches one or more remaining segments
//	/users/:id(\d+)       parameter constrained by an anchored regular expression
//	/(marketing)/pricing  route group, never part of the matchable URL
//
// Catch-all segments must be the last segment of a pattern. Parameter values are
// percent-decoded; catch-all values keep their inner slashes.
//
// # Ranking
//
// Every segment carries a rank: literal (4) > parameter (3) > optional (2) > catch-all (1).
// Regex segments carry the rank they were declared with (WithRegexRank), defaulting to
// RankParam. Scores compare as follows:
//
//  1. a pattern without a catch-all outranks any pattern with one
//  2. ranks are compared segment by segment, left to right; the first difference decides
//  3. when one rank list is a prefix of the other, the shorter pattern wins
//
// Equal scores are left to the caller, which breaks ties by declaration order.
//
// # Trailing Slashes
//
// TrailingSlash describes how request paths are normalized before matching:
// TrailingSlashNever strips a trailing slash, TrailingSlashAlways adds one and
// TrailingSlashPreserve leaves the path untouched. The root path is never changed.
package route
