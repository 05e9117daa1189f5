// Package patch is the client side of partial navigation. It keeps a live
// document, merges partial envelopes into its regions and reconciles the
// islands mounted inside them.
//
// # Documents
//
// Parse reads a full-render page with golang.org/x/net/html. Regions are found
// through their marker comments, islands through their root attributes, and
// the build id through the state script. Islands are revived with the
// Runtime, which is the black-box client component framework:
//
//	doc, err := patch.Parse(resp.Body, runtime)
//
// # Applying envelopes
//
// Document.Apply validates every payload of an envelope before touching the
// document, so a failed envelope leaves it unchanged. A replace payload
// rebuilds the region and reconciles islands keyed by region and identity
// (type plus key or position): a surviving island keeps its node and
// instance and is handed its new props, a vanished one is unmounted and a new
// one is mounted. Append and prepend payloads insert content next to the
// existing one and only mount what they bring. Head elements are merged by
// dedup key and never removed; the title is always replaced. Applying the
// same envelope twice leaves the document as applying it once.
//
// # Navigating
//
// A Navigator turns link clicks into partial requests:
//
//	nav := patch.NewNavigator(doc, patch.FullNavigatorFunc(loadPage),
//		patch.WithBaseURL(base),
//	)
//	res := nav.Navigate(ctx, "/blog/hello", link)
//
// Partial navigation is opt-in through the f-client-nav attribute on the link
// or an ancestor. Network errors, non-2xx responses, malformed payloads, a
// missing region and a build id mismatch all fall back to a full navigation.
// The last navigation wins: a newer one cancels the request in flight and a
// stale response is dropped.
package patch
