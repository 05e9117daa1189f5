// Package router dispatches HTTP requests against a route table built by
// fsroute.
//
// # Pipeline
//
// For every request the Dispatcher:
//
//  1. Normalises the escaped path with the trailing slash policy and answers a
//     308 to the canonical path when it changed (query preserved).
//  2. Selects the first route of the score-ordered table that matches, or the
//     _404 of the deepest directory covering the path, or a built-in 404.
//  3. Runs the route's middleware from the namespace root to its directory.
//     Each middleware calls ctx.Next to continue; returning without it
//     short-circuits the rest of the chain.
//  4. Runs the handler for the request method. HEAD falls back to GET and "*"
//     matches any method; otherwise the answer is 405 with an Allow header.
//  5. Writes the returned response.
//
// Errors and panics from any stage go to the nearest-ancestor _500. If that
// page fails too, a built-in 500 is written and both errors are logged and
// reported.
//
// # Rendering
//
// Handlers call ctx.Render with a templ component. The renderer wraps it in
// the route's layouts, innermost first, then in the _app wrapper, and renders
// eagerly so render failures reach the error page. A full render fills the
// head slot and appends the state script:
//
//	<script id="__FRSH_STATE" type="application/json">{"buildId":"...","islands":[...]}</script>
//
// A partial navigation (?fresh-partial=main or the X-Fresh-Partial header)
// gets a partial.Envelope with the requested regions instead.
//
// # Usage
//
//	var cfg router.Config
//	config.MustLoad(&cfg)
//
//	table, err := fsroute.Build(namespace, cfg.BuildOptions()...)
//	if err != nil {
//		return err
//	}
//	d := router.New(table, router.WithConfig(cfg), router.WithLogger(log))
//	http.ListenAndServe(":8080", d)
//
// Reloading swaps the whole table atomically:
//
//	d.Swap(newTable)
package router
