// Package gitlab3 provides the schema, value types and helpers for working
// with the GitLab v3 REST API.
//
// # Overview
//
// The API surface is described declaratively as a tree of ResourceDefinition
// values (see GitLab for the shipped catalogue). A connection built by the
// glclient package walks that tree once and binds, for every resource, the
// operations its definition declares:
//
//	<plural>          list the collection, e.g. "projects"
//	find_<name>       search the collection by field values
//	get_<name>        fetch one instance (also bound as <name>)
//	add_<name>        create an instance
//	update_<name>     save an instance
//	delete_<name>     delete an instance
//
// Extra actions (for example "protect_branch" on a project or "close" on an
// issue) are bound on the resource type itself.
//
// Getting a connection
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/gitlab3/pkg/gitlab3"
//	  "github.com/fivetwenty-io/gitlab3/pkg/glclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//	  conn, err := glclient.New(ctx, &gitlab3.Config{URL: "https://gitlab.example.com", Token: "secret"})
//	  if err != nil { log.Fatal(err) }
//
//	  projects, err := conn.List(ctx, "projects", &gitlab3.ListOptions{Limit: 20})
//	  if err != nil { log.Fatal(err) }
//	  _ = projects
//	}
//
// # Instances
//
// Resource instances are field bags: the set of tracked fields is exactly the
// key set of the last payload the server returned for the instance, kept in
// server order by Fields.
//
// # Pagination
//
// Listing honors ListOptions.Limit first, then Page/PerPage. Without either,
// the whole collection is walked page by page until the server returns an
// empty page or repeats the previous one. The repeat heuristics are
// configurable through PaginationConfig.
//
// # Errors
//
// Every failure raised by the engine is an *Error carrying an ErrorKind.
// Use errors.Is with the Err* sentinels, or helpers such as IsNotFound and
// IsUnauthorized, to branch on them.
//
// # Interceptors
//
// Requests and responses pass through an InterceptorChain. The package ships
// logging, header, metrics and NATS audit interceptors.
package gitlab3
