// Package glclient is the entry point for connecting to a GitLab v3 server.
//
// It normalizes the configuration, picks a token manager and binds the
// resource definition tree from the gitlab3 package to a live connection.
// The connection embeds the root resource, so the top-level operations are
// called on it directly.
//
// Quick start
//
//	ctx := context.Background()
//
//	conn, err := glclient.NewWithToken(ctx, "gitlab.example.com", "s3cr3t")
//	if err != nil { log.Fatal(err) }
//
//	// Every project, walking the pages until GitLab runs out.
//	projects, err := conn.List(ctx, "projects", nil)
//
//	// The first project called "gitlab", stopping at the page holding it.
//	project, err := conn.Find(ctx, "project", gitlab3.Params{"name": "gitlab"}, nil)
//
//	// Nested resources hang off their owner.
//	issue, err := project.Create(ctx, "issue", nil, "Broken build")
//	_, err = issue.Call(ctx, "close")
//
//	// Act as another user for a single call.
//	_, err = conn.Get(gitlab3.WithSudo(ctx, "jdoe"), "current_user", nil, nil)
//
// # TLS and development mode
//
// Config.SkipTLSVerify is refused unless GITLAB3_DEV_MODE is "true" or "1".
//
// # Helpers
//
// NewWithToken and NewWithPassword wrap New for the common cases.
// NewWithPersister stores the token obtained by Login, as the CLI does.
package glclient
