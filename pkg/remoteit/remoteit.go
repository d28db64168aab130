// Package remoteit is a client for the remote.it GraphQL API.
//
// Each call is a single signed HTTP round trip: the client signs the request
// with the caller's credentials (see package auth), posts a GraphQL document
// from a fixed catalog, and decodes the response. A Client is safe for
// concurrent use.
//
//	profiles, err := credentials.Load(credentials.LoadOptions{})
//	...
//	creds, err := profiles.Profile("default")
//	...
//	client, err := remoteit.New(creds, remoteit.Options{})
//	...
//	files, err := client.GetFiles(ctx)
package remoteit

import "time"

const (
	// BaseURL is the scheme and host of the remote.it API.
	BaseURL = "https://api.remote.it"

	// GraphQLPath is appended to BaseURL for GraphQL requests.
	GraphQLPath = "/graphql/v1"

	// FileUploadPath is appended to BaseURL for multipart file uploads.
	FileUploadPath = "/graphql/v1/file/upload"

	// ContentTypeJSON is the content type of GraphQL requests.
	ContentTypeJSON = "application/json"

	// DefaultTimeout applies when Options.HTTPClient is nil.
	DefaultTimeout = 30 * time.Second
)
