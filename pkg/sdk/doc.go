// Package sdk provides an HTTP client for a docdex server.
//
// For embedding the engine in-process, use the root docdex package instead;
// this package talks to the cmd/docdex HTTP API.
//
//	client := sdk.New("http://localhost:8080", sdk.WithAPIKey("secret"))
//	page, err := client.Search(ctx, sdk.SearchRequest{
//		Text: "quarterly revenue",
//		Mode: "keyword",
//	})
package sdk
