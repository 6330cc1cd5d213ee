package domain

import "context"

// Fetcher performs one GitHub API GET and returns the raw response body
type Fetcher interface {
	Fetch(ctx context.Context, apiPath string) ([]byte, error)
}

// Writer persists v as pretty printed JSON at path, creating parent directories
type Writer interface {
	WriteJSON(ctx context.Context, path string, v any) error
}
