// Package version holds build metadata injected with -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/pokitdok/version.Version=v1.2.0"
//
// UserAgent derives the header value the transport sends with each request.
package version
