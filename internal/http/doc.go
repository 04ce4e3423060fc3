// Package http provides the HTTP client used to fetch album pages and
// stream audio files.
//
// The Client in this package handles:
//   - User-Agent headers
//   - Fetching pages as text with status checking
//   - Opening GET responses for streaming without buffering the body
//
// # Basic Usage
//
//	client := http.NewClient()
//
//	// Fetch HTML page
//	html, err := client.GetString(ctx, "https://example.com/album/name")
//
//	// Stream a file; the caller checks the status and closes the body
//	resp, err := client.Open(ctx, mp3URL)
//
// # Progress Tracking
//
// The ProgressWriter type can be used to wrap any io.Writer for progress tracking:
//
//	pw := &http.ProgressWriter{
//	    Writer:   file,
//	    Total:    contentLength,
//	    OnUpdate: func(written, total int64) { /* update UI */ },
//	}
//
// # Proxy
//
// NewSOCKS5Transport builds a transport that dials through a SOCKS5 proxy.
// Pass it to NewClient with WithTransport.
package http
