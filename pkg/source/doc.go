// Package source describes where form documents come from (a file path, an
// entry in an fs.FS, or an http(s) URL) and the Fetcher contract that reads
// them. Fetch strategies live in internal/fetch; pkg/definition wires them.
package source
