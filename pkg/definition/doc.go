// Package definition reads form definitions: a fieldset plus the prefill,
// error, and read-only inputs for one form. Definitions are YAML, JSON, or
// TOML documents and can be loaded one at a time through a Loader or as a
// directory through LoadFS.
package definition
