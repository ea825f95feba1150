// Package file loads pathscout configuration from TOML files.
//
// A file only needs the keys it changes; everything else keeps the
// built-in default. Secrets may also come from the environment:
//   - PATHSCOUT_NEO4J_PASSWORD
//   - PATHSCOUT_PUBMED_API_KEY
package file
