// Package schema defines the dialog form definitions consumed by the rule
// registry and the modal orchestrator. Definitions are loaded from YAML/JSON
// files (the embedded defaults cover the admin content types) or derived from
// OpenAPI component schemas.
package schema
