// Package schemas embeds the JSON Schema documents shipped with the service.
package schemas

import _ "embed"

// StructuredResume is the schema for analysis output
//
//go:embed structured_resume.schema.json
var StructuredResume []byte
