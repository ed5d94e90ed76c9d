// Package schema describes report payloads and the portal API as OpenAPI 3
// documents. Schemas are derived from the parsed form so the same field
// declarations drive rendering, validation and API documentation.
package schema
