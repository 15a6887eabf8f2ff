// Package api defines the JSON payloads served by the daemon and the
// conversions from domain records into them. Payload field names are part
// of the wire contract consumed by existing clients and use snake_case.
package api
