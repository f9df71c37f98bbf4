// Package domain models the per-county weather and wildfire records carried
// by the live snapshot feed.
//
// # Wire Format
//
// The snapshot producer pushes one `data_broadcast` payload per request:
//
//	{"wildfire": [ {record}, {record}, ... ]}
//
// The single "wildfire" array is historically overloaded: each element carries
// both optional weather measurements and optional wildfire fields for one
// county. This package accepts that shape as the wire contract and exposes a
// single unified [Record] per county rather than guessing which half is
// authoritative.
//
// Record fields and units:
//
//	fips        5-digit county FIPS code; may arrive as a string or a number
//	            (upstream CSV tooling strips leading zeros). Normalized to a
//	            zero-padded string key.
//	tmax, tmin  daily max/min temperature, degrees Celsius
//	prcp        precipitation, millimeters; known to arrive as a quoted
//	            string in some year files
//	wind_speed  wind speed, meters per second
//	fmc         fuel moisture content, tons per acre
//	fire_size   wildfire size, acres
//	LATITUDE    WGS-84 coordinates of the fire origin (uppercase field names
//	LONGITUDE   preserved from the source dataset)
//
// # Coercion
//
// Any measurement may be absent, null, a number, or a numeric string. Decoding
// never fails on a bad measurement: un-coercible values become nil, which
// downstream renders as "no data". Only a payload that is not a JSON object at
// all is an error, and even then the caller is expected to drop the snapshot
// and keep the previous one on screen.
//
// # Geographic Validity
//
// Wildfire coordinates are only plausible inside the continental bounding box
// lat [24, 50], lon [-125, -66]. Records outside it keep their weather half
// (the county fill still works) but are excluded from marker rendering; see
// the readmodel package.
package domain
