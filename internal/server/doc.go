// Package server implements trafficled-server, a mock traffic data server.
//
// Bodies registered in an Endpoints table (in memory, or loaded from a
// directory tree) are served over two transports:
//
//	GET /<path>      chunked HTTP, one flush per chunk
//	GET /ws/<path>   websocket, one binary message per chunk
//
// Chunks are ChunkSize bytes and ChunkDelay apart, so clients exercise the
// short-read paths they meet on a slow link. Each response carries an
// X-Request-ID header and is logged and counted; /metrics exposes the
// counters when a metrics.Collector is supplied.
//
// With Advertise set the server registers itself as _trafficled._tcp over
// mDNS for the discover command.
package server
