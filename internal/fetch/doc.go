// Package fetch downloads the live and typical speed files for both
// directions of travel from the traffic data server.
//
// Files are named after their dataset and the data format version the
// client understands:
//
//	<server>/current_data/data_north_V1_0_5.csv
//	<server>/current_data/typical_south_V1_0_5.csv
//
// Each file is decoded as it streams in, so a large file never needs more
// memory than the configured window. The number of records kept is bounded
// by the LED count; extra records are not read.
//
// Requests are retried with exponential backoff on network errors, server
// errors and truncated bodies. FetchAll downloads all four datasets
// concurrently and fails if any of them fails.
package fetch
