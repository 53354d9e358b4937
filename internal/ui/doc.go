// Package ui renders trafficled output in the terminal.
//
// Components are plain values that render to strings with lipgloss:
//
//   - Header: command banner with title and parameters
//   - Result: success, failure or warning box (check-update)
//   - Board: LED grid coloured slow, medium or fast by percent flow
//
// WatchModel is the one interactive piece, a Bubble Tea model that refetches
// speeds on a timer and redraws the boards.
//
// zap logging stays silent unless TRAFFICLED_LOG_LEVEL is set, so the styled
// output is not interleaved with log lines.
package ui
