// Package board holds the sort-order allocation rules and the client-side
// board state machine shared by the HTTP layer and the repositories.
package board

// PositionGap is the spacing between adjacent sort orders. Appending a row
// places it at the current column maximum plus this gap; a full reorder
// rewrites every row at gap-spaced positions.
const PositionGap = 100

// PositionFor returns the sort order for the item at index i of a column
// after a reorder: 100, 200, 300, ...
func PositionFor(i int) int {
	return (i + 1) * PositionGap
}
