package cli

import (
	"fmt"
	"strings"
)

// printTable renders a fixed-width terminal table: a title bar, one header
// row, and one line per record.
func printTable(title string, columns []string, rows [][]string) {
	widths := make([]int, len(columns))
	for i, c := range columns {
		widths[i] = len(c)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	total := 2
	for _, w := range widths {
		total += w + 2
	}

	fmt.Println()
	fmt.Println(strings.Repeat("=", total))
	fmt.Printf("  %s\n", title)
	fmt.Println(strings.Repeat("=", total))
	if len(rows) == 0 {
		fmt.Println("  No records found.")
		fmt.Println(strings.Repeat("=", total))
		return
	}
	for i, c := range columns {
		fmt.Printf("  %-*s", widths[i], c)
	}
	fmt.Println()
	fmt.Println(strings.Repeat("-", total))
	for _, row := range rows {
		for i, cell := range row {
			fmt.Printf("  %-*s", widths[i], cell)
		}
		fmt.Println()
	}
	fmt.Println(strings.Repeat("=", total))
}

// printKV renders a label/value summary block.
func printKV(title string, pairs [][2]string) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 56))
	fmt.Printf("  %s\n", title)
	fmt.Println(strings.Repeat("=", 56))
	for _, p := range pairs {
		fmt.Printf("  %-24s %s\n", p[0], p[1])
	}
	fmt.Println(strings.Repeat("=", 56))
}
