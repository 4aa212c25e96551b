package tui

import (
	"fmt"

	"github.com/muesli/termenv"
)

// PrintBanner outputs an ASCII art banner for Cairn.
func PrintBanner() {
	p := termenv.ColorProfile()
	// Slate-to-teal gradient, stone colors for a cairn.
	s1 := termenv.String("   ____      _            ").Foreground(p.Color("#94a3b8"))
	s2 := termenv.String("  / ___|__ _(_)_ __ _ __  ").Foreground(p.Color("#7dd3fc"))
	s3 := termenv.String(" | |   / _` | | '__| '_ \\ ").Foreground(p.Color("#67e8f9"))
	s4 := termenv.String(" | |__| (_| | | |  | | | |").Foreground(p.Color("#5eead4"))
	s5 := termenv.String("  \\____\\__,_|_|_|  |_| |_|").Foreground(p.Color("#6ee7b7"))

	fmt.Println()
	fmt.Println(s1)
	fmt.Println(s2)
	fmt.Println(s3)
	fmt.Println(s4)
	fmt.Println(s5)
	fmt.Println()
}
