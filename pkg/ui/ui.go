// Package ui provides CLI user interface utilities
package ui

import (
	"fmt"
	"os"
	"strings"

	"github.com/xinguang/stockdeck/pkg/model"
)

// Colors for terminal output
const (
	Reset = "\033[0m"
	Bold  = "\033[1m"
	Dim   = "\033[2m"

	Red    = "\033[31m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Blue   = "\033[34m"
	Gray   = "\033[90m"

	BrightCyan = "\033[96m"
)

// Icons for various UI elements
const (
	IconSuccess = "✓"
	IconError   = "✗"
	IconWarning = "⚠"
	IconInfo    = "ℹ"
	IconUp      = "▲"
	IconDown    = "▼"
)

// Printer handles formatted output for the headless commands
type Printer struct {
	NoColor bool
}

// NewPrinter creates a new printer
func NewPrinter() *Printer {
	// Check if NO_COLOR env is set
	noColor := os.Getenv("NO_COLOR") != ""
	return &Printer{NoColor: noColor}
}

// color applies color if enabled
func (p *Printer) color(c, text string) string {
	if p.NoColor {
		return text
	}
	return c + text + Reset
}

// Success prints a success message
func (p *Printer) Success(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(p.color(Green, IconSuccess+" "+msg))
}

// Error prints an error message
func (p *Printer) Error(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(p.color(Red, IconError+" "+msg))
}

// Warning prints a warning message
func (p *Printer) Warning(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(p.color(Yellow, IconWarning+" "+msg))
}

// Info prints an info message
func (p *Printer) Info(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(p.color(Blue, IconInfo+" "+msg))
}

// Dimf prints dimmed text
func (p *Printer) Dimf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(p.color(Gray, msg))
}

// Title prints a title
func (p *Printer) Title(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println()
	fmt.Println(p.color(Bold+BrightCyan, msg))
	fmt.Println(p.color(Dim, strings.Repeat("─", len(msg))))
}

// StockTable prints the tracked stocks as an aligned table.
func (p *Printer) StockTable(stocks []model.TrackedStock) {
	if len(stocks) == 0 {
		p.Dimf("no stocks tracked yet")
		return
	}

	header := fmt.Sprintf("%-10s %12s %12s %6s", "SYMBOL", "PRICE", "CHANGE", "TICKS")
	fmt.Println(p.color(Bold, header))
	for _, s := range stocks {
		price := "—"
		change := ""
		if cur, ok := s.CurrentPrice(); ok {
			price = "$" + cur.StringFixed(2)
			if n := len(s.History); n >= 2 {
				delta := cur.Sub(s.History[n-2].Amount)
				switch delta.Sign() {
				case 1:
					change = p.color(Green, IconUp+" "+delta.StringFixed(2))
				case -1:
					change = p.color(Red, IconDown+" "+delta.Abs().StringFixed(2))
				default:
					change = p.color(Gray, "= 0.00")
				}
			}
		}
		fmt.Printf("%-10s %12s %12s %6d\n", s.Symbol, price, change, len(s.History))
	}
}
