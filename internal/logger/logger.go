package logger

import (
	"fmt"
	"time"
)

// ANSI color codes for console output.
const (
	reset  = "\033[0m"
	bold   = "\033[1m"
	dim    = "\033[2m"
	red    = "\033[31m"
	green  = "\033[32m"
	yellow = "\033[33m"
	blue   = "\033[34m"
	cyan   = "\033[36m"
)

func timestamp() string {
	return time.Now().Format("15:04:05")
}

func line(color, symbol, tag, msg string) {
	fmt.Printf("%s%s%s %s[%s]%s %s%s%s\n",
		dim, timestamp(), reset,
		color, tag, reset,
		color, symbol+" "+msg, reset)
}

// Info prints an informational message with a tag.
func Info(tag, msg string) {
	line(blue, "•", tag, msg)
}

// Success prints a success message with a tag.
func Success(tag, msg string) {
	line(green, "✓", tag, msg)
}

// Warn prints a warning message with a tag.
func Warn(tag, msg string) {
	line(yellow, "!", tag, msg)
}

// Error prints an error message with a tag.
func Error(tag, msg string) {
	line(red, "✗", tag, msg)
}

// Section prints a section divider.
func Section(title string) {
	fmt.Printf("\n%s%s── %s %s%s\n", bold, cyan, title, "──────────────────────", reset)
}

// Stats prints a label/value pair, indented under the current section.
func Stats(label string, value interface{}) {
	fmt.Printf("    %s%-18s%s %v\n", dim, label, reset, value)
}

// Banner prints the startup banner with the build version.
func Banner(version string) {
	if version == "" {
		version = "dev"
	}
	fmt.Printf("%s%s", bold, cyan)
	fmt.Println(`   ___ _  _   _   ___     _   ___ ___ ___    _   ___ ___ ___ ___`)
	fmt.Println(`  / __| || | /_\ | _ \___/_\ | _ \ _ \ _ \  /_\ |_ _/ __| __| _ \`)
	fmt.Println(` | (__| __ |/ _ \|   /___/ _ \|  _/  _/   \/ _ \ | |\__ \ _||   /`)
	fmt.Println(`  \___|_||_/_/ \_\_|_\  /_/ \_\_| |_| |_|_\/_/ \_\___|___/___|_|_\`)
	fmt.Printf("%s  character auction appraiser %s%s%s\n\n", reset, dim, version, reset)
}

// Server prints the listen address once the HTTP server is up.
func Server(addr string) {
	fmt.Printf("%s%s▶ Listening on http://%s%s\n", bold, green, addr, reset)
}
