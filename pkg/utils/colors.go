package utils

import (
	"fmt"

	"github.com/fatih/color"
)

var (
	Red    = color.New(color.FgRed).SprintFunc()
	Green  = color.New(color.FgGreen).SprintFunc()
	Yellow = color.New(color.FgYellow).SprintFunc()
	Cyan   = color.New(color.FgCyan).SprintFunc()

	BoldRed    = color.New(color.FgRed, color.Bold).SprintFunc()
	BoldGreen  = color.New(color.FgGreen, color.Bold).SprintFunc()
	BoldYellow = color.New(color.FgYellow, color.Bold).SprintFunc()
	BoldBlue   = color.New(color.FgBlue, color.Bold).SprintFunc()
	BoldCyan   = color.New(color.FgCyan, color.Bold).SprintFunc()
	BoldWhite  = color.New(color.FgWhite, color.Bold).SprintFunc()
)

func DisableColor() {
	color.NoColor = true
}

func PrintSuccess(format string, args ...interface{}) {
	fmt.Printf("%s %s\n", BoldGreen("✓"), fmt.Sprintf(format, args...))
}

func PrintError(format string, args ...interface{}) {
	fmt.Printf("%s %s\n", BoldRed("✗"), fmt.Sprintf(format, args...))
}

func PrintWarning(format string, args ...interface{}) {
	fmt.Printf("%s %s\n", BoldYellow("⚠"), fmt.Sprintf(format, args...))
}

func PrintInfo(format string, args ...interface{}) {
	fmt.Printf("%s %s\n", BoldBlue("ℹ"), fmt.Sprintf(format, args...))
}

func PrintSection(title string) {
	fmt.Println()
	fmt.Println(BoldCyan("━━━ " + title + " ━━━"))
}

func PrintKeyValue(key, value string) {
	fmt.Printf("  %s: %s\n", BoldWhite(key), value)
}

// PrintAccountRow 打印账号列表中的一行
func PrintAccountRow(username, detail, status string) {
	statusColor := Green
	switch status {
	case "expired":
		statusColor = Red
	case "unknown":
		statusColor = Yellow
	}

	fmt.Printf("  %s %s %s %s\n",
		BoldCyan("•"),
		BoldWhite(username),
		Yellow(detail),
		statusColor(status))
}
