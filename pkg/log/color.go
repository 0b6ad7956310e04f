package log

import (
	"os"
	"runtime"
	"strings"

	"github.com/gookit/color"
)

var (
	EnableColor = true
)

type Color struct {
	Info      func(a ...any) string
	Success   func(a ...any) string
	Redirect  func(a ...any) string
	ClientErr func(a ...any) string
	ServerErr func(a ...any) string
	Failure   func(a ...any) string
	Port      func(a ...any) string
	Time      func(a ...any) string
	Title     func(a ...any) string
	Banner    func(a ...any) string
	Bold      func(a ...any) string
}

var LogColor *Color

func init() {
	detectTerminal()

	if LogColor == nil {
		LogColor = NewColor()
	}
}

func detectTerminal() {
	if runtime.GOOS == "windows" {
		_, wt := os.LookupEnv("WT_SESSION")
		_, ansi := os.LookupEnv("ANSICON")
		EnableColor = wt || ansi
	} else {
		fi, err := os.Stdout.Stat()
		EnableColor = err == nil && (fi.Mode()&os.ModeCharDevice) != 0
	}
	if !EnableColor {
		color.Disable()
	}
}

func NewColor() *Color {
	return &Color{
		Info:      color.HiCyan.Render,
		Success:   color.FgLightGreen.Render,
		Redirect:  color.FgCyan.Render,
		ClientErr: color.FgYellow.Render,
		ServerErr: color.FgLightRed.Render,
		Failure:   color.Gray.Render,
		Port:      color.Bold.Render,
		Time:      color.Gray.Render,
		Title:     color.FgLightBlue.Render,
		Banner:    color.FgLightGreen.Render,
		Bold:      color.Bold.Render,
	}
}

// Status colours an HTTP status code by its class.
func (c *Color) Status(code string) string {
	switch {
	case strings.HasPrefix(code, "2"):
		return c.Success(code)
	case strings.HasPrefix(code, "3"):
		return c.Redirect(code)
	case strings.HasPrefix(code, "4"):
		return c.ClientErr(code)
	case strings.HasPrefix(code, "5"):
		return c.ServerErr(code)
	default:
		return c.Failure(code)
	}
}
