//go:build darwin

package notifier

import (
	"fmt"
	"strings"
)

// desktopCommand builds an osascript invocation. Icon, urgency and
// stickiness are not expressible through "display notification".
func desktopCommand(msg Message) (string, []string, bool) {
	script := fmt.Sprintf(`display notification "%s" with title "%s"`,
		escapeAppleScript(msg.Body), escapeAppleScript(msg.Title))
	if msg.AppName != "" {
		script += fmt.Sprintf(` subtitle "%s"`, escapeAppleScript(msg.AppName))
	}
	return "osascript", []string{"-e", script}, true
}

func escapeAppleScript(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return s
}
