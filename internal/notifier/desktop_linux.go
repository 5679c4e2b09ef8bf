//go:build linux

package notifier

// desktopCommand builds a notify-send invocation. Sticky notifications never
// expire.
func desktopCommand(msg Message) (string, []string, bool) {
	args := make([]string, 0, 9)
	if msg.AppName != "" {
		args = append(args, "--app-name", msg.AppName)
	}
	if msg.Icon != "" {
		args = append(args, "--icon", msg.Icon)
	}
	if msg.Urgency != "" {
		args = append(args, "--urgency", msg.Urgency)
	}
	if msg.Sticky {
		args = append(args, "--expire-time=0")
	}
	args = append(args, msg.Title, msg.Body)
	return "notify-send", args, true
}
