//go:build !linux && !darwin

package notifier

func desktopCommand(Message) (string, []string, bool) {
	return "", nil, false
}
