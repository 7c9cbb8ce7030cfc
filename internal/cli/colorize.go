package cli

import "strings"

// colorizedCommand works around captured subprocess output losing its color:
// tools that would colorize a terminal see a pipe instead. Known commands get
// their force-color switch added.
func colorizedCommand(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return command
	}
	switch fields[0] {
	case "git":
		rest := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(command), "git"))
		return "git -c color.ui=always -c color.diff=always -c color.status=always " + rest
	case "pytest":
		return command + " --color=yes"
	}
	return command
}
