// Package callback defines the typed command vocabulary carried in inline
// button callback data. Wire format is "name:arg".
package callback

import (
	"fmt"
	"strconv"
	"strings"
)

// Command identifies one callback action.
type Command int

const (
	Unknown Command = iota
	Unban
)

var commandNames = map[Command]string{
	Unban: "antispam_unban",
}

var commandsByName = func() map[string]Command {
	m := make(map[string]Command, len(commandNames))
	for cmd, name := range commandNames {
		m[name] = cmd
	}
	return m
}()

// Format renders the wire form of a command with its numeric argument.
func Format(cmd Command, arg int64) string {
	return fmt.Sprintf("%s:%d", commandNames[cmd], arg)
}

// Parse decodes callback data into a command and its argument. Data that
// does not belong to this vocabulary yields Unknown with no error, so the
// caller can ignore foreign callbacks quietly.
func Parse(data string) (Command, int64, error) {
	parts := strings.SplitN(data, ":", 2)
	if len(parts) != 2 {
		return Unknown, 0, nil
	}

	cmd, ok := commandsByName[parts[0]]
	if !ok {
		return Unknown, 0, nil
	}

	arg, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return Unknown, 0, fmt.Errorf("invalid callback argument %q: %w", parts[1], err)
	}
	return cmd, arg, nil
}
