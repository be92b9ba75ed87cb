package shell

import (
	"fmt"
	"strconv"
	"strings"
)

// Command is one entry of the main menu.
type Command int

const (
	CmdAdd Command = iota + 1
	CmdDelete
	CmdList
	CmdSearch
	CmdUpdateQuantity
	CmdReport
	CmdLowStock
	CmdExit
)

var commandLabels = map[Command]string{
	CmdAdd:            "Add a product",
	CmdDelete:         "Delete a product",
	CmdList:           "Display all products",
	CmdSearch:         "Search for a product",
	CmdUpdateQuantity: "Update the quantity of a product",
	CmdReport:         "Generate a report",
	CmdLowStock:       "Show low stock products",
	CmdExit:           "Exit",
}

func (c Command) String() string {
	if label, ok := commandLabels[c]; ok {
		return label
	}
	return "Command(" + strconv.Itoa(int(c)) + ")"
}

// InvalidChoiceError reports menu input that does not name a Command.
type InvalidChoiceError struct {
	Input string
}

func (e *InvalidChoiceError) Error() string {
	return fmt.Sprintf("invalid choice %q", e.Input)
}

// ParseCommand maps a menu selection such as "3" to its Command.
func ParseCommand(input string) (Command, error) {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || n < int(CmdAdd) || n > int(CmdExit) {
		return 0, &InvalidChoiceError{Input: input}
	}
	return Command(n), nil
}
