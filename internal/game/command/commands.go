// Package command provides the chat command parser, registry, and
// built-in command definitions.
package command

// Categories for organizing commands in help output.
const (
	CategoryMovement      = "movement"
	CategoryCommunication = "communication"
	CategorySystem        = "system"
)

// Handler identifiers mapping commands to gameserver handlers.
const (
	HandlerMove = "move"
	HandlerSay  = "say"
	HandlerYell = "yell"
	HandlerHelp = "help"
)

// Command defines a player-invocable command.
type Command struct {
	// Name is the canonical command name.
	Name string
	// Aliases are alternate names for this command.
	Aliases []string
	// Help is the short usage text shown by the help command.
	Help string
	// Category groups the command (movement, communication, system).
	Category string
	// Handler selects the gameserver handler.
	Handler string
	// MinArgs is the minimum number of argument tokens required; input
	// with fewer arguments is dropped.
	MinArgs int
}

// BuiltinCommands returns all built-in commands.
func BuiltinCommands() []Command {
	return []Command{
		// Movement
		{Name: "north", Aliases: []string{"n"}, Help: "Move north", Category: CategoryMovement, Handler: HandlerMove},
		{Name: "south", Aliases: []string{"s"}, Help: "Move south", Category: CategoryMovement, Handler: HandlerMove},
		{Name: "east", Aliases: []string{"e"}, Help: "Move east", Category: CategoryMovement, Handler: HandlerMove},
		{Name: "west", Aliases: []string{"w"}, Help: "Move west", Category: CategoryMovement, Handler: HandlerMove},
		{Name: "up", Aliases: []string{"u"}, Help: "Move up", Category: CategoryMovement, Handler: HandlerMove},
		{Name: "down", Aliases: []string{"d"}, Help: "Move down", Category: CategoryMovement, Handler: HandlerMove},

		// Communication
		{Name: "say", Aliases: nil, Help: "Send a message to all players in the current room", Category: CategoryCommunication, Handler: HandlerSay, MinArgs: 1},
		{Name: "yell", Aliases: nil, Help: "Send a message to all players currently connected", Category: CategoryCommunication, Handler: HandlerYell, MinArgs: 1},

		// System
		{Name: "help", Aliases: []string{"?"}, Help: "List commands and usages", Category: CategorySystem, Handler: HandlerHelp},
	}
}
