package spoolverb

import (
	"slices"
	"strings"
)

// Action is the kind of custody event a verb announces.
type Action string

const (
	ActionRegister              Action = "REGISTER"
	ActionConsign               Action = "CONSIGN"
	ActionTransfer              Action = "TRANSFER"
	ActionLoan                  Action = "LOAN"
	ActionUnconsign             Action = "UNCONSIGN"
	ActionFuel                  Action = "FUEL"
	ActionEditions              Action = "EDITIONS"
	ActionPiece                 Action = "PIECE"
	ActionMigrate               Action = "MIGRATE"
	ActionConsignedRegistration Action = "CONSIGNEDREGISTRATION"
)

// Actions lists every action of the protocol, in protocol order.
var Actions = []Action{
	ActionRegister,
	ActionConsign,
	ActionTransfer,
	ActionLoan,
	ActionUnconsign,
	ActionFuel,
	ActionEditions,
	ActionPiece,
	ActionMigrate,
	ActionConsignedRegistration,
}

func (a Action) String() string {
	return string(a)
}

// IsValid returns true if a is one of the protocol actions.
func (a Action) IsValid() bool {
	return slices.Contains(Actions, a)
}

// HasEdition returns true if verbs of this action carry an edition number in their first argument.
func (a Action) HasEdition() bool {
	switch a {
	case ActionFuel, ActionPiece, ActionConsignedRegistration, ActionEditions:
		return false
	}
	return true
}

// ParseAction parses a case-insensitive action name.
func ParseAction(s string) (Action, bool) {
	action := Action(strings.ToUpper(strings.TrimSpace(s)))
	return action, action.IsValid()
}
