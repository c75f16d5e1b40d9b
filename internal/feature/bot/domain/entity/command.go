// Package entity defines the dialogue core's domain records: the normalized
// inbound message and the command it classifies into.
package entity

// ConversationKind is where an inbound message arrived. Values mirror the
// platform's source types.
type ConversationKind string

const (
	ConversationDirect ConversationKind = "user"
	ConversationGroup  ConversationKind = "group"
	ConversationRoom   ConversationKind = "room"
)

// InboundMessage is one normalized webhook text event. Immutable once built;
// lifecycle is a single request.
type InboundMessage struct {
	Text        string
	ReplyToken  string
	UserID      string
	ChatID      string // group or room identifier; equals UserID in direct chats
	Kind        ConversationKind
	MentionsBot bool // platform-reported explicit mention of the bot
}

// CommandKind tags the classified command variant.
type CommandKind string

const (
	CmdGreeting      CommandKind = "greeting"
	CmdIdentity      CommandKind = "identity"
	CmdHelpMenu      CommandKind = "help_menu"
	CmdCurrencyMenu  CommandKind = "currency_menu"
	CmdFxQuote       CommandKind = "fx_quote"
	CmdFxRateList    CommandKind = "fx_rate_list"
	CmdFxChart       CommandKind = "fx_chart"
	CmdEquityChart   CommandKind = "equity_chart"
	CmdForeignQuote  CommandKind = "equity_quote_foreign"
	CmdDomesticQuote CommandKind = "equity_quote_domestic"
	CmdAIAnalysis    CommandKind = "ai_analysis"
	CmdUnrecognized  CommandKind = "unrecognized"
)

// Command is the classified form of one InboundMessage. Exactly one command
// is derived per message; arguments not used by the variant stay empty.
type Command struct {
	Kind   CommandKind
	Symbol string // currency code or stock symbol
	Period string // fx chart period: 1D / 5D / 1M / 1Y
	Chart  string // equity chart style: intraday / daily / weekly / monthly / volume
}
