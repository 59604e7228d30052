package ws

// Inbound actions, as emitted by viewing clients.
const (
	ActionStartParty  = "startWatchParty"
	ActionJoinParty   = "joinWatchParty"
	ActionSendMessage = "sendMessage"
	ActionLeaveParty  = "leaveWatchParty"
)

// Outbound events consumed by clients.
const (
	EventReceiveMessage      = "receiveMessage"
	EventUpdateParticipants  = "updateParticipants"
	EventInitialChatMessages = "initialChatMessages"
)
