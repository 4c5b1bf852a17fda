package websocket

// Server-initiated event names. These are wire-contract identifiers shared
// with the frontend; they must stay bit-exact.
const (
	SessionEvent           = "session"
	ChatRoomCreated        = "chatRoom-created"
	ReceiveMessage         = "receive-message"
	LeftChat               = "left-chat"
	ChatHistory            = "chat-history"
	ReceiveChatRoomSession = "receive-chatRoom-session"
	MissedMessages         = "missed-messages"
	InactiveChatRoom       = "inactive-chatRoom"
	ChatError              = "chat-error"
	Ack                    = "ack"
)
