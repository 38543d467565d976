package core

import "encoding/json"

// Event is the wire envelope for everything crossing a live connection,
// in both directions. Event names are a contract with clients.
type Event struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Inbound event names.
const (
	EvJoinGroup    = "joinGroup"
	EvLeaveGroup   = "leaveGroup"
	EvCallUser     = "call-user"
	EvAnswerCall   = "answer-call"
	EvCallDeclined = "call-declined"
	EvCallEnded    = "call-ended"
	EvICECandidate = "ice-candidate"
)

// Outbound event names.
const (
	EvOnlineUsers     = "getOnlineUsers"
	EvIncomingCall    = "incoming-call"
	EvCallAnswered    = "call-answered"
	EvNewMessage      = "newMessage"
	EvNewGroupMessage = "newGroupMessage"
	EvGroupCreated    = "groupCreated"
	EvGroupUpdated    = "groupUpdated"
	EvGroupDeleted    = "groupDeleted"
)

// Encode marshals an event envelope into a Frame.
func Encode(event string, v any) (Frame, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(Event{Event: event, Data: data})
	if err != nil {
		return nil, err
	}
	return Frame(b), nil
}
