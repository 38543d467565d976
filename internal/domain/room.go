package domain

type RoomID string

// RoomForGroup derives the fanout room for a group chat. The "group_"
// prefix is part of the wire contract with clients and must not change.
func RoomForGroup(id GroupID) RoomID {
	return RoomID("group_" + string(id))
}
