package model

// Room represents a bookable room as stored in the `rooms` table.
// Rooms are never hard-deleted; an administrator deactivates a room by
// clearing IsActive, after which it can no longer receive bookings.
//
// Fields:
//
//	ID          – primary key identifier.
//	Name        – unique, non-empty display name (e.g. "Sala 101").
//	Description – optional free text.
//	Capacity    – number of people the room holds; always positive.
//	IsActive    – whether the room accepts new reservations.
type Room struct {
	ID          uint64  // rooms.id
	Name        string  // rooms.name
	Description *string // rooms.description (nullable)
	Capacity    uint32  // rooms.capacity
	IsActive    bool    // rooms.is_active
}

// RoomStatus is the instantaneous occupation state of a room.
type RoomStatus string

const (
	RoomOccupied RoomStatus = "Occupied"
	RoomFree     RoomStatus = "Free"
)

// RoomWithStatus pairs a room with its occupation state at a given instant.
type RoomWithStatus struct {
	Room
	Status RoomStatus
}
