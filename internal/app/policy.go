package app

type BackpressureAction int

const (
	DropFrame BackpressureAction = iota
	KickConn
)

// Policy decides what to do with a connection whose send buffer is full.
type Policy interface {
	OnBackpressure(conn *Conn) BackpressureAction
}

// DropPolicy sheds the frame and keeps the connection; fanout is
// best-effort so a lost frame is acceptable, a lost connection is not.
type DropPolicy struct{}

func (DropPolicy) OnBackpressure(*Conn) BackpressureAction { return DropFrame }

// KickPolicy closes a slow consumer; its disconnect path cleans up
// presence and rooms like any other close.
type KickPolicy struct{}

func (KickPolicy) OnBackpressure(*Conn) BackpressureAction { return KickConn }
