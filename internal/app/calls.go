package app

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/okutsen/chatline/internal/core"
	"github.com/okutsen/chatline/internal/domain"
)

type CallState int

const (
	CallRinging CallState = iota + 1
	CallActive
	CallEnded
	CallDeclined
	CallTimedOut
	CallFailed
)

func (s CallState) String() string {
	switch s {
	case CallRinging:
		return "ringing"
	case CallActive:
		return "active"
	case CallEnded:
		return "ended"
	case CallDeclined:
		return "declined"
	case CallTimedOut:
		return "timed_out"
	case CallFailed:
		return "failed"
	}
	return "idle"
}

// CallSession tracks one call attempt between two identities. It holds
// user ids, not connections, so connection churn mid-call does not kill
// the session; delivery just fails silently if a party went offline.
type CallSession struct {
	ID        string
	Caller    domain.UserID
	Callee    domain.UserID
	State     CallState
	CreatedAt time.Time

	timer *time.Timer
}

// Calls owns the live call-session table, keyed by caller identity:
// a caller has at most one outgoing call at a time. Every transition is
// serialized under one mutex, including late timer fires.
type Calls struct {
	mu       sync.Mutex
	sessions map[domain.UserID]*CallSession

	dispatch *Dispatcher
	timeout  time.Duration
}

func NewCalls(dispatch *Dispatcher, timeout time.Duration) *Calls {
	return &Calls{
		sessions: make(map[domain.UserID]*CallSession),
		dispatch: dispatch,
		timeout:  timeout,
	}
}

type callPeer struct {
	From domain.UserID `json:"from"`
}

type incomingCall struct {
	From   domain.UserID              `json:"from"`
	Offer  *webrtc.SessionDescription `json:"offer,omitempty"`
	Caller json.RawMessage            `json:"caller,omitempty"`
}

type iceCandidate struct {
	From      domain.UserID           `json:"from"`
	Candidate webrtc.ICECandidateInit `json:"candidate"`
}

// Start creates a session and rings the callee. The callee being
// reachable is advisory only: if they are offline the notification is
// dropped and the timer will end the attempt. A caller with a pending
// call cannot start another; the new attempt is rejected and the
// pending session stays intact.
func (c *Calls) Start(caller, callee domain.UserID, offer *webrtc.SessionDescription, callerInfo json.RawMessage) {
	c.mu.Lock()
	if _, busy := c.sessions[caller]; busy {
		c.mu.Unlock()
		log.Warn().Str("module", "app.calls").Str("caller", string(caller)).
			Msg("call attempt while one is pending, rejected")
		return
	}
	sess := &CallSession{
		ID:        uuid.NewString(),
		Caller:    caller,
		Callee:    callee,
		State:     CallRinging,
		CreatedAt: time.Now(),
	}
	sessID := sess.ID
	sess.timer = time.AfterFunc(c.timeout, func() { c.onTimeout(caller, sessID) })
	c.sessions[caller] = sess
	c.mu.Unlock()

	log.Info().Str("module", "app.calls").Str("caller", string(caller)).
		Str("callee", string(callee)).Msg("call started")
	c.dispatch.SendToUser(callee, core.EvIncomingCall, incomingCall{
		From:   caller,
		Offer:  offer,
		Caller: callerInfo,
	})
}

// Answer moves the session to active and tells the caller.
func (c *Calls) Answer(callee, caller domain.UserID) {
	c.mu.Lock()
	sess, ok := c.sessions[caller]
	if !ok || sess.Callee != callee || sess.State != CallRinging {
		c.mu.Unlock()
		log.Debug().Str("module", "app.calls").Str("caller", string(caller)).
			Str("callee", string(callee)).Msg("answer for unknown session, no-op")
		return
	}
	sess.State = CallActive
	sess.timer.Stop()
	c.mu.Unlock()

	log.Info().Str("module", "app.calls").Str("caller", string(caller)).
		Str("callee", string(callee)).Msg("call answered")
	c.dispatch.SendToUser(caller, core.EvCallAnswered, callPeer{From: callee})
}

// Decline destroys the session and tells the caller. Declining a call
// that no longer exists is a safe no-op.
func (c *Calls) Decline(callee, caller domain.UserID) {
	c.mu.Lock()
	sess, ok := c.sessions[caller]
	if !ok || sess.Callee != callee {
		c.mu.Unlock()
		return
	}
	c.removeLocked(sess, CallDeclined)
	c.mu.Unlock()

	c.dispatch.SendToUser(caller, core.EvCallDeclined, callPeer{From: callee})
}

// End terminates the session between from and to, whichever side keys
// it, and tells the other party. Ending a dead session is a no-op.
func (c *Calls) End(from, to domain.UserID) {
	c.mu.Lock()
	sess := c.between(from, to)
	if sess == nil {
		c.mu.Unlock()
		return
	}
	c.removeLocked(sess, CallEnded)
	c.mu.Unlock()

	c.dispatch.SendToUser(to, core.EvCallEnded, callPeer{From: from})
}

// Candidate relays an ICE candidate between the two parties of a live
// session. No state transition; no session, no relay.
func (c *Calls) Candidate(from, to domain.UserID, cand webrtc.ICECandidateInit) {
	c.mu.Lock()
	sess := c.between(from, to)
	c.mu.Unlock()
	if sess == nil {
		log.Debug().Str("module", "app.calls").Str("from", string(from)).
			Str("to", string(to)).Msg("candidate without session, dropped")
		return
	}
	c.dispatch.SendToUser(to, core.EvICECandidate, iceCandidate{From: from, Candidate: cand})
}

// DropUser ends every session the user is party to, as if the user had
// sent call-ended. Invoked on disconnect.
func (c *Calls) DropUser(user domain.UserID) {
	c.mu.Lock()
	var peers []domain.UserID
	for _, sess := range c.sessions {
		if sess.Caller == user {
			peers = append(peers, sess.Callee)
			c.removeLocked(sess, CallEnded)
		} else if sess.Callee == user {
			peers = append(peers, sess.Caller)
			c.removeLocked(sess, CallEnded)
		}
	}
	c.mu.Unlock()

	for _, peer := range peers {
		c.dispatch.SendToUser(peer, core.EvCallEnded, callPeer{From: user})
	}
}

// Session reports the live session the user is party to, if any.
func (c *Calls) Session(user domain.UserID) (*CallSession, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, sess := range c.sessions {
		if sess.Caller == user || sess.Callee == user {
			return sess, true
		}
	}
	return nil, false
}

// onTimeout fires when the callee never confirmed. The session id guard
// makes a timer that outlived its session a no-op.
func (c *Calls) onTimeout(caller domain.UserID, sessID string) {
	c.mu.Lock()
	sess, ok := c.sessions[caller]
	if !ok || sess.ID != sessID || sess.State == CallActive {
		c.mu.Unlock()
		return
	}
	callee := sess.Callee
	c.removeLocked(sess, CallTimedOut)
	c.mu.Unlock()

	// Only the initiating side hears about the timeout; the callee
	// never confirmed receipt, so there is no peer to tell.
	c.dispatch.SendToUser(caller, core.EvCallEnded, callPeer{From: callee})
}

// between finds the session both users are party to. Callers hold c.mu.
func (c *Calls) between(a, b domain.UserID) *CallSession {
	if sess, ok := c.sessions[a]; ok && sess.Callee == b {
		return sess
	}
	if sess, ok := c.sessions[b]; ok && sess.Callee == a {
		return sess
	}
	return nil
}

// removeLocked transitions a session to a terminal state and drops it
// from the table. Callers hold c.mu.
func (c *Calls) removeLocked(sess *CallSession, terminal CallState) {
	sess.timer.Stop()
	sess.State = terminal
	delete(c.sessions, sess.Caller)
	log.Info().Str("module", "app.calls").Str("caller", string(sess.Caller)).
		Str("callee", string(sess.Callee)).Str("state", terminal.String()).
		Msg("call session closed")
}
