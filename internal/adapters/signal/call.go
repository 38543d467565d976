package signal

import (
	"encoding/json"

	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/okutsen/chatline/internal/app"
	"github.com/okutsen/chatline/internal/domain"
)

func (ctl *WSController) handleCallUser(live *app.Conn, data []byte) {
	var p struct {
		To     domain.UserID              `json:"to"`
		Offer  *webrtc.SessionDescription `json:"offer,omitempty"`
		Caller json.RawMessage            `json:"caller,omitempty"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.To == "" {
		log.Error().Err(err).Str("module", "signal").Msg("bad call-user payload")
		return
	}
	ctl.Hub.Calls.Start(live.User, p.To, p.Offer, p.Caller)
}

type callTarget struct {
	To domain.UserID `json:"to"`
}

func (ctl *WSController) handleAnswerCall(live *app.Conn, data []byte) {
	var p callTarget
	if err := json.Unmarshal(data, &p); err != nil || p.To == "" {
		log.Error().Err(err).Str("module", "signal").Msg("bad answer-call payload")
		return
	}
	ctl.Hub.Calls.Answer(live.User, p.To)
}

func (ctl *WSController) handleCallDeclined(live *app.Conn, data []byte) {
	var p callTarget
	if err := json.Unmarshal(data, &p); err != nil || p.To == "" {
		log.Error().Err(err).Str("module", "signal").Msg("bad call-declined payload")
		return
	}
	ctl.Hub.Calls.Decline(live.User, p.To)
}

func (ctl *WSController) handleCallEnded(live *app.Conn, data []byte) {
	var p callTarget
	if err := json.Unmarshal(data, &p); err != nil || p.To == "" {
		log.Error().Err(err).Str("module", "signal").Msg("bad call-ended payload")
		return
	}
	ctl.Hub.Calls.End(live.User, p.To)
}

func (ctl *WSController) handleCandidate(live *app.Conn, data []byte) {
	var p struct {
		To        domain.UserID           `json:"to"`
		Candidate webrtc.ICECandidateInit `json:"candidate"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.To == "" {
		log.Error().Err(err).Str("module", "signal").Msg("bad ice-candidate payload")
		return
	}
	ctl.Hub.Calls.Candidate(live.User, p.To, p.Candidate)
}
