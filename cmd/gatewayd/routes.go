package main

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/pennyfund/donate-gateway/internal/account"
	"github.com/pennyfund/donate-gateway/internal/donate"
	"github.com/pennyfund/donate-gateway/internal/gateway"
	"github.com/pennyfund/donate-gateway/internal/session"
)

type donationBody struct {
	Recipient string `json:"recipient"`
	Amount    string `json:"amount"`
}

type donationReply struct {
	State  string `json:"state"`
	TxHash string `json:"txHash,omitempty"`
	Fee    string `json:"fee,omitempty"`
	Total  string `json:"total,omitempty"`
	Reason string `json:"reason,omitempty"`
}

type accountReply struct {
	Connected    bool   `json:"connected"`
	Address      string `json:"address,omitempty"`
	TokenBalance string `json:"tokenBalance,omitempty"`
}

func mountRoutes(r chi.Router, co *gateway.Coordinator) {
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/session/login", func(w http.ResponseWriter, req *http.Request) {
		acct, err := co.Login(req.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, accountReply{Connected: true, Address: acct.Address, TokenBalance: acct.TokenBalance})
	})

	r.Post("/session/logout", func(w http.ResponseWriter, req *http.Request) {
		if err := co.Logout(req.Context()); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, accountReply{Connected: false})
	})

	r.Get("/account", func(w http.ResponseWriter, req *http.Request) {
		if !co.Connected() {
			writeError(w, session.ErrNoActiveSession)
			return
		}
		acct := co.Account()
		writeJSON(w, http.StatusOK, accountReply{Connected: true, Address: acct.Address, TokenBalance: acct.TokenBalance})
	})

	r.Post("/account/refresh", func(w http.ResponseWriter, req *http.Request) {
		if err := co.Refresh(req.Context()); err != nil {
			writeError(w, err)
			return
		}
		acct := co.Account()
		writeJSON(w, http.StatusOK, accountReply{Connected: true, Address: acct.Address, TokenBalance: acct.TokenBalance})
	})

	r.Post("/donations", func(w http.ResponseWriter, req *http.Request) {
		var body donationBody
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, donationReply{State: "rejected", Reason: "malformed JSON body"})
			return
		}
		principal, err := decimal.NewFromString(body.Amount)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, donationReply{State: "rejected", Reason: "amount is not a decimal number"})
			return
		}
		res, err := co.Donate(req.Context(), donate.DonationRequest{Recipient: body.Recipient, Principal: principal})
		if err != nil {
			if res != nil {
				// submitted but failed or reverted: report the terminal state
				writeJSON(w, statusFor(err), donationReply{State: res.State.String(), TxHash: res.TxHash.Hex(), Reason: res.Reason})
				return
			}
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, donationReply{
			State:  res.State.String(),
			TxHash: res.TxHash.Hex(),
			Fee:    res.Fee.StringFixed(6),
			Total:  res.Total.StringFixed(6),
		})
	})
}

func statusFor(err error) int {
	var vErr *donate.ValidationError
	var aErr *session.AuthenticationError
	var iErr *session.InitializationError
	var bErr *account.BalanceQueryError
	var sErr *donate.SubmissionError
	var cErr *donate.ConfirmationError
	switch {
	case errors.As(err, &vErr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, gateway.ErrTransferInFlight):
		return http.StatusConflict
	case errors.Is(err, session.ErrNoActiveSession), errors.As(err, &aErr):
		return http.StatusUnauthorized
	case errors.As(err, &iErr):
		return http.StatusServiceUnavailable
	case errors.As(err, &bErr), errors.As(err, &sErr), errors.As(err, &cErr):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
