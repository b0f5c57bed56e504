// Package common holds helpers shared by the feature handlers.
package common

import (
	"errors"
	"net/http"

	"github.com/aireap/aireap-auth/internal/auth"
	"github.com/aireap/aireap-auth/internal/domain"
	"github.com/aireap/aireap-auth/internal/httputil"
)

// Respond renders a flow outcome into the JSON envelope. Flow errors carry
// their own type, title and field; anything else is a server fault.
func Respond(w http.ResponseWriter, res *auth.Result, err error) {
	if err != nil {
		var flowErr *domain.FlowError
		if errors.As(err, &flowErr) {
			httputil.FlowError(w, flowErr)
			return
		}
		httputil.Error(w, http.StatusInternalServerError, "Something went wrong. Please try again later!")
		return
	}
	httputil.Success(w, httputil.Envelope{
		Title:    res.Title,
		Msg:      res.Msg,
		Redirect: res.Redirect,
		Email:    res.Email,
	})
}
