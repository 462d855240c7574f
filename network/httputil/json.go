// Package httputil includes helpers to deal with plain HTTP JSON requests
// and responses.
package httputil

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("prefix", "httputil")

const jsonMediaType = "application/json"

// DefaultErrorJson is a JSON representation of a simple error value,
// containing only a message and an error code.
type DefaultErrorJson struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// WriteJson writes the response message in JSON format.
func WriteJson(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", jsonMediaType)
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Error("Could not write response message")
	}
}

// WriteError writes the error by manipulating headers and the body of the
// final response.
func WriteError(w http.ResponseWriter, errJson *DefaultErrorJson) {
	j, err := json.Marshal(errJson)
	if err != nil {
		log.WithError(err).Error("Could not marshal error message")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", jsonMediaType)
	w.WriteHeader(errJson.Code)
	if _, err := w.Write(j); err != nil {
		log.WithError(err).Error("Could not write error message")
	}
}
