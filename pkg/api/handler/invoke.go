package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/dskvich/artloop/pkg/api/response"
	"github.com/dskvich/artloop/pkg/commands"
)

type Invoker interface {
	Invoke(ctx context.Context, name string, args json.RawMessage) (string, error)
	Names() []string
}

type invoke struct {
	invoker Invoker
	writer  response.JSONResponseWriter
}

func NewInvoke(invoker Invoker) *invoke {
	return &invoke{
		invoker: invoker,
		writer:  response.JSONResponseWriter{},
	}
}

// Invoke runs the command named in the path with the request body as arguments.
func (h *invoke) Invoke(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["command"]

	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.writer.WriteErrorResponse(w, http.StatusBadRequest, "reading request body: "+err.Error())
		return
	}

	result, err := h.invoker.Invoke(r.Context(), name, json.RawMessage(body))
	if err != nil {
		h.writer.WriteErrorResponse(w, statusFor(err), err.Error())
		return
	}

	h.writer.WriteSuccessResponse(w, response.ResultResponse{Result: result})
}

func (h *invoke) List(w http.ResponseWriter, _ *http.Request) {
	h.writer.WriteSuccessResponse(w, map[string][]string{"commands": h.invoker.Names()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, commands.ErrUnknownCommand):
		return http.StatusNotFound
	case errors.Is(err, commands.ErrInvalidArguments):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled):
		return 499 // client closed request
	}
	return http.StatusInternalServerError
}
