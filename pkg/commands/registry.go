// Package commands exposes the backend operations under stable names, each
// taking its arguments as a JSON object with camelCase keys.
package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/samber/lo"

	"github.com/dskvich/artloop/pkg/logger"
)

var (
	ErrUnknownCommand   = errors.New("unknown command")
	ErrInvalidArguments = errors.New("invalid arguments")
)

// Handler runs one command. args is the raw JSON argument object.
type Handler func(ctx context.Context, args json.RawMessage) (string, error)

type Registry struct {
	handlers map[string]Handler
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register adds a handler; registering a name twice is a programming error.
func (r *Registry) Register(name string, h Handler) {
	if _, ok := r.handlers[name]; ok {
		panic(fmt.Sprintf("commands: %q registered twice", name))
	}
	r.handlers[name] = h
}

func (r *Registry) Names() []string {
	names := lo.Keys(r.handlers)
	sort.Strings(names)
	return names
}

// Invoke runs the named command. Errors keep their chain so transports can
// map them; callers that only need text use err.Error().
func (r *Registry) Invoke(ctx context.Context, name string, args json.RawMessage) (string, error) {
	h, ok := r.handlers[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}

	slog.InfoContext(ctx, "Invoking command", "command", name)

	result, err := h(ctx, args)
	if err != nil {
		slog.WarnContext(ctx, "Command failed", "command", name, logger.Err(err))
		return "", err
	}
	return result, nil
}

// decode reads args into v. Missing or null args decode as an empty object.
func decode(args json.RawMessage, v any) error {
	if len(args) == 0 || string(args) == "null" {
		args = json.RawMessage("{}")
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}
	return nil
}
