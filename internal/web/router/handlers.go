package router

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/conduit-lang/contractabi/internal/web/auth"
	"github.com/conduit-lang/contractabi/internal/web/response"
	"github.com/conduit-lang/contractabi/pkg/abi"
	"github.com/conduit-lang/contractabi/runtime/metadata"
)

type handlers struct {
	api *metadata.RegistryAPI
}

type healthResponse struct {
	Status   string `json:"status"`
	Contract string `json:"contract,omitempty"`
}

func (h *handlers) health(w http.ResponseWriter, _ *http.Request) {
	c, err := h.api.Contract()
	if err != nil {
		response.JSON(w, http.StatusServiceUnavailable, healthResponse{Status: "empty"})
		return
	}
	response.JSON(w, http.StatusOK, healthResponse{Status: "ok", Contract: c.Name})
}

func (h *handlers) contract(w http.ResponseWriter, _ *http.Request) {
	c, err := h.api.Contract()
	if err != nil {
		response.RegistryError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, c)
}

func (h *handlers) constructors(w http.ResponseWriter, _ *http.Request) {
	if !h.api.Registry().Loaded() {
		response.RegistryError(w, metadata.ErrNotLoaded)
		return
	}
	response.JSON(w, http.StatusOK, h.api.Registry().Constructors())
}

// messages supports ?mutates=true|false, ?name=pattern and ?type=name
func (h *handlers) messages(w http.ResponseWriter, r *http.Request) {
	if !h.api.Registry().Loaded() {
		response.RegistryError(w, metadata.ErrNotLoaded)
		return
	}

	q := r.URL.Query()
	filter := metadata.MessageFilter{
		Name: q.Get("name"),
		Type: q.Get("type"),
	}
	if raw := q.Get("mutates"); raw != "" {
		mutates, err := strconv.ParseBool(raw)
		if err != nil {
			response.Error(w, http.StatusBadRequest, "mutates must be true or false")
			return
		}
		filter.Mutates = &mutates
	}

	msgs := h.api.Messages(filter)
	if msgs == nil {
		msgs = []metadata.MessageInfo{}
	}
	response.JSON(w, http.StatusOK, msgs)
}

func (h *handlers) message(w http.ResponseWriter, r *http.Request) {
	msg, err := h.api.Message(chi.URLParam(r, "name"))
	if err != nil {
		response.RegistryError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, msg)
}

func (h *handlers) selector(w http.ResponseWriter, r *http.Request) {
	sel, err := abi.ParseSelector(chi.URLParam(r, "selector"))
	if err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	entry, err := h.api.Registry().BySelector(sel)
	if err != nil {
		response.RegistryError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, entry)
}

func (h *handlers) events(w http.ResponseWriter, r *http.Request) {
	if !h.api.Registry().Loaded() {
		response.RegistryError(w, metadata.ErrNotLoaded)
		return
	}
	events := h.api.Events(r.URL.Query().Get("name"))
	if events == nil {
		events = []metadata.EventInfo{}
	}
	response.JSON(w, http.StatusOK, events)
}

func (h *handlers) event(w http.ResponseWriter, r *http.Request) {
	ev, err := h.api.Registry().Event(chi.URLParam(r, "name"))
	if err != nil {
		response.RegistryError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, ev)
}

// dependencies serves ?type=name&reverse=true&depth=n
func (h *handlers) dependencies(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	typeName := q.Get("type")
	if typeName == "" {
		response.Error(w, http.StatusBadRequest, "type is required")
		return
	}

	var opts metadata.DependencyOptions
	if raw := q.Get("reverse"); raw != "" {
		reverse, err := strconv.ParseBool(raw)
		if err != nil {
			response.Error(w, http.StatusBadRequest, "reverse must be true or false")
			return
		}
		opts.Reverse = reverse
	}
	if raw := q.Get("depth"); raw != "" {
		depth, err := strconv.Atoi(raw)
		if err != nil || depth < 0 {
			response.Error(w, http.StatusBadRequest, "depth must be a non-negative integer")
			return
		}
		opts.Depth = depth
	}

	graph, err := h.api.Dependencies(typeName, opts)
	if err != nil {
		response.RegistryError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, graph)
}

func (h *handlers) strings(w http.ResponseWriter, _ *http.Request) {
	if !h.api.Registry().Loaded() {
		response.RegistryError(w, metadata.ErrNotLoaded)
		return
	}
	response.JSON(w, http.StatusOK, h.api.Registry().Strings())
}

func (h *handlers) types(w http.ResponseWriter, _ *http.Request) {
	if !h.api.Registry().Loaded() {
		response.RegistryError(w, metadata.ErrNotLoaded)
		return
	}
	response.JSON(w, http.StatusOK, h.api.Registry().Types())
}

// reload runs the reloader. A failed reload keeps the current manifest
// and answers 422.
func reload(fn Reloader, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subject := ""
		if claims, ok := auth.ClaimsFromContext(r.Context()); ok {
			subject = claims.Subject
		}

		result, err := fn(r.Context())
		if err != nil {
			log.Warn("admin reload failed", zap.String("subject", subject), zap.Error(err))
			response.Error(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		log.Info("admin reload",
			zap.String("subject", subject),
			zap.String("fingerprint", result.Fingerprint),
			zap.Bool("changed", result.Changed),
		)
		response.JSON(w, http.StatusOK, result)
	}
}
