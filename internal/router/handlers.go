package router

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"runtime/debug"

	"github.com/go-chi/chi/v5"

	"github.com/patric-chuzhbe/usuaris/internal/logger"
	"github.com/patric-chuzhbe/usuaris/internal/models"
	"github.com/patric-chuzhbe/usuaris/internal/service"
)

const (
	rootPage          = "<h1>APLICACIÓ PER LA GESTIÓ D'USUARIS</h1>"
	msgNoUsersMatched = "Cap usuari trobat"
	msgUserNotFound   = "Usuari no trobat"
	msgRouteNotFound  = "Ruta no trobada!"
	msgInternalError  = "Hi ha hagut un error!"
	msgUserDeleted    = "Usuari %s esborrat"
)

func writeText(res http.ResponseWriter, statusCode int, body string) {
	res.Header().Set("Content-Type", "text/plain; charset=utf-8")
	res.WriteHeader(statusCode)
	_, err := io.WriteString(res, body)
	if err != nil {
		logger.Log.Debugln("error while writing the response body", "err", err)
	}
}

func writeJSON(res http.ResponseWriter, statusCode int, body []byte) {
	res.Header().Set("Content-Type", "application/json")
	res.WriteHeader(statusCode)
	_, err := res.Write(body)
	if err != nil {
		logger.Log.Debugln("error while writing the response body", "err", err)
	}
}

// internalError logs the cause and answers with the generic message only.
func internalError(res http.ResponseWriter, req *http.Request, err error) {
	logger.Log.Errorw(
		"error while serving request",
		"method", req.Method,
		"uri", req.RequestURI,
		"err", err,
	)
	writeText(res, http.StatusInternalServerError, msgInternalError)
}

func routeNotFound(res http.ResponseWriter, req *http.Request) {
	writeText(res, http.StatusNotFound, msgRouteNotFound)
}

func recoverer(h http.Handler) http.Handler {
	return http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
		defer func() {
			rvr := recover()
			if rvr == nil {
				return
			}
			if rvr == http.ErrAbortHandler {
				panic(rvr)
			}
			logger.Log.Errorw(
				"panic while serving request",
				"method", req.Method,
				"uri", req.RequestURI,
				"panic", rvr,
				"stack", string(debug.Stack()),
			)
			writeText(res, http.StatusInternalServerError, msgInternalError)
		}()

		h.ServeHTTP(res, req)
	})
}

// pathID resolves {id} the lenient way: leading integer, garbage ignored.
// chi hands over the escaped segment, so it is decoded first; a segment
// that does not decode is used as is.
func pathID(req *http.Request) (string, int64, bool) {
	segment := chi.URLParam(req, "id")
	if decoded, err := url.PathUnescape(segment); err == nil {
		segment = decoded
	}
	id, ok := models.ParseLeadingInt(segment)
	return segment, id, ok
}

func (r *Router) readPayload(req *http.Request) (models.UserPayload, error) {
	body, err := io.ReadAll(req.Body)
	if err != nil {
		return models.UserPayload{}, fmt.Errorf("error while `io.ReadAll()` calling: %w", err)
	}

	payload, err := r.format.DecodePayload(body)
	if err != nil {
		return models.UserPayload{}, fmt.Errorf("error while `r.format.DecodePayload()` calling: %w", err)
	}

	return payload, nil
}

func (r *Router) writeUser(res http.ResponseWriter, req *http.Request, statusCode int, usr models.User) {
	body, err := r.format.MarshalUser(usr)
	if err != nil {
		internalError(res, req, err)
		return
	}
	writeJSON(res, statusCode, body)
}

func (r *Router) GetRoot(res http.ResponseWriter, req *http.Request) {
	res.Header().Set("Content-Type", "text/html; charset=utf-8")
	res.WriteHeader(http.StatusOK)
	_, err := io.WriteString(res, rootPage)
	if err != nil {
		logger.Log.Debugln("error while writing the response body", "err", err)
	}
}

// GetUsuaris lists the records, narrowed by the optional nom and attribute
// query parameters.
func (r *Router) GetUsuaris(res http.ResponseWriter, req *http.Request) {
	query := req.URL.Query()

	var filter models.Filter
	if query.Has("nom") {
		nom := query.Get("nom")
		filter.Nom = &nom
	}
	if query.Has(r.format.AttrName) {
		attr := query.Get(r.format.AttrName)
		filter.Attr = &attr
	}

	users, err := r.store.Filter(req.Context(), filter)
	if errors.Is(err, service.ErrNoUsersMatched) {
		writeText(res, http.StatusNotFound, msgNoUsersMatched)
		return
	}
	if err != nil {
		internalError(res, req, err)
		return
	}

	body, err := r.format.MarshalUsers(users)
	if err != nil {
		internalError(res, req, err)
		return
	}
	writeJSON(res, http.StatusOK, body)
}

func (r *Router) GetUsuari(res http.ResponseWriter, req *http.Request) {
	_, id, ok := pathID(req)
	if !ok {
		writeText(res, http.StatusNotFound, msgUserNotFound)
		return
	}

	usr, err := r.store.FindByID(req.Context(), id)
	if errors.Is(err, service.ErrUserNotFound) {
		writeText(res, http.StatusNotFound, msgUserNotFound)
		return
	}
	if err != nil {
		internalError(res, req, err)
		return
	}

	r.writeUser(res, req, http.StatusOK, usr)
}

func (r *Router) PostUsuaris(res http.ResponseWriter, req *http.Request) {
	payload, err := r.readPayload(req)
	if err != nil {
		internalError(res, req, err)
		return
	}

	usr, err := r.store.Create(req.Context(), payload)
	if err != nil {
		internalError(res, req, err)
		return
	}

	r.writeUser(res, req, http.StatusCreated, usr)
}

// PutUsuari replaces both fields of the record. The body is read before
// the id is resolved, so a malformed body is a 500 even for unknown ids.
func (r *Router) PutUsuari(res http.ResponseWriter, req *http.Request) {
	payload, err := r.readPayload(req)
	if err != nil {
		internalError(res, req, err)
		return
	}

	_, id, ok := pathID(req)
	if !ok {
		writeText(res, http.StatusNotFound, msgUserNotFound)
		return
	}

	usr, err := r.store.Update(req.Context(), id, payload)
	if errors.Is(err, service.ErrUserNotFound) {
		writeText(res, http.StatusNotFound, msgUserNotFound)
		return
	}
	if err != nil {
		internalError(res, req, err)
		return
	}

	r.writeUser(res, req, http.StatusOK, usr)
}

// DeleteUsuari confirms with the decoded path segment, garbage included.
func (r *Router) DeleteUsuari(res http.ResponseWriter, req *http.Request) {
	raw, id, ok := pathID(req)
	if !ok {
		writeText(res, http.StatusNotFound, msgUserNotFound)
		return
	}

	err := r.store.Delete(req.Context(), id)
	if errors.Is(err, service.ErrUserNotFound) {
		writeText(res, http.StatusNotFound, msgUserNotFound)
		return
	}
	if err != nil {
		internalError(res, req, err)
		return
	}

	writeText(res, http.StatusOK, fmt.Sprintf(msgUserDeleted, raw))
}

func (r *Router) GetPing(res http.ResponseWriter, req *http.Request) {
	if err := r.store.Ping(req.Context()); err != nil {
		internalError(res, req, err)
		return
	}
	res.WriteHeader(http.StatusOK)
}

func (r *Router) GetInternalStats(res http.ResponseWriter, req *http.Request) {
	count, err := r.store.Count(req.Context())
	if err != nil {
		internalError(res, req, err)
		return
	}

	body, err := json.Marshal(models.InternalStatsResponse{Users: count})
	if err != nil {
		internalError(res, req, err)
		return
	}
	writeJSON(res, http.StatusOK, body)
}
