package models

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/golang/glog"
	"github.com/gorilla/mux"
)

// Context carries one API request and writes its response
type Context struct {
	Request        *http.Request
	ResponseWriter http.ResponseWriter
	RouteVars      map[string]string
	StartTime      time.Time
	Store          *Store
}

// StandardResponse is the envelope of every JSON response
type StandardResponse struct {
	Context string      `json:"context"`
	Status  int         `json:"status"`
	Data    interface{} `json:"data"`
	Errors  []string    `json:"error"`
}

// MakeContext returns the context for a request served from store
func MakeContext(
	request *http.Request,
	responseWriter http.ResponseWriter,
	store *Store,
) *Context {
	return &Context{
		Request:        request,
		ResponseWriter: responseWriter,
		RouteVars:      mux.Vars(request),
		StartTime:      time.Now(),
		Store:          store,
	}
}

// GetHTTPMethod returns the request method, honouring method overrides on
// POST requests
func (c *Context) GetHTTPMethod() string {
	m := c.Request.Method

	if m == "POST" {
		if c.Request.Header.Get("X-HTTP-Method-Override") != "" {
			m = strings.ToUpper(c.Request.Header.Get("X-HTTP-Method-Override"))
		}
		if c.Request.URL.Query().Get("method") != "" {
			m = strings.ToUpper(c.Request.URL.Query().Get("method"))
		}

		switch m {
		case "DELETE", "GET", "HEAD", "OPTIONS", "PATCH", "POST", "PUT":
		default:
			return c.Request.Method
		}
	}

	return m
}

// Respond writes data wrapped in a StandardResponse
func (c *Context) Respond(
	data interface{},
	statusCode int,
	errors []string,
) error {

	obj := StandardResponse{
		Context: c.Request.URL.Query().Get("context"),
		Status:  statusCode,
		Data:    data,
		Errors:  errors,
	}

	// Prevent content type detection, a.k.a. sniffing
	c.ResponseWriter.Header().Set("Content-Type", "application/json")
	c.ResponseWriter.Header().Set("X-Content-Type-Options", "nosniff")
	c.ResponseWriter.Header().Set(`Cache-Control`, `no-cache, max-age=0`)

	output, err := json.Marshal(obj)
	if err != nil {
		http.Error(c.ResponseWriter, err.Error(), http.StatusInternalServerError)
		return err
	}

	// Prevent chunking
	c.ResponseWriter.Header().Set("Content-Length", strconv.Itoa(len(output)))

	if glog.V(3) {
		glog.Infof(
			"%s %s %d in %s",
			c.GetHTTPMethod(),
			c.Request.URL.Path,
			statusCode,
			time.Since(c.StartTime),
		)
	}

	return c.WriteResponse(output, statusCode)
}

// RespondWithAvatar writes the image bytes of an avatar
func (c *Context) RespondWithAvatar(m AvatarType) error {
	mimeType := m.MimeType
	if mimeType == "" {
		mimeType = http.DetectContentType(m.Bytes)
	}

	c.ResponseWriter.Header().Set("Content-Type", mimeType)
	c.ResponseWriter.Header().Set("Content-Length", strconv.Itoa(m.Size()))
	c.ResponseWriter.Header().Set("Cache-Control", "public, max-age=300")
	c.ResponseWriter.Header().Set("ETag", `"`+m.Hash+`-`+strconv.FormatInt(m.LastUpdated.Unix(), 10)+`"`)
	c.ResponseWriter.Header().Set("Last-Modified", m.LastUpdated.UTC().Format(http.TimeFormat))

	return c.WriteResponse(m.Bytes, http.StatusOK)
}

// WriteResponse ultimately does the job of writing the response
func (c *Context) WriteResponse(output []byte, statusCode int) error {
	c.ResponseWriter.WriteHeader(statusCode)

	// HEAD requests return no body and are used to check headers for cache
	// invalidation functions
	if c.GetHTTPMethod() == "HEAD" {
		return nil
	}

	_, err := c.ResponseWriter.Write(output)

	// We only log at error severity when an error is not the result of the
	// client disconnecting. "broken pipe" is a syscall.EPIPE error that
	// indicates client disconnection.
	if err != nil {
		opErr, ok := err.(*net.OpError)
		if !ok || opErr.Err != syscall.EPIPE {
			glog.Errorf(
				"Error writing %s response to %s : %+v\n",
				c.GetHTTPMethod(),
				c.Request.URL.String(),
				err,
			)
			return err
		}

		glog.Warningf(
			"Error writing %s response to %s : %+v\n",
			c.GetHTTPMethod(),
			c.Request.URL.String(),
			err,
		)
		return err
	}

	return nil
}

// RespondWithOptions responds to an OPTIONS request
func (c *Context) RespondWithOptions(options []string) error {
	c.ResponseWriter.Header().Set("Allow", strings.Join(options, ","))
	c.ResponseWriter.Header().Set("Content-Length", "0")
	c.ResponseWriter.WriteHeader(http.StatusOK)
	return nil
}

// RespondWithStatus responds with a status code and an empty StandardResponse
func (c *Context) RespondWithStatus(statusCode int) error {
	return c.Respond(nil, statusCode, nil)
}

// RespondWithError responds with the status code and its description in the
// errors list
func (c *Context) RespondWithError(statusCode int) error {
	return c.RespondWithErrorMessage(http.StatusText(statusCode), statusCode)
}

// RespondWithErrorMessage responds with a status code and an error message
func (c *Context) RespondWithErrorMessage(message string, statusCode int) error {
	return c.Respond(nil, statusCode, []string{message})
}

// RespondWithErrorDetail responds with the error in the "data" object
func (c *Context) RespondWithErrorDetail(err error, statusCode int) error {
	return c.Respond(err, statusCode, []string{err.Error()})
}

// RespondWithData responds 200 with data
func (c *Context) RespondWithData(data interface{}) error {
	return c.Respond(data, http.StatusOK, nil)
}

// RespondWithAccepted responds 202, used for work scheduled in the background
func (c *Context) RespondWithAccepted(data interface{}) error {
	return c.Respond(data, http.StatusAccepted, nil)
}

// RespondWithSeeOther responds 303 See Other
func (c *Context) RespondWithSeeOther(location string) error {
	c.ResponseWriter.Header().Set("Location", location)
	return c.RespondWithStatus(http.StatusSeeOther)
}

// RespondWithNotFound responds 404 Not Found
func (c *Context) RespondWithNotFound() error {
	return c.RespondWithError(http.StatusNotFound)
}
