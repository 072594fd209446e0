// Package restconftest runs an in-process fake switch that serves
// configuration subtrees and records edit requests in arrival order.
package restconftest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/danmuck/sonicctl/internal/restconf"
)

type failure struct {
	code    int
	message string
}

// Device is the fake switch.
type Device struct {
	*httptest.Server

	mu       sync.Mutex
	trees    map[string]string
	edits    []restconf.Request
	gets     []string
	failures map[int]failure
	username string
	password string
}

// New starts a fake device over plain HTTP and closes it with the test.
func New(t testing.TB) *Device {
	t.Helper()
	d := newDevice()
	d.Server = httptest.NewServer(d.router())
	t.Cleanup(d.Close)
	return d
}

// NewUnstarted returns a device whose server the caller starts, for TLS setups.
func NewUnstarted(t testing.TB) *Device {
	t.Helper()
	d := newDevice()
	d.Server = httptest.NewUnstartedServer(d.router())
	t.Cleanup(d.Close)
	return d
}

func newDevice() *Device {
	return &Device{
		trees:    make(map[string]string),
		failures: make(map[int]failure),
	}
}

// RequireBasicAuth makes every request check credentials.
func (d *Device) RequireBasicAuth(username, password string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.username = username
	d.password = password
}

// SetTree registers the JSON body returned for GET path (path without the
// /restconf/ prefix, e.g. "data/openconfig-relay-agent:relay-agent/dhcp").
func (d *Device) SetTree(path, body string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.trees[strings.TrimLeft(path, "/")] = body
}

// FailEdit makes the n-th edit (0-based, counted across the device
// lifetime) fail with a RESTCONF error body.
func (d *Device) FailEdit(n, code int, message string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failures[n] = failure{code: code, message: message}
}

// Edits returns recorded PATCH/DELETE requests in arrival order.
func (d *Device) Edits() []restconf.Request {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]restconf.Request, len(d.edits))
	copy(out, d.edits)
	return out
}

// Gets returns the paths read so far.
func (d *Device) Gets() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.gets))
	copy(out, d.gets)
	return out
}

func (d *Device) router() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.UseRawPath = true
	r.UnescapePathValues = false
	r.Use(d.authorize)
	r.GET("/restconf/*path", d.handleGet)
	r.PATCH("/restconf/*path", d.handleEdit(restconf.MethodPatch))
	r.DELETE("/restconf/*path", d.handleEdit(restconf.MethodDelete))
	return r
}

func (d *Device) authorize(c *gin.Context) {
	d.mu.Lock()
	username, password := d.username, d.password
	d.mu.Unlock()
	if username == "" {
		c.Next()
		return
	}
	u, p, ok := c.Request.BasicAuth()
	if !ok || u != username || p != password {
		c.AbortWithStatusJSON(http.StatusUnauthorized, restconfError("access-denied", "authentication failed"))
		return
	}
	c.Next()
}

func (d *Device) handleGet(c *gin.Context) {
	path := strings.TrimLeft(c.Param("path"), "/")
	d.mu.Lock()
	d.gets = append(d.gets, path)
	body, ok := d.trees[path]
	d.mu.Unlock()
	if !ok {
		c.JSON(http.StatusNotFound, restconfError("invalid-value", "Resource not found"))
		return
	}
	c.Data(http.StatusOK, "application/yang-data+json", []byte(body))
}

func (d *Device) handleEdit(method restconf.Method) gin.HandlerFunc {
	return func(c *gin.Context) {
		req := restconf.Request{
			Path:   strings.TrimLeft(c.Param("path"), "/"),
			Method: method,
		}
		if method == restconf.MethodPatch {
			raw, err := io.ReadAll(c.Request.Body)
			if err != nil {
				c.JSON(http.StatusBadRequest, restconfError("malformed-message", err.Error()))
				return
			}
			if err := json.Unmarshal(raw, &req.Data); err != nil {
				c.JSON(http.StatusBadRequest, restconfError("malformed-message", err.Error()))
				return
			}
		}

		d.mu.Lock()
		idx := len(d.edits)
		d.edits = append(d.edits, req)
		fail, failing := d.failures[idx]
		d.mu.Unlock()

		if failing {
			c.JSON(fail.code, restconfError("invalid-value", fail.message))
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func restconfError(tag, message string) gin.H {
	return gin.H{
		"ietf-restconf:errors": gin.H{
			"error": []gin.H{{
				"error-type":    "application",
				"error-tag":     tag,
				"error-message": message,
			}},
		},
	}
}
