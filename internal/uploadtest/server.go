// Package uploadtest runs an in-process upload receiver for tests.
//
// The receiver accepts POST <prefix>{request_id} with a JSON {name, data}
// envelope, decodes the data URL, keeps the bytes under
// "{request_id}/{name}" and answers {"url": ...}. Reply overrides that
// answer with a fixed status and body.
package uploadtest

import (
	"bytes"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/radif/uploader/internal/dataurl"
	"github.com/radif/uploader/internal/endpoint"
	"github.com/radif/uploader/internal/response"
	"github.com/radif/uploader/internal/storage"
)

// Received is one request seen by the receiver.
type Received struct {
	RequestID   string
	ContentType string // request Content-Type header
	Name        string
	MIME        string // media type from the data URL
	Data        []byte
	RawData     string // the data URL as sent
}

type envelope struct {
	Name string `json:"name"`
	Data string `json:"data"`
}

type reply struct {
	status      int
	contentType string
	body        []byte
}

// Server is a running receiver. Close it when done.
type Server struct {
	*httptest.Server

	prefix string
	store  *storage.Memory

	mu       sync.Mutex
	received []Received
	reply    *reply
}

// NewServer starts a receiver listening under prefix (e.g. "/backend/upload/").
func NewServer(prefix string) *Server {
	s := &Server{prefix: normalizePrefix(prefix)}

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))
	r.Post(s.prefix+"{requestID}", s.handleUpload)

	s.Server = httptest.NewServer(r)
	s.store = storage.NewMemory(s.URL + "/static")
	return s
}

// Endpoint returns the configuration that targets this receiver.
func (s *Server) Endpoint() endpoint.Config {
	u, err := url.Parse(s.URL)
	if err != nil {
		panic("uploadtest: bad server URL: " + err.Error())
	}
	host, portStr, err := net.SplitHostPort(u.Host)
	if err != nil {
		panic("uploadtest: bad server host: " + err.Error())
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		panic("uploadtest: bad server port: " + err.Error())
	}
	return endpoint.Config{
		Scheme:     u.Scheme,
		Host:       host,
		Port:       port,
		PathPrefix: s.prefix,
	}
}

// Reply makes every following request answer status with a JSON body.
func (s *Server) Reply(status int, body string) {
	s.ReplyRaw(status, "application/json", body)
}

// ReplyRaw makes every following request answer status with body verbatim.
func (s *Server) ReplyRaw(status int, contentType, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reply = &reply{status: status, contentType: contentType, body: []byte(body)}
}

// Received returns the requests seen so far, in arrival order.
func (s *Server) Received() []Received {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Received(nil), s.received...)
}

// Store exposes the objects kept by the receiver.
func (s *Server) Store() *storage.Memory {
	return s.store
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	requestID := chi.URLParam(r, "requestID")

	var env envelope
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
		response.UnprocessableEntity(w, "invalid request body")
		return
	}

	rec := Received{
		RequestID:   requestID,
		ContentType: r.Header.Get("Content-Type"),
		Name:        env.Name,
		RawData:     env.Data,
	}
	mt, data, decodeErr := dataurl.Decode(env.Data)
	if decodeErr == nil {
		rec.MIME = mt
		rec.Data = data
	}

	s.mu.Lock()
	s.received = append(s.received, rec)
	override := s.reply
	s.mu.Unlock()

	if override != nil {
		response.Raw(w, override.status, override.contentType, override.body)
		return
	}

	if strings.TrimSpace(env.Name) == "" {
		response.UnprocessableEntity(w, "name is required")
		return
	}
	if decodeErr != nil {
		response.UnprocessableEntity(w, decodeErr.Error())
		return
	}

	key := requestID + "/" + env.Name
	if err := s.store.Put(r.Context(), key, bytes.NewReader(data), mt); err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, s.store.PublicURL(key))
}

func normalizePrefix(prefix string) string {
	prefix = strings.Trim(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		return "/"
	}
	return "/" + prefix + "/"
}
