package meter

// This file contains the HTTP configuration API.  The current configuration
// can be read as JSON and single options changed while the meter runs.

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-stack/stack"
	"github.com/karlmutch/errors"

	"github.com/dlnetworks/wled-bandwidth-meter/model"
)

type fieldUpdate struct {
	Field string      `json:"field"`
	Value interface{} `json:"value"`
}

type ConfigServer struct {
	updater *Updater
}

func NewConfigServer(updater *Updater) (srv *ConfigServer) {
	return &ConfigServer{updater: updater}
}

// Handler routes the API, only /api/config is served
func (srv *ConfigServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/config", srv.serveConfig)
	return mux
}

func (srv *ConfigServer) serveConfig(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		w.Header().Set("Content-Type", "application/json")
		if errGo := json.NewEncoder(w).Encode(srv.updater.Config()); errGo != nil {
			logger.Warn("config response failed", "error", errGo.Error())
		}

	case http.MethodPost:
		update := &fieldUpdate{}
		if errGo := json.NewDecoder(r.Body).Decode(update); errGo != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if !model.IsField(update.Field) {
			http.Error(w, "Unknown field", http.StatusBadRequest)
			return
		}
		if err := srv.updater.SetField(update.Field, update.Value); err != nil {
			logger.Debug("config update rejected", "field", update.Field, "error", err.Error())
			http.Error(w, "Invalid value", http.StatusBadRequest)
			return
		}
		logger.Info("config updated", "field", update.Field)
		w.Write([]byte("Configuration updated"))

	default:
		w.Header().Set("Allow", "GET, POST")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// Serve listens on ip:port until quitC is closed
func (srv *ConfigServer) Serve(ip string, port int, errorC chan<- errors.Error, quitC <-chan struct{}) {
	addr := net.JoinHostPort(ip, strconv.Itoa(port))
	server := &http.Server{
		Addr:    addr,
		Handler: srv.Handler(),
	}

	go func() {
		<-quitC
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	logger.Info("config api listening", "addr", addr)
	if errGo := server.ListenAndServe(); errGo != nil && errGo != http.ErrServerClosed {
		select {
		case errorC <- errors.Wrap(errGo).With("addr", addr).With("stack", stack.Trace().TrimRuntime()):
		case <-time.After(500 * time.Millisecond):
			logger.Warn("could not send error for config api", "error", errGo.Error())
		}
	}
}
