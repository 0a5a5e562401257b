package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/voocel/aegis/config"
	"github.com/voocel/aegis/dispatch"
	"github.com/voocel/aegis/policy"
	"github.com/voocel/aegis/schema"
)

const maxRequestBytes = 1 << 20

func runHTTP(cfg *config.Config, d *dispatch.Dispatcher, store *policy.Store) error {
	if strings.TrimSpace(cfg.ListenAddr) == "" {
		return errors.New("listen address is empty")
	}

	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      newHTTPHandler(cfg.AuthToken, cfg.PolicyPath, d, store),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
	}
	fmt.Println("aegis http listening on", cfg.ListenAddr)
	return server.ListenAndServe()
}

type reloadResponse struct {
	Reloaded bool   `json:"reloaded"`
	Error    string `json:"error,omitempty"`
}

func newHTTPHandler(authToken, policyPath string, d *dispatch.Dispatcher, store *policy.Store) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/health", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("/v1/dispatch", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if err := authorize(r, authToken); err != nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		var req schema.Request
		if err := decodeJSON(w, r, &req); err != nil {
			return
		}
		result, err := d.Dispatch(r.Context(), &req)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, result)
	})
	mux.HandleFunc("/v1/policy/reload", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if err := authorize(r, authToken); err != nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if err := store.Reload(policyPath); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnprocessableEntity)
			_ = json.NewEncoder(w).Encode(reloadResponse{Reloaded: false, Error: err.Error()})
			return
		}
		writeJSON(w, reloadResponse{Reloaded: true})
	})
	return mux
}

func decodeJSON(w http.ResponseWriter, r *http.Request, out any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
	defer r.Body.Close()
	data, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return err
	}
	if len(data) == 0 {
		http.Error(w, "empty request body", http.StatusBadRequest)
		return errors.New("empty request body")
	}
	if err := json.Unmarshal(data, out); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	_ = enc.Encode(payload)
}

func authorize(r *http.Request, token string) error {
	if strings.TrimSpace(token) == "" {
		return nil
	}
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(header), "bearer ") {
		if strings.TrimSpace(header[7:]) == token {
			return nil
		}
	}
	if strings.TrimSpace(r.Header.Get("X-Aegis-Token")) == token {
		return nil
	}
	return errors.New("unauthorized")
}
