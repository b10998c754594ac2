package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/cloakbook/cloakbook/pkg/coordinator"
	"github.com/cloakbook/cloakbook/pkg/ledger"
)

// Server handles REST API and WebSocket connections for dashboard clients.
type Server struct {
	ledger *ledger.Ledger
	coord  *coordinator.Coordinator
	router *mux.Router
	hub    *Hub
}

// NewServer creates the API server and wires it to the ledger's event stream.
func NewServer(l *ledger.Ledger, coord *coordinator.Coordinator) *Server {
	s := &Server{
		ledger: l,
		coord:  coord,
		router: mux.NewRouter(),
		hub:    NewHub(),
	}
	s.setupRoutes()

	// broadcast ledger events to subscribed dashboard clients
	l.Subscribe(ledger.SinkFuncs{
		OnOrderCreated: func(ev ledger.OrderCreatedEvent) {
			msg := OrderCreatedMessage{Type: "order_created", ID: ev.ID, Creator: ev.Creator.Hex()}
			s.hub.BroadcastToChannel("orders", msg)
			s.hub.BroadcastToChannel("order:"+ev.ID, msg)
		},
		OnDecryptionVerified: func(ev ledger.DecryptionVerifiedEvent) {
			msg := DecryptionVerifiedMessage{Type: "decryption_verified", ID: ev.ID, Amount: ev.Amount, Price: ev.Price}
			s.hub.BroadcastToChannel("orders", msg)
			s.hub.BroadcastToChannel("order:"+ev.ID, msg)
		},
	})

	return s
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/orders", s.handleCreateOrder).Methods("POST")
	api.HandleFunc("/orders", s.handleListOrders).Methods("GET")
	api.HandleFunc("/orders/{id}", s.handleGetOrder).Methods("GET")
	api.HandleFunc("/orders/{id}/verify", s.handleVerifyOrder).Methods("POST")

	s.router.HandleFunc("/ws", s.handleWebSocket)
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
}

// Handler returns the http.Handler with CORS applied, for tests and custom
// server setups.
func (s *Server) Handler(origins []string) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})
	return c.Handler(s.router)
}

// Start runs the WebSocket hub and serves until the listener fails.
func (s *Server) Start(addr string, origins []string) error {
	go s.hub.Run()
	log.Printf("[api] server starting on %s", addr)
	return http.ListenAndServe(addr, s.Handler(origins))
}

// ==============================
// REST Handlers
// ==============================

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	params := ledger.CreateParams{
		ID:               req.ID,
		Name:             req.Name,
		AssetType:        req.AssetType,
		Creator:          req.Creator,
		PublicPrice:      req.PublicPrice,
		EncAmount:        req.EncAmount,
		AmountInputProof: req.AmountInputProof,
		EncPrice:         req.EncPrice,
		PriceInputProof:  req.PriceInputProof,
	}
	if err := params.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, "invalid order", err.Error())
		return
	}

	order, err := s.ledger.CreateOrder(r.Context(), params)
	if err != nil {
		respondLedgerError(w, err)
		return
	}

	log.Printf("[api] order created: id=%s creator=%s", order.ID, order.Creator.Hex())
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(orderInfo(order))
}

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	ids, err := s.ledger.ListOrderIDs()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list orders", err.Error())
		return
	}

	orders := make([]OrderInfo, 0, len(ids))
	for _, id := range ids {
		o, err := s.ledger.GetOrder(id)
		if err != nil {
			// id listed but row unreadable; skip rather than fail the page
			continue
		}
		orders = append(orders, orderInfo(o))
	}
	respondJSON(w, orders)
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	order, err := s.ledger.GetOrder(id)
	if err != nil {
		respondLedgerError(w, err)
		return
	}
	respondJSON(w, orderInfo(order))
}

func (s *Server) handleVerifyOrder(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	amount, err := s.coord.RequestVerification(r.Context(), id)
	if err != nil {
		respondLedgerError(w, err)
		return
	}

	order, err := s.ledger.GetOrder(id)
	if err != nil {
		respondLedgerError(w, err)
		return
	}

	log.Printf("[api] order verified: id=%s amount=%d", id, amount)
	respondJSON(w, VerifyResponse{ID: id, Amount: amount, Price: order.DecryptedPrice})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !s.ledger.Available() {
		respondError(w, http.StatusServiceUnavailable, "ledger unavailable", "")
		return
	}
	respondJSON(w, map[string]string{"status": "ok"})
}

// ==============================
// Helper Functions
// ==============================

func respondJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, error string, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   error,
		Message: message,
	})
}

// respondLedgerError maps the ledger/coordinator error taxonomy onto HTTP
// status codes. The message keeps the wrapped chain so callers can tell which
// step failed.
func respondLedgerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrOrderNotFound):
		respondError(w, http.StatusNotFound, "order not found", err.Error())
	case errors.Is(err, ledger.ErrDuplicateOrder):
		respondError(w, http.StatusConflict, "order id already exists", err.Error())
	case errors.Is(err, ledger.ErrInvalidCiphertext):
		respondError(w, http.StatusBadRequest, "invalid ciphertext", err.Error())
	case errors.Is(err, ledger.ErrAlreadyVerified):
		respondError(w, http.StatusConflict, "order already verified", err.Error())
	case errors.Is(err, ledger.ErrProofVerification):
		respondError(w, http.StatusUnprocessableEntity, "proof verification failed", err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		respondError(w, http.StatusRequestTimeout, "request abandoned", err.Error())
	default:
		respondError(w, http.StatusBadGateway, "collaborator failure", err.Error())
	}
}
