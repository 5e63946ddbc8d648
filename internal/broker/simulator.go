package broker

import (
	"context"
	"fmt"
	"sync"
)

// Compile-time interface check.
var _ OrderSink = (*Simulator)(nil)

// Simulator is an in-memory OrderSink. It records submitted orders without
// touching any external API, which makes it the sink behind dry runs and the
// test double for execution paths.
type Simulator struct {
	mu     sync.Mutex
	nextID int
	orders []PlacedOrder
}

// NewSimulator creates an empty Simulator.
func NewSimulator() *Simulator {
	return &Simulator{}
}

// Name returns "simulator".
func (s *Simulator) Name() string { return "simulator" }

// SubmitOrder records the order and reports it as immediately accepted.
func (s *Simulator) SubmitOrder(_ context.Context, req OrderRequest) (*PlacedOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	order := PlacedOrder{
		ID:     fmt.Sprintf("sim-%d", s.nextID),
		Symbol: req.Symbol,
		Qty:    req.Qty,
		Side:   req.Side,
		Type:   req.Type,
		Status: "accepted",
	}
	s.orders = append(s.orders, order)
	return &order, nil
}

// CancelOrder marks the order cancelled if it exists.
func (s *Simulator) CancelOrder(_ context.Context, orderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.orders {
		if s.orders[i].ID == orderID {
			s.orders[i].Status = "canceled"
			return nil
		}
	}
	return fmt.Errorf("order %s not found", orderID)
}

// Orders returns a copy of everything submitted so far.
func (s *Simulator) Orders() []PlacedOrder {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]PlacedOrder, len(s.orders))
	copy(out, s.orders)
	return out
}
