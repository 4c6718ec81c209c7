package api

import (
	"net/http"

	"github.com/spezi-dev/spezi/pkg/httputil"
	"github.com/spezi-dev/spezi/pkg/repository"
)

var orderMsgs = messages{
	invalid:  "Invalid order ID",
	notFound: "Order not found",
	failed:   "Failed to get order",
}

// listOrders handles GET /orders
func (s *Server) listOrders(w http.ResponseWriter, r *http.Request) {
	var (
		f   repository.OrderFilter
		err error
	)
	if f.UserID, err = httputil.ParseQueryID(r, "userId"); err != nil {
		httputil.WriteBadRequest(w, "Invalid user ID")
		return
	}
	if f.ProductID, err = httputil.ParseQueryID(r, "productId"); err != nil {
		httputil.WriteBadRequest(w, "Invalid product ID")
		return
	}
	if f.Before, err = httputil.ParseQueryTime(r, "before"); err != nil {
		httputil.WriteBadRequest(w, "Invalid before value")
		return
	}
	if f.After, err = httputil.ParseQueryTime(r, "after"); err != nil {
		httputil.WriteBadRequest(w, "Invalid after value")
		return
	}

	orders, err := s.repos.Orders.List(r.Context(), f)
	if err != nil {
		s.writeRepoError(w, r, err, messages{failed: "Failed to list orders"})
		return
	}
	s.writeJSON(w, r, http.StatusOK, orders)
}

// getOrder handles GET /orders/{id}
func (s *Server) getOrder(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.ParsePathID(r, "id")
	if err != nil {
		httputil.WriteBadRequest(w, orderMsgs.invalid)
		return
	}

	o, err := s.repos.Orders.Get(r.Context(), id)
	if err != nil {
		s.writeRepoError(w, r, err, orderMsgs)
		return
	}
	s.writeJSON(w, r, http.StatusOK, o)
}

// createOrder handles POST /orders. Both ids must be positive integers;
// whether they exist is left to the datastore.
func (s *Server) createOrder(w http.ResponseWriter, r *http.Request) {
	fields, err := decodeBody(r)
	if err != nil {
		httputil.WriteBadRequest(w, msgInvalidBody)
		return
	}

	productID, err := field[int64](fields, "productId")
	if err != nil || productID.OrElse(0) <= 0 {
		httputil.WriteBadRequest(w, "Invalid product ID")
		return
	}
	userID, err := field[int64](fields, "userId")
	if err != nil || userID.OrElse(0) <= 0 {
		httputil.WriteBadRequest(w, "Invalid user ID")
		return
	}

	o, err := s.repos.Orders.Create(r.Context(), productID.OrElse(0), userID.OrElse(0))
	if err != nil {
		s.writeRepoError(w, r, err, messages{
			invalid: msgInvalidBody,
			failed:  "Failed to create order",
		})
		return
	}

	s.log(r).WithFields(map[string]interface{}{
		"order_id":   o.ID,
		"product_id": o.ProductID,
		"user_id":    o.UserID,
	}).Debug("Order created")
	s.writeJSON(w, r, http.StatusCreated, o)
}

// deleteOrder handles DELETE /orders/{id}
func (s *Server) deleteOrder(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.ParsePathID(r, "id")
	if err != nil {
		httputil.WriteBadRequest(w, orderMsgs.invalid)
		return
	}

	if err := s.repos.Orders.Delete(r.Context(), id); err != nil {
		s.writeRepoError(w, r, err, messages{
			invalid:  orderMsgs.invalid,
			notFound: orderMsgs.notFound,
			failed:   "Failed to delete order",
		})
		return
	}

	s.log(r).WithField("order_id", id).Debug("Order deleted")
	httputil.WriteSuccessMessage(w, "Order deleted")
}
