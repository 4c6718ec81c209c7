package api

import (
	"net/http"
	"strings"

	"github.com/spezi-dev/spezi/pkg/httputil"
)

var productMsgs = messages{
	invalid:  "Invalid product ID",
	notFound: "Product not found",
	failed:   "Failed to get product",
}

// listProducts handles GET /products
func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.repos.Products.List(r.Context())
	if err != nil {
		s.writeRepoError(w, r, err, messages{failed: "Failed to list products"})
		return
	}
	s.writeJSON(w, r, http.StatusOK, products)
}

// getProduct handles GET /products/{id}
func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.ParsePathID(r, "id")
	if err != nil {
		httputil.WriteBadRequest(w, productMsgs.invalid)
		return
	}

	p, err := s.repos.Products.Get(r.Context(), id)
	if err != nil {
		s.writeRepoError(w, r, err, productMsgs)
		return
	}
	s.writeJSON(w, r, http.StatusOK, p)
}

// createProduct handles POST /products. Price is any JSON number.
func (s *Server) createProduct(w http.ResponseWriter, r *http.Request) {
	fields, err := decodeBody(r)
	if err != nil {
		httputil.WriteBadRequest(w, msgInvalidBody)
		return
	}

	name, err := field[string](fields, "name")
	if err != nil || strings.TrimSpace(name.OrElse("")) == "" {
		httputil.WriteBadRequest(w, "Invalid product name")
		return
	}
	price, err := field[float64](fields, "price")
	if err != nil || !price.IsSet() {
		httputil.WriteBadRequest(w, "Invalid product price")
		return
	}

	p, err := s.repos.Products.Create(r.Context(), name.OrElse(""), price.OrElse(0))
	if err != nil {
		s.writeRepoError(w, r, err, messages{
			invalid: "Invalid product name",
			failed:  "Failed to create product",
		})
		return
	}

	s.log(r).WithField("product_id", p.ID).Debug("Product created")
	s.writeJSON(w, r, http.StatusCreated, p)
}

// deleteProduct handles DELETE /products/{id}
func (s *Server) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.ParsePathID(r, "id")
	if err != nil {
		httputil.WriteBadRequest(w, productMsgs.invalid)
		return
	}

	if err := s.repos.Products.Delete(r.Context(), id); err != nil {
		s.writeRepoError(w, r, err, messages{
			invalid:  productMsgs.invalid,
			notFound: productMsgs.notFound,
			failed:   "Failed to delete product",
		})
		return
	}

	s.log(r).WithField("product_id", id).Debug("Product deleted")
	httputil.WriteSuccessMessage(w, "Product deleted")
}
