package api

import "net/http"

// RouteDirectory maps a route to its methods and what they do. Method keys
// list the accepted body fields or query parameters in parentheses.
type RouteDirectory map[string]map[string]string

var directory = RouteDirectory{
	"api-users": {
		"GET (isAdmin, createdBefore, createdAfter, lastLoginBefore, lastLoginAfter)": "List API users (admin only)",
		"POST (isAdmin: boolean, description?: string)":                              "Create API user (admin only)",
	},
	"api-users/:key": {
		"GET ()": "Get API user by key (admin only)",
		"PATCH (isAdmin?: boolean, description?: string)": "Update API user by key (admin only)",
		"DELETE ()": "Delete API user by key (admin only)",
	},
	"users": {
		"GET ()":              "List users",
		"POST (name: string)": "Create user (admin only)",
	},
	"users/:id": {
		"GET ()":    "Get user by ID",
		"DELETE ()": "Delete user by ID (admin only)",
	},
	"products": {
		"GET ()": "List products",
		"POST (name: string, price: number)": "Create product (admin only)",
	},
	"products/:id": {
		"GET ()":    "Get product by ID",
		"DELETE ()": "Delete product by ID (admin only)",
	},
	"orders": {
		"GET (userId, productId, before, after)":     "List orders",
		"POST (productId: integer, userId: integer)": "Create order",
	},
	"orders/:id": {
		"GET ()":    "Get order by ID",
		"DELETE ()": "Delete order by ID",
	},
}

// routeDirectory handles GET /
func (s *Server) routeDirectory(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, directory)
}
