// Package api provides the spezi HTTP API.
//
// # Routes
//
// Every route requires a registered API key (api_key query parameter or
// X-Api-Key header). Admin keys are additionally required for:
//
//   - every /api-users route
//   - POST /users, DELETE /users/{id}
//   - POST /products, DELETE /products/{id}
//
// Orders and all other reads are open to any registered key. GET / returns
// a directory of the routes.
//
// # Responses
//
// Reads and listings are JSON. Creation returns 201 with the created entity
// as JSON; for POST /api-users that includes the generated key. PATCH and
// DELETE confirmations and all errors are plain text.
//
// Repository errors map to status codes with errors.Is:
//
//	repository.ErrInvalidArgument  400
//	repository.ErrNotFound         404
//	anything else                  500, detail logged only
//
// # Usage
//
//	repos := repository.New(db)
//	authMW := middleware.NewAuthMiddleware(repos.APIUsers, runner, logger, metrics)
//	server := api.NewServer(repos, authMW, logger, metrics)
//	http.ListenAndServe(":3000", server)
package api
